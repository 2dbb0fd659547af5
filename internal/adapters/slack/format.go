package slack

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/randomtoy/tarotbot/internal/app"
)

var mentionToken = regexp.MustCompile(`<@[^>]+>`)

// StripMention returns the text after the first mention token, trimmed.
// Text without a mention is only trimmed.
func StripMention(text string) string {
	loc := mentionToken.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[loc[1]:])
}

// FormatMessage renders a reading as Slack mrkdwn: the drawn cards as a
// bullet list followed by one line per reading field, in model order.
func FormatMessage(res app.ReadResult) string {
	var b strings.Builder
	b.WriteString("*Your cards*\n")
	for _, c := range res.Cards {
		b.WriteString("• " + c.CardName + " (" + string(c.Orientation) + "): " + c.Meaning + "\n")
	}
	b.WriteString("\n")

	if !res.Reading.OK() {
		writeField(&b, "error", res.Reading.Error)
		return strings.TrimRight(b.String(), "\n")
	}

	reading := gjson.ParseBytes(res.Reading.Fields)
	if !reading.IsObject() {
		writeField(&b, "reading", reading.String())
		return strings.TrimRight(b.String(), "\n")
	}
	reading.ForEach(func(key, value gjson.Result) bool {
		writeField(&b, key.String(), value.String())
		return true
	})
	return strings.TrimRight(b.String(), "\n")
}

// ErrorMessage is posted when a reading could not be delivered.
func ErrorMessage(err error) string {
	return "Sorry, something went wrong while reading your cards: " + err.Error()
}

func writeField(b *strings.Builder, key, value string) {
	label := cases.Title(language.Und).String(strings.ReplaceAll(key, "_", " "))
	b.WriteString("*" + label + "*: " + value + "\n")
}
