package app

import (
	"context"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/randomtoy/tarotbot/internal/domain"
	"github.com/randomtoy/tarotbot/internal/ports"
)

const (
	msgInvalidJSON = "Failed to decode JSON from the model's response."
	msgUnexpected  = "An unexpected error occurred: "
)

// Interpreter turns a prompt into a Reading. Model failures come back as
// failed readings, never as errors.
type Interpreter struct {
	gen    ports.Generator
	logger *slog.Logger
}

func NewInterpreter(gen ports.Generator, logger *slog.Logger) *Interpreter {
	return &Interpreter{gen: gen, logger: logger}
}

func (i *Interpreter) Interpret(ctx context.Context, in PromptInput) domain.Reading {
	text, err := i.gen.Generate(ctx, BuildPrompt(in))
	if err != nil {
		i.logger.WarnContext(ctx, "generation failed", "error", err)
		return domain.FailedReading(msgUnexpected + err.Error())
	}

	fields, err := ParseReading(text)
	if err != nil {
		i.logger.WarnContext(ctx, "model returned invalid JSON", "error", err)
		return domain.FailedReading(msgInvalidJSON)
	}

	if missing := missingKeys(in.OutputFormat, fields); len(missing) > 0 {
		i.logger.WarnContext(ctx, "reading does not match output format", "missing_keys", missing)
	}
	return domain.ReadingOf(fields)
}

// missingKeys lists top-level keys of the output format hint that the
// reading lacks. Non-JSON hints are not checked.
func missingKeys(outputFormat string, fields []byte) []string {
	if !gjson.Valid(outputFormat) {
		return nil
	}
	hint := gjson.Parse(outputFormat)
	if !hint.IsObject() {
		return nil
	}
	got := make(map[string]struct{})
	gjson.ParseBytes(fields).ForEach(func(key, _ gjson.Result) bool {
		got[key.String()] = struct{}{}
		return true
	})
	var missing []string
	hint.ForEach(func(key, _ gjson.Result) bool {
		if _, ok := got[key.String()]; !ok {
			missing = append(missing, key.String())
		}
		return true
	})
	return missing
}
