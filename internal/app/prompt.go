package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randomtoy/tarotbot/internal/domain"
)

// PromptInput carries the five values substituted into the reading prompt.
type PromptInput struct {
	Method       string
	Rule         string
	Cards        string
	Story        string
	OutputFormat string
}

const promptTemplate = `
# Role
You are a warm and wise tarot master.

# Guidelines
- Using the querent's story and the cards drawn, produce a JSON object with an interpretation for the past, the present and the future, plus an overall summary.
- Every value in the JSON must be a concrete interpretation of the card in this situation.
- Write at least one or two sentences for each interpretation.
- Keep the whole reading between 150 and 300 characters.

# Reading
- Method: %s
- Rule: %s
- Cards drawn: %s

# Querent's story
- Concern: %s

# Output format (return ONLY this JSON structure, no other text)
%s
`

// BuildPrompt fills the fixed reading template. Values are inserted verbatim.
func BuildPrompt(in PromptInput) string {
	return fmt.Sprintf(promptTemplate, in.Method, in.Rule, in.Cards, in.Story, in.OutputFormat)
}

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// ParseReading strips code fences from the model output and requires the
// remainder to be valid JSON.
func ParseReading(text string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(fenceReplacer.Replace(strings.TrimSpace(text)))
	if cleaned == "" || !json.Valid([]byte(cleaned)) {
		return nil, domain.ErrInvalidLLMJSON
	}
	return json.RawMessage(cleaned), nil
}
