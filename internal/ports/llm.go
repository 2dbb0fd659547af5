package ports

import "context"

// Generator sends a finished prompt to a text-generation model and returns
// the raw text it produced.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
