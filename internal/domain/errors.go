package domain

import "errors"

var (
	ErrInvalidN       = errors.New("n must be at least 1")
	ErrEmptyCatalog   = errors.New("card catalog is empty")
	ErrUnknownConfig  = errors.New("invalid config_key")
	ErrInvalidMethod  = errors.New("method must start with a card count")
	ErrUpstreamLLM    = errors.New("upstream LLM failure")
	ErrInvalidLLMJSON = errors.New("LLM returned invalid JSON")
)

// UpstreamError wraps a failed model call. It matches ErrUpstreamLLM but
// prints only the cause, since the text is shown to users.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamLLM }
