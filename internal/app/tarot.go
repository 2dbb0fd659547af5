package app

import (
	"context"
	"fmt"
	"time"

	"github.com/randomtoy/tarotbot/internal/domain"
)

// ReadRequest is the application-level input (no HTTP types).
type ReadRequest struct {
	Story     string
	ConfigKey string
}

// ReadResult is the application-level output.
type ReadResult struct {
	Reading   domain.Reading
	Cards     []domain.DrawnCard
	Model     string
	LatencyMS int64
}

// TarotService orchestrates card draws and LLM interpretation.
type TarotService struct {
	catalog     domain.Catalog
	registry    domain.Registry
	interpreter *Interpreter
	rng         domain.RNG
	model       string
}

func NewTarotService(catalog domain.Catalog, registry domain.Registry, interp *Interpreter, rng domain.RNG, model string) *TarotService {
	return &TarotService{
		catalog:     catalog,
		registry:    registry,
		interpreter: interp,
		rng:         rng,
		model:       model,
	}
}

// Read draws cards for the configured method and asks the model to interpret them.
// Model failures are reported inside ReadResult.Reading; returned errors are
// local defects such as an unknown key or a malformed method.
func (s *TarotService) Read(ctx context.Context, req ReadRequest) (ReadResult, error) {
	cfg, err := s.registry.Lookup(req.ConfigKey)
	if err != nil {
		return ReadResult{}, err
	}

	n, err := cfg.CardCount()
	if err != nil {
		return ReadResult{}, fmt.Errorf("config %s: %w", req.ConfigKey, err)
	}

	cards, err := domain.Draw(s.catalog, n, s.rng)
	if err != nil {
		return ReadResult{}, fmt.Errorf("draw: %w", err)
	}

	start := time.Now()
	reading := s.interpreter.Interpret(ctx, PromptInput{
		Method:       cfg.Method,
		Rule:         cfg.Rule,
		Cards:        domain.FormatCardList(cards),
		Story:        req.Story,
		OutputFormat: cfg.OutputFormat,
	})

	return ReadResult{
		Reading:   reading,
		Cards:     cards,
		Model:     s.model,
		LatencyMS: time.Since(start).Milliseconds(),
	}, nil
}

// Keys lists the reading config keys this service accepts.
func (s *TarotService) Keys() []string {
	return s.registry.Keys()
}
