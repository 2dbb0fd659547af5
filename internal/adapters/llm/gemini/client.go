package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/randomtoy/tarotbot/internal/domain"
)

const DefaultModel = "gemini-1.5-flash"

// Client implements ports.Generator via the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a Gemini client. baseURL is only set in tests.
func NewClient(ctx context.Context, httpClient *http.Client, apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &domain.UpstreamError{Err: err}
	}
	// An empty candidate list yields "", which the caller rejects as invalid JSON.
	return resp.Text(), nil
}
