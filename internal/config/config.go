package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" env-default:":8080"`
	LogLevelRaw     string        `env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	LLMProvider          string        `env:"LLM_PROVIDER" env-default:"gemini"`
	LLMModel             string        `env:"LLM_MODEL"`
	LLMFallbackModelsRaw string        `env:"LLM_FALLBACK_MODELS"`
	LLMTimeout           time.Duration `env:"LLM_TIMEOUT" env-default:"30s"`
	GeminiAPIKey         string        `env:"GEMINI_API_KEY"`
	OpenRouterAPIKey     string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL    string        `env:"OPENROUTER_BASE_URL" env-default:"https://openrouter.ai/api/v1"`

	SlackBotToken      string        `env:"SLACK_BOT_TOKEN"`
	SlackSigningSecret string        `env:"SLACK_SIGNING_SECRET"`
	SlackAPIURL        string        `env:"SLACK_API_URL"`
	SlackConfigKey     string        `env:"SLACK_CONFIG_KEY" env-default:"three_card"`
	SlackTimeout       time.Duration `env:"SLACK_TIMEOUT" env-default:"10s"`

	CatalogPath  string `env:"CATALOG_PATH"`
	ReadingsPath string `env:"READINGS_PATH"`

	// Derived by Validate.
	LogLevel          slog.Level
	LLMFallbackModels []string
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return c, nil
}

// Validate checks credentials and derives parsed fields.
func (c *Config) Validate() error {
	level, err := parseLogLevel(c.LogLevelRaw)
	if err != nil {
		return err
	}
	c.LogLevel = level
	c.LLMFallbackModels = parseFallbackModels(c.LLMFallbackModelsRaw)

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required when LLM_PROVIDER=openrouter")
		}
		if c.LLMModel == "" {
			return fmt.Errorf("LLM_MODEL is required when LLM_PROVIDER=openrouter")
		}
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.SlackBotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	return nil
}

func parseFallbackModels(s string) []string {
	if s == "" {
		return nil
	}
	var models []string
	for _, m := range strings.Split(s, ",") {
		m = strings.TrimSpace(m)
		if m != "" {
			models = append(models, m)
		}
	}
	return models
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
