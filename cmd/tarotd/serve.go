package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/randomtoy/tarotbot/internal/adapters/http"
	"github.com/randomtoy/tarotbot/internal/adapters/llm/gemini"
	"github.com/randomtoy/tarotbot/internal/adapters/llm/openrouter"
	slackadapter "github.com/randomtoy/tarotbot/internal/adapters/slack"
	"github.com/randomtoy/tarotbot/internal/adapters/static"
	"github.com/randomtoy/tarotbot/internal/app"
	"github.com/randomtoy/tarotbot/internal/config"
	"github.com/randomtoy/tarotbot/internal/ports"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and Slack webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	catalog, err := static.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	registry, err := static.LoadRegistry(cfg.ReadingsPath)
	if err != nil {
		return err
	}

	gen, model, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	svc := app.NewTarotService(catalog, registry, app.NewInterpreter(gen, logger), stdRNG{}, model)
	messenger := slackadapter.NewClient(&http.Client{Timeout: cfg.SlackTimeout}, cfg.SlackBotToken, cfg.SlackAPIURL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))
	e.Use(httpadapter.RecoverMiddleware(logger))

	httpadapter.NewHandler(svc).Register(e)
	events := slackadapter.NewEventHandler(svc, messenger, cfg.SlackConfigKey, cfg.SlackSigningSecret, logger)
	events.Register(e)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "provider", cfg.LLMProvider, "model", model)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		events.Wait()
		return nil
	})
	return g.Wait()
}

func newGenerator(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Generator, string, error) {
	httpClient := &http.Client{Timeout: cfg.LLMTimeout}

	switch cfg.LLMProvider {
	case config.ProviderOpenRouter:
		return openrouter.NewClient(
			httpClient,
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterBaseURL,
			cfg.LLMModel,
			cfg.LLMFallbackModels,
			logger,
		), cfg.LLMModel, nil
	default:
		model := cfg.LLMModel
		if model == "" {
			model = gemini.DefaultModel
		}
		client, err := gemini.NewClient(ctx, httpClient, cfg.GeminiAPIKey, "", model)
		if err != nil {
			return nil, "", err
		}
		return client, model, nil
	}
}
