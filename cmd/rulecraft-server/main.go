// Command rulecraft-server serves rule generation over HTTP.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... rulecraft-server
//	GEMINI_API_KEY=gk-...    RULECRAFT_PROVIDER=gemini rulecraft-server
//
// Configuration is read from the environment (and a .env file when
// present): RULECRAFT_ADDR, RULECRAFT_PROVIDER, RULECRAFT_MODEL,
// RULECRAFT_VERSION, RULECRAFT_LOG_LEVEL, and the provider API keys.
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
	"time"

	"github.com/joho/godotenv"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/anthropic"
	"github.com/PhongLee1210/cursor-rules-craft/gemini"
	"github.com/PhongLee1210/cursor-rules-craft/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rulecraft-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := server.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		return err
	}

	svc := server.NewService(providers,
		server.WithDefaultProvider(cfg.DefaultProvider),
		server.WithDefaultModel(cfg.DefaultModel),
		server.WithVersion(cfg.Version),
		server.WithServiceLogger(log),
	)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(svc, server.WithLogger(log)).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "provider", cfg.DefaultProvider, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildProviders(ctx context.Context, cfg server.Config) (map[string]rulecraft.ModelProvider, error) {
	providers := make(map[string]rulecraft.ModelProvider)
	if cfg.AnthropicAPIKey != "" {
		providers["anthropic"] = anthropic.New(cfg.AnthropicAPIKey)
	}
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		providers["gemini"] = g
	}
	return providers, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
