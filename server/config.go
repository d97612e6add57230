package server

import (
	"fmt"
	"os"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// Config carries server deployment settings, read from the environment.
type Config struct {
	Addr            string
	DefaultProvider string
	DefaultModel    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	Version         string
	LogLevel        string
}

// LoadConfig reads configuration from the environment, applying
// defaults for everything except API keys.
func LoadConfig() Config {
	return Config{
		Addr:            envOr("RULECRAFT_ADDR", ":8085"),
		DefaultProvider: envOr("RULECRAFT_PROVIDER", "anthropic"),
		DefaultModel:    os.Getenv("RULECRAFT_MODEL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		Version:         envOr("RULECRAFT_VERSION", "dev"),
		LogLevel:        envOr("RULECRAFT_LOG_LEVEL", "info"),
	}
}

// Validate checks that the configured default provider has a key.
func (c Config) Validate() error {
	switch c.DefaultProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required: %w", rulecraft.ErrValidation)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required: %w", rulecraft.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown provider %q: %w", c.DefaultProvider, rulecraft.ErrValidation)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
