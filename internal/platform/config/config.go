// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	PresetsFile string `env:"PRESETS_FILE"`
	LowLight    bool   `env:"LOW_LIGHT" default:"true"`

	TickInterval time.Duration `env:"TICK_INTERVAL" default:"1s"`
	ScrollSpeed  time.Duration `env:"SCROLL_SPEED" default:"200ms"`

	DisplayBreakerThreshold uint          `env:"DISPLAY_BREAKER_THRESHOLD" default:"5"`
	DisplayBreakerDelay     time.Duration `env:"DISPLAY_BREAKER_DELAY" default:"30s"`

	MutationRateLimit float64 `env:"MUTATION_RATE_LIMIT" default:"5"`
	MutationRateBurst int     `env:"MUTATION_RATE_BURST" default:"10"`

	// AllowedOrigins are extra browser origins, space separated, that may open
	// the WebSocket update stream.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("PORT is required")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %v", cfg.TickInterval)
	}
	if cfg.ScrollSpeed <= 0 {
		return fmt.Errorf("SCROLL_SPEED must be positive, got %v", cfg.ScrollSpeed)
	}
	if cfg.DisplayBreakerThreshold == 0 {
		return errors.New("DISPLAY_BREAKER_THRESHOLD must be at least 1")
	}
	if cfg.DisplayBreakerDelay <= 0 {
		return fmt.Errorf("DISPLAY_BREAKER_DELAY must be positive, got %v", cfg.DisplayBreakerDelay)
	}
	if cfg.MutationRateLimit <= 0 {
		return fmt.Errorf("MUTATION_RATE_LIMIT must be positive, got %v", cfg.MutationRateLimit)
	}
	if cfg.MutationRateBurst < 1 {
		return fmt.Errorf("MUTATION_RATE_BURST must be at least 1, got %d", cfg.MutationRateBurst)
	}
	return nil
}
