// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DatabaseURL selects the store: a sqlite:// URL or bare file path for
	// the embedded engine, postgres:// for lib/pq, or "memory".
	DatabaseURL   string `envconfig:"DATABASE_URL" default:"./data/inbox.db"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	Port          int    `envconfig:"PORT" default:"8080"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
