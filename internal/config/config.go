// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// MinPasswordIterations is the lowest PBKDF2 work factor accepted for new hashes.
const MinPasswordIterations = 100000

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OBLOG_DB_PATH" envDefault:"./data/blog.db"`
	ServerHost string `env:"OBLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OBLOG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OBLOG_ENV" envDefault:"development"`
	LogLevel   string `env:"OBLOG_LOG_LEVEL" envDefault:"info"`
	SiteName   string `env:"OBLOG_SITE_NAME" envDefault:"oBlog"`

	// Work factor for newly created password hashes. Existing hashes are
	// upgraded on the next successful login.
	PasswordIterations int `env:"OBLOG_PASSWORD_ITERATIONS" envDefault:"600000"`

	// Extra origins allowed to submit forms cross-site, comma separated.
	TrustedOrigins []string `env:"OBLOG_TRUSTED_ORIGINS" envSeparator:","`

	// Optional per-IP throttle on login and registration submissions.
	// Off unless a positive rate is set.
	AuthRateLimit float64 `env:"OBLOG_AUTH_RATE_LIMIT" envDefault:"0"`
	AuthRateBurst int     `env:"OBLOG_AUTH_RATE_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SlogLevel maps LogLevel onto a slog level. Unknown values were rejected by Load.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "development", "production":
	default:
		return fmt.Errorf("OBLOG_ENV must be development or production, got %q", c.Env)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("OBLOG_LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("OBLOG_SERVER_PORT out of range: %d", c.ServerPort)
	}

	if c.PasswordIterations < MinPasswordIterations {
		return fmt.Errorf("OBLOG_PASSWORD_ITERATIONS must be at least %d, got %d",
			MinPasswordIterations, c.PasswordIterations)
	}

	if c.AuthRateLimit < 0 {
		return fmt.Errorf("OBLOG_AUTH_RATE_LIMIT must not be negative, got %v", c.AuthRateLimit)
	}
	if c.AuthRateLimit > 0 && c.AuthRateBurst < 1 {
		return fmt.Errorf("OBLOG_AUTH_RATE_BURST must be at least 1, got %d", c.AuthRateBurst)
	}

	if strings.TrimSpace(c.SiteName) == "" {
		return fmt.Errorf("OBLOG_SITE_NAME must not be empty")
	}
	return nil
}
