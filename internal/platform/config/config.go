// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, services) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Circle Blog API server.
type Config struct {

	// Server settings. ENVIRONMENT=development relaxes CORS to loopback
	// origins and drops the Secure cookie flag for plain-HTTP local runs.
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"production"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Store (Redis) holding session bindings
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Session cookie and lifetime
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"24h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"circle_session"`

	// MinPasswordLength is the signup password policy.
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`

	// Blob storage for post images
	UploadDir        string   `env:"UPLOAD_DIR"         envDefault:"./uploads"`
	UploadURLPrefix  string   `env:"UPLOAD_URL_PREFIX"  envDefault:"uploads"`
	MaxUploadSize    int64    `env:"MAX_UPLOAD_SIZE"    envDefault:"5242880"`
	AllowedFileTypes []string `env:"ALLOWED_FILE_TYPES" envDefault:"jpg,jpeg,png,gif,webp" envSeparator:","`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.MinPasswordLength < 1 {
		return nil, fmt.Errorf("config: MIN_PASSWORD_LENGTH must be positive, got %d", cfg.MinPasswordLength)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a trimmed slice.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
