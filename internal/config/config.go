// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package config

import (
	"fmt"
	"time"

	"github.com/filmwise/filmwise/internal/events"
	"github.com/filmwise/filmwise/internal/logging"
	"github.com/filmwise/filmwise/internal/messenger"
	"github.com/filmwise/filmwise/internal/recommend"
	"github.com/filmwise/filmwise/internal/session"
	"github.com/filmwise/filmwise/internal/tags"
	"github.com/filmwise/filmwise/internal/validation"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Catalog   CatalogConfig    `koanf:"catalog"`
	Extractor tags.Config      `koanf:"extractor"`
	Recommend recommend.Config `koanf:"recommend"`
	Session   session.Config   `koanf:"session"`
	Messenger messenger.Config `koanf:"messenger"`
	Events    events.Config    `koanf:"events"`
	Security  SecurityConfig   `koanf:"security"`
	Logging   logging.Config   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CatalogConfig holds movie catalog ingestion settings.
type CatalogConfig struct {
	// Path is the CSV file the catalog is loaded from at startup.
	Path string `koanf:"path" validate:"required"`

	// MaxRows caps ingestion. Zero means unlimited.
	MaxRows int `koanf:"max_rows" validate:"min=0"`
}

// SecurityConfig holds the HTTP surface's protective settings.
type SecurityConfig struct {
	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the per-IP request budget per window.
	RateLimitReqs int `koanf:"rate_limit_reqs" validate:"min=1"`

	// RateLimitWindow is the rate limit accounting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=1s"`

	// RateLimitDisabled turns off HTTP rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// Validate checks the configuration for consistency. It combines
// tag-based struct validation with the range checks the tags cannot
// express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if c.Session.CleanupInterval > c.Session.TTL {
		return fmt.Errorf("session: cleanup_interval %s exceeds ttl %s",
			c.Session.CleanupInterval, c.Session.TTL)
	}

	if c.Events.RetryMaxRetries > 0 && c.Events.RetryInitialInterval <= 0 {
		return fmt.Errorf("events: retry_initial_interval must be positive when retries are enabled")
	}

	return nil
}
