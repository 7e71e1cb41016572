// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/filmwise/filmwise/internal/events"
	"github.com/filmwise/filmwise/internal/logging"
	"github.com/filmwise/filmwise/internal/messenger"
	"github.com/filmwise/filmwise/internal/recommend"
	"github.com/filmwise/filmwise/internal/session"
	"github.com/filmwise/filmwise/internal/tags"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/filmwise/config.yaml",
	"/etc/filmwise/config.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every setting at its default.
// Section defaults live with the packages that consume them.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:    "/data/movies.csv",
			MaxRows: 0,
		},
		Extractor: tags.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
		Session:   session.DefaultConfig(),
		Messenger: messenger.DefaultConfig(),
		Events:    events.DefaultConfig(),
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load builds the configuration from layered sources:
//
//	defaults -> optional YAML config file -> environment variables
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Output is a runtime concern, not a serializable setting.
	cfg.Logging.Output = os.Stderr

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that accept comma-separated
// strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"extractor.excluded_tags",
	"extractor.filler_words",
}

// processSliceFields converts comma-separated env values to slices for
// the known slice fields. YAML values arrive as slices already.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps well-known environment variable names (lowercased)
// to koanf config paths. Unmapped variables are ignored so that random
// environment noise cannot pollute the configuration.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Catalog
	"catalog_path":     "catalog.path",
	"catalog_max_rows": "catalog.max_rows",

	// Tag extraction
	"extractor_excluded_tags": "extractor.excluded_tags",
	"extractor_filler_words":  "extractor.filler_words",

	// Recommendation scoring
	"recommend_tag_weight": "recommend.tag_weight",
	"recommend_top_k":      "recommend.top_k",
	"recommend_max_k":      "recommend.max_k",

	// Sessions
	"session_ttl":              "session.ttl",
	"session_cleanup_interval": "session.cleanup_interval",

	// Outbound messenger
	"messenger_rate_per_user":   "messenger.rate_per_user",
	"messenger_burst":           "messenger.burst",
	"messenger_breaker_timeout": "messenger.breaker_timeout",

	// Event pipeline
	"events_buffer_size":            "events.buffer_size",
	"events_retry_max_retries":      "events.retry_max_retries",
	"events_retry_initial_interval": "events.retry_initial_interval",
	"events_close_timeout":          "events.close_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envPrefix namespaces Filmwise-specific variables. Both FILMWISE_HTTP_PORT
// and the bare HTTP_PORT resolve to server.port.
const envPrefix = "filmwise_"

// envTransformFunc maps environment variable names to koanf paths.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, envPrefix)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}
