// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package recommend

import "fmt"

// Config holds matcher configuration.
type Config struct {
	// TagWeight is the weight of thematic similarity in the blended score,
	// in (0, 1). The vote-average component gets 1 - TagWeight.
	// Default: 0.95
	TagWeight float64 `koanf:"tag_weight" validate:"gt=0,lt=1"`

	// TopK is the number of records returned by a conversational answer.
	// Default: 5
	TopK int `koanf:"top_k" validate:"min=1"`

	// MaxK caps the K accepted from one-shot API requests.
	// Default: 50
	MaxK int `koanf:"max_k" validate:"min=1"`
}

// DefaultConfig returns the reference matcher configuration.
func DefaultConfig() Config {
	return Config{
		TagWeight: 0.95,
		TopK:      5,
		MaxK:      50,
	}
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.TagWeight <= 0 || c.TagWeight >= 1 {
		return fmt.Errorf("tag_weight must be in (0, 1), got %v", c.TagWeight)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MaxK < c.TopK {
		return fmt.Errorf("max_k (%d) must be >= top_k (%d)", c.MaxK, c.TopK)
	}
	return nil
}
