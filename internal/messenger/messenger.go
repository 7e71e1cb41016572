// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package messenger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/filmwise/filmwise/internal/metrics"
	"github.com/filmwise/filmwise/internal/session"
	"github.com/filmwise/filmwise/internal/websocket"
)

// ErrRateLimited is returned when a user's outbound rate budget is
// exhausted.
var ErrRateLimited = errors.New("outbound rate limit exceeded")

// Config holds outbound delivery configuration.
type Config struct {
	// RatePerUser is the sustained outbound message rate per user,
	// in messages per second. Default: 5
	RatePerUser float64 `koanf:"rate_per_user" validate:"gt=0"`

	// Burst is the per-user burst allowance. Default: 10
	Burst int `koanf:"burst" validate:"min=1"`

	// BreakerTimeout is how long the circuit stays open before probing.
	// Default: 30s
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"min=1s"`
}

// DefaultConfig returns the reference delivery configuration.
func DefaultConfig() Config {
	return Config{
		RatePerUser:    5,
		Burst:          10,
		BreakerTimeout: 30 * time.Second,
	}
}

// Deliverer pushes one message to a user's connections. Satisfied by
// *websocket.Hub.
type Deliverer interface {
	Deliver(userID string, message websocket.Message) error
}

// limiterEntry wraps a per-user rate limiter with its last access time
// so stale entries can be swept.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// WSMessenger implements session.Messenger on top of the websocket hub,
// guarded by a circuit breaker and a per-user rate limiter. A rejected
// or failed delivery fails the triggering conversation event, which
// leaves the session state untouched.
type WSMessenger struct {
	cfg       Config
	deliverer Deliverer
	cb        *gobreaker.CircuitBreaker[any]
	logger    zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

const (
	breakerName = "outbound-messenger"

	// limiterSweepThreshold bounds the limiter map; entries idle for an
	// hour are swept once the map grows past it.
	limiterSweepThreshold = 1024
	limiterIdleExpiry     = time.Hour
)

// New creates a messenger delivering through the given Deliverer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, deliverer Deliverer, logger zerolog.Logger) *WSMessenger {
	if cfg.RatePerUser <= 0 {
		cfg.RatePerUser = DefaultConfig().RatePerUser
	}
	if cfg.Burst < 1 {
		cfg.Burst = DefaultConfig().Burst
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = DefaultConfig().BreakerTimeout
	}

	m := &WSMessenger{
		cfg:       cfg,
		deliverer: deliverer,
		logger:    logger.With().Str("component", "messenger").Logger(),
		limiters:  make(map[string]*limiterEntry),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	m.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.logger.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return m
}

var _ session.Messenger = (*WSMessenger)(nil)

// SendText delivers a text message to the user.
func (m *WSMessenger) SendText(ctx context.Context, userID, text string) error {
	msg := websocket.Message{
		Type: websocket.MessageTypeSendText,
		Data: websocket.TextData{Text: text},
	}
	return m.deliver(ctx, userID, msg)
}

// PresentChoices delivers a button prompt to the user.
func (m *WSMessenger) PresentChoices(ctx context.Context, userID, prompt string, choices []session.Choice) error {
	data := websocket.ChoicesData{
		Prompt:  prompt,
		Choices: make([]websocket.ChoiceData, len(choices)),
	}
	for i, c := range choices {
		data.Choices[i] = websocket.ChoiceData{Label: c.Label, Token: c.Token}
	}
	msg := websocket.Message{
		Type: websocket.MessageTypePresentChoices,
		Data: data,
	}
	return m.deliver(ctx, userID, msg)
}

func (m *WSMessenger) deliver(ctx context.Context, userID string, msg websocket.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deliver %s to %s: %w", msg.Type, userID, err)
	}

	if !m.allow(userID) {
		metrics.RecordSendFailure("rate_limited")
		return fmt.Errorf("deliver %s to %s: %w", msg.Type, userID, ErrRateLimited)
	}

	_, err := m.cb.Execute(func() (any, error) {
		return nil, m.deliverer.Deliver(userID, msg)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.RecordSendFailure("breaker_open")
		case errors.Is(err, websocket.ErrNoClient):
			metrics.RecordSendFailure("no_client")
		default:
			metrics.RecordSendFailure("write_error")
		}
		m.logger.Warn().Err(err).Str("user_id", userID).Str("message_type", msg.Type).Msg("outbound delivery failed")
		return fmt.Errorf("deliver %s to %s: %w", msg.Type, userID, err)
	}
	return nil
}

// allow consumes one token from the user's rate budget.
func (m *WSMessenger) allow(userID string) bool {
	m.mu.Lock()
	entry, ok := m.limiters[userID]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(m.cfg.RatePerUser), m.cfg.Burst),
		}
		m.limiters[userID] = entry
	}
	entry.lastAccess = time.Now()
	if len(m.limiters) > limiterSweepThreshold {
		m.sweepLocked()
	}
	limiter := entry.limiter
	m.mu.Unlock()

	return limiter.Allow()
}

// sweepLocked removes limiters idle past the expiry. Must be called
// with m.mu held.
func (m *WSMessenger) sweepLocked() {
	cutoff := time.Now().Add(-limiterIdleExpiry)
	for userID, entry := range m.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(m.limiters, userID)
		}
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
