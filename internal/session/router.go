// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/metrics"
	"github.com/filmwise/filmwise/internal/recommend"
)

// ErrInvalidUserID is returned for events carrying an empty user id.
var ErrInvalidUserID = errors.New("invalid user id")

// Config holds session table configuration.
type Config struct {
	// TTL is the inactivity window after which a session may be evicted.
	// Default: 30m
	TTL time.Duration `koanf:"ttl" validate:"min=1m"`

	// CleanupInterval is how often expired sessions are swept.
	// Default: 5m
	CleanupInterval time.Duration `koanf:"cleanup_interval" validate:"min=1s"`
}

// DefaultConfig returns the reference session table configuration.
func DefaultConfig() Config {
	return Config{
		TTL:             30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Deps are the collaborators every session shares.
type Deps struct {
	Catalog   *catalog.Catalog
	Matcher   *recommend.Matcher
	Extractor catalog.TagExtractor
	Messenger Messenger
}

// Router maps user ids to sessions, creating one on first contact.
// Table access is serialized with a mutex; the sessions themselves rely
// on the inbound pipeline delivering each user's events one at a time.
type Router struct {
	mu       sync.Mutex
	sessions *gocache.Cache
	deps     Deps
	logger   zerolog.Logger
}

// NewRouter creates a session router with an inactivity-based table.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(cfg Config, deps Deps, logger zerolog.Logger) (*Router, error) {
	if deps.Catalog == nil || deps.Matcher == nil || deps.Extractor == nil || deps.Messenger == nil {
		return nil, errors.New("router requires catalog, matcher, extractor and messenger")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	r := &Router{
		sessions: gocache.New(cfg.TTL, cfg.CleanupInterval),
		deps:     deps,
		logger:   logger.With().Str("component", "session_router").Logger(),
	}
	r.sessions.OnEvicted(func(userID string, _ interface{}) {
		metrics.SessionsEvictedTotal.Inc()
		metrics.SessionsActive.Dec()
		r.logger.Debug().Str("user_id", userID).Msg("session evicted after inactivity")
	})
	return r, nil
}

// OnUserText dispatches one free-text event to the user's session.
func (r *Router) OnUserText(ctx context.Context, userID, text string) error {
	return r.dispatch(ctx, userID, "text", func(ctx context.Context, s *Session) error {
		return s.HandleText(ctx, text)
	})
}

// OnUserChoice dispatches one button-tap event to the user's session.
func (r *Router) OnUserChoice(ctx context.Context, userID, token string) error {
	return r.dispatch(ctx, userID, "choice", func(ctx context.Context, s *Session) error {
		return s.HandleChoice(ctx, token)
	})
}

// Len returns the number of live sessions.
func (r *Router) Len() int {
	return r.sessions.ItemCount()
}

func (r *Router) dispatch(ctx context.Context, userID, eventType string, handle func(context.Context, *Session) error) error {
	if userID == "" {
		metrics.RecordInboundEvent(eventType, "error")
		return ErrInvalidUserID
	}

	s := r.session(userID)
	err := handle(ctx, s)

	// A handled event keeps the session warm even when it was unexpected.
	r.mu.Lock()
	r.sessions.SetDefault(userID, s)
	r.mu.Unlock()

	switch {
	case err == nil:
		metrics.RecordInboundEvent(eventType, "ok")
	case errors.Is(err, ErrUnexpectedEvent):
		metrics.RecordInboundEvent(eventType, "unexpected")
	default:
		metrics.RecordInboundEvent(eventType, "error")
	}
	if err != nil {
		return fmt.Errorf("dispatch %s event for user %s: %w", eventType, userID, err)
	}
	return nil
}

func (r *Router) session(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.sessions.Get(userID); ok {
		return v.(*Session)
	}

	s := New(userID, r.deps.Catalog, r.deps.Matcher, r.deps.Extractor, r.deps.Messenger, r.logger)
	r.sessions.SetDefault(userID, s)
	metrics.SessionsCreatedTotal.Inc()
	metrics.SessionsActive.Inc()
	r.logger.Debug().Str("user_id", userID).Msg("session created")
	return s
}
