// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/logging"
	"github.com/filmwise/filmwise/internal/session"
)

// Dispatcher receives ordered user events. Satisfied by *session.Router.
type Dispatcher interface {
	OnUserText(ctx context.Context, userID, text string) error
	OnUserChoice(ctx context.Context, userID, token string) error
}

// Config holds pipeline configuration.
type Config struct {
	// BufferSize is the Pub/Sub output channel buffer. Default: 256
	BufferSize int64 `koanf:"buffer_size" validate:"min=1"`

	// RetryMaxRetries bounds redelivery of transient failures. Default: 3
	RetryMaxRetries int `koanf:"retry_max_retries" validate:"min=0"`

	// RetryInitialInterval is the first retry backoff. Default: 500ms
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`

	// CloseTimeout is how long to wait for the handler on shutdown.
	// Default: 15s
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// DefaultConfig returns the reference pipeline configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:           256,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		CloseTimeout:         15 * time.Second,
	}
}

// Pipeline carries inbound user events from the HTTP layer to the
// session dispatcher over an in-process Pub/Sub. A single handler
// consumes the inbound topic, so each user's events are processed one
// at a time in arrival order.
type Pipeline struct {
	pubsub     *gochannel.GoChannel
	router     *message.Router
	dispatcher Dispatcher
	logger     zerolog.Logger
}

// NewPipeline builds the Pub/Sub, the router and its middleware stack.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(cfg Config, dispatcher Dispatcher, logger zerolog.Logger) (*Pipeline, error) {
	if dispatcher == nil {
		return nil, errors.New("pipeline requires a dispatcher")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = DefaultConfig().RetryInitialInterval
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultConfig().CloseTimeout
	}

	wmLogger := NewLoggerAdapter(logger)
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	p := &Pipeline{
		pubsub:     pubsub,
		router:     router,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "events").Logger(),
	}

	// Middleware, outermost first: exhausted retries divert to the
	// poison topic instead of cycling forever; panics become errors
	// before the retry layer sees them.
	poisonQueue, err := middleware.PoisonQueue(pubsub, TopicPoison)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poisonQueue)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)
	router.AddMiddleware(middleware.Recoverer)

	router.AddNoPublisherHandler("session-dispatcher", TopicInbound, pubsub, p.handleInbound)
	router.AddNoPublisherHandler("poison-logger", TopicPoison, pubsub, p.handlePoison)

	return p, nil
}

// Publisher returns a publisher writing into the pipeline.
func (p *Pipeline) Publisher() *Publisher {
	return NewPublisher(p.pubsub)
}

// Run processes events until the context is canceled. Designed for
// suture supervision.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.router.Run(ctx); err != nil {
		return fmt.Errorf("run event router: %w", err)
	}
	return ctx.Err()
}

// Running returns a channel closed once the router is ready to consume.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close shuts down the router and the Pub/Sub.
func (p *Pipeline) Close() error {
	if err := p.router.Close(); err != nil {
		return fmt.Errorf("close event router: %w", err)
	}
	return p.pubsub.Close()
}

// handleInbound dispatches one user event to the session layer.
//
// Malformed payloads and events the session rejects as unexpected are
// acked: redelivery cannot fix either, and the session already
// re-prompted the user. Transient failures (outbound delivery errors)
// are returned for retry and eventually poisoned.
func (p *Pipeline) handleInbound(msg *message.Message) error {
	event, err := UnmarshalInboundEvent(msg.Payload)
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		p.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed inbound event")
		return nil
	}

	ctx := msg.Context()
	if event.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, event.CorrelationID)
	}
	ctx = logging.ContextWithUserID(ctx, event.UserID)

	switch event.Type {
	case EventTypeText:
		err = p.dispatcher.OnUserText(ctx, event.UserID, event.Text)
	case EventTypeChoice:
		err = p.dispatcher.OnUserChoice(ctx, event.UserID, event.Token)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrUnexpectedEvent), errors.Is(err, session.ErrInvalidUserID):
		logging.Ctx(ctx).Debug().Err(err).Msg("inbound event rejected by session")
		return nil
	default:
		return err
	}
}

// handlePoison logs messages that exhausted their retries. They are
// acked here; losing one turn beats wedging every user's pipeline.
func (p *Pipeline) handlePoison(msg *message.Message) error {
	p.logger.Error().
		Str("message_uuid", msg.UUID).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Str("event_type", msg.Metadata.Get("event_type")).
		Msg("inbound event poisoned after retries")
	return nil
}
