// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/filmwise/filmwise/internal/logging"
)

// Publisher publishes inbound user events to the pipeline. Used by the
// HTTP layer; never blocks on session processing.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher wraps a Watermill publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// PublishText publishes a free-text event for the user.
func (p *Publisher) PublishText(ctx context.Context, userID, text string) error {
	return p.publish(ctx, &InboundEvent{
		Type:   EventTypeText,
		UserID: userID,
		Text:   text,
	})
}

// PublishChoice publishes a button-tap event for the user.
func (p *Publisher) PublishChoice(ctx context.Context, userID, token string) error {
	return p.publish(ctx, &InboundEvent{
		Type:   EventTypeChoice,
		UserID: userID,
		Token:  token,
	})
}

func (p *Publisher) publish(ctx context.Context, event *InboundEvent) error {
	event.CorrelationID = logging.CorrelationIDFromContext(ctx)
	event.OccurredAt = time.Now().UTC()

	if err := event.Validate(); err != nil {
		return fmt.Errorf("publish inbound event: %w", err)
	}

	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("publish inbound event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("correlation_id", event.CorrelationID)

	if err := p.pub.Publish(TopicInbound, msg); err != nil {
		return fmt.Errorf("publish inbound event: %w", err)
	}
	return nil
}
