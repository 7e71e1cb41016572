// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Topics carried by the in-process Pub/Sub.
const (
	// TopicInbound carries user conversation events from the HTTP layer
	// to the session dispatcher.
	TopicInbound = "conversation.inbound"

	// TopicPoison receives messages that exhausted their retries.
	TopicPoison = "conversation.poison"
)

// Event types.
const (
	EventTypeText   = "text"
	EventTypeChoice = "choice"
)

// InboundEvent is one user action: a free-text message or a button tap.
type InboundEvent struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	Text          string    `json:"text,omitempty"`
	Token         string    `json:"token,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Validate checks the event is well-formed for dispatch.
func (e *InboundEvent) Validate() error {
	switch e.Type {
	case EventTypeText:
		if e.Text == "" {
			return fmt.Errorf("text event without text")
		}
	case EventTypeChoice:
		if e.Token == "" {
			return fmt.Errorf("choice event without token")
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == "" {
		return fmt.Errorf("event without user id")
	}
	return nil
}

// Marshal serializes the event for the message payload.
func (e *InboundEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalInboundEvent deserializes a message payload.
func UnmarshalInboundEvent(payload []byte) (*InboundEvent, error) {
	var e InboundEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal inbound event: %w", err)
	}
	return &e, nil
}
