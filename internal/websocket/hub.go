// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/filmwise/filmwise/internal/logging"
	"github.com/filmwise/filmwise/internal/metrics"
)

// ErrNoClient is returned when a delivery targets a user with no
// connected client.
var ErrNoClient = errors.New("no connected client for user")

// Message types for WebSocket communication
const (
	MessageTypeSendText       = "send_text"
	MessageTypePresentChoices = "present_choices"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// TextData is the payload of a send_text message.
type TextData struct {
	Text string `json:"text"`
}

// ChoiceData is one button of a present_choices message.
type ChoiceData struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// ChoicesData is the payload of a present_choices message.
type ChoicesData struct {
	Prompt  string       `json:"prompt"`
	Choices []ChoiceData `json:"choices"`
}

// Hub maintains the set of active clients, indexed by user id, and
// delivers outbound conversation actions to a single user's connections.
type Hub struct {
	clients    map[*Client]bool
	byUser     map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
	}
}

// RunWithContext runs the client lifecycle loop until the context is
// canceled. Designed for suture supervision: on cancellation every
// connected client is closed and ctx.Err() is returned, so a restart
// never inherits orphaned connections.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			closed := h.closeAllClients()
			logging.Info().
				Str("component", "websocket-hub").
				Int("clients_closed", closed).
				Msg("websocket hub stopped")
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	if h.byUser[client.userID] == nil {
		h.byUser[client.userID] = make(map[*Client]bool)
	}
	h.byUser[client.userID][client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	logging.Info().Str("user_id", client.userID).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.dropFromUserIndex(client)
		close(client.send)
		metrics.WSConnectionsActive.Dec()
	}
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().Str("user_id", client.userID).Int("total_clients", total).Msg("websocket client disconnected")
}

// dropFromUserIndex must be called with h.mu held.
func (h *Hub) dropFromUserIndex(client *Client) {
	if set, ok := h.byUser[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.byUser, client.userID)
		}
	}
}

// Deliver enqueues the message to every connection of the given user, in
// client id order for deterministic delivery. It fails with ErrNoClient
// when the user has no connection; a connection whose outbound queue is
// full is dropped. Delivery succeeds if at least one connection accepted
// the message.
func (h *Hub) Deliver(userID string, message Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.byUser[userID]
	if len(set) == 0 {
		return ErrNoClient
	}

	// Sort by client id so multi-connection users see a stable order.
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	delivered := 0
	for _, client := range clients {
		select {
		case client.send <- message:
			delivered++
		default:
			// Slow consumer; disconnect rather than block the sender.
			delete(h.clients, client)
			h.dropFromUserIndex(client)
			close(client.send)
			metrics.WSConnectionsActive.Dec()
			logging.Warn().Str("user_id", userID).Msg("dropping slow websocket client")
		}
	}
	if delivered == 0 {
		return ErrNoClient
	}

	metrics.WSMessagesSentTotal.WithLabelValues(message.Type).Inc()
	return nil
}

// closeAllClients closes every connected client in id order and returns
// how many were closed.
func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		h.dropFromUserIndex(client)
		metrics.WSConnectionsActive.Dec()
	}
	return len(clients)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserConnected reports whether the user has at least one connection.
func (h *Hub) UserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}
