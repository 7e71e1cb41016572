// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are registered with the default registry via promauto and exposed at the
/metrics endpoint in Prometheus text format.

# Available Metrics

API Metrics:
  - api_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)

Conversation Metrics:
  - inbound_events_total: Dispatched user events (counter)
    Labels: event_type (text, choice), outcome (ok, unexpected, error)
  - sessions_active: Live sessions (gauge)
  - sessions_created_total: Sessions created (counter)
  - sessions_evicted_total: Sessions evicted after inactivity (counter)
  - recommendations_served_total: Answers served (counter)
    Labels: source (description, favorites, api), result (hit, empty)
  - tag_extraction_duration_seconds: Extraction latency (histogram)
  - catalog_movies: Loaded catalog size (gauge)

Outbound Delivery Metrics:
  - websocket_connections_active: Active WebSocket connections (gauge)
  - websocket_messages_sent_total: Messages sent (counter)
    Labels: message_type (send_text, present_choices)
  - outbound_send_failures_total: Failed deliveries (counter)
    Labels: reason (no_client, breaker_open, rate_limited, write_error)
  - circuit_breaker_state: Breaker state (gauge, 0=closed, 1=half-open, 2=open)
    Labels: name

# Cardinality

Labels stay low-cardinality on purpose: endpoint labels carry chi route
patterns (no path parameters expanded), user identifiers never appear as
labels, and reason/outcome values are fixed constants.

All recording functions are safe for concurrent use.
*/
package metrics
