// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package messenger delivers the session layer's outbound actions
(send_text, present_choices) through the websocket hub.

Two guards sit in front of the hub:

  - A per-user token-bucket rate limiter (golang.org/x/time/rate) so one
    conversation cannot flood its own connections.
  - A circuit breaker (sony/gobreaker) shared across all deliveries,
    opening after a sustained failure rate and probing again after a
    timeout.

A rejected or failed delivery returns an error to the session, which
discards the triggering event without mutating state; the user simply
retries. Failure reasons are recorded as outbound_send_failures_total
with reason no_client, breaker_open, rate_limited or write_error.
*/
package messenger
