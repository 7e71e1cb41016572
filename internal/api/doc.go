// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package api provides the HTTP surface using the Chi router.

The conversational endpoints are asymmetric by design: inbound events
arrive over plain HTTP POSTs (/api/v1/messages, /api/v1/choices) and
are queued onto the event pipeline, while outbound replies are pushed
over the user's WebSocket connection (/api/v1/ws). A 202 from a POST
means the event was queued, not that the session processed it.

GET /api/v1/recommendations is the stateless escape hatch: it runs tag
extraction and ranking in-request without touching any session.

Responses use the APIResponse envelope with a machine-readable error
code and the request's correlation ID. All middleware comes from the
Chi ecosystem (go-chi/cors, go-chi/httprate) plus local correlation ID
and Prometheus instrumentation.
*/
package api
