// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package events carries inbound user events from the HTTP layer to the
session dispatcher over a Watermill in-process Pub/Sub.

The HTTP handlers publish text and choice events to the inbound topic;
a single router handler consumes it and dispatches to the session
router. One consumer means events are processed strictly in arrival
order, which is the ordering guarantee the session layer's lock-free
design depends on.

The middleware stack, outermost first:

  - PoisonQueue: messages that exhaust their retries are diverted to a
    poison topic, where they are logged and acked. A wedged event must
    never block the pipeline for every user.
  - Retry: transient dispatch failures (an outbound delivery that the
    messenger rejected) back off and retry a few times.
  - Recoverer: handler panics become errors for the retry layer.

Malformed payloads and events the session rejects as unexpected are
acked immediately; redelivery cannot fix either.
*/
package events
