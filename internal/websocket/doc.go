// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package websocket delivers outbound conversation actions to connected
users.

Unlike a broadcast hub, this hub indexes clients by user id: a send_text
or present_choices message targets exactly one user and reaches every
connection that user holds (multiple tabs or devices). Inbound
conversation events travel over HTTP, so the socket's read side only
services ping/pong keepalive and disconnect detection.

Message envelope:

	{"type": "send_text", "data": {"text": "..."}}
	{"type": "present_choices", "data": {"prompt": "...", "choices": [{"label": "...", "token": "..."}]}}

Delivery to a user with no open connection fails with ErrNoClient; the
messenger layer turns that into a failed conversation event, which
leaves the session state untouched. A connection whose outbound queue is
full is dropped rather than allowed to block the sender.

The hub runs under suture supervision via RunWithContext; cancellation
closes every client in deterministic id order.
*/
package websocket
