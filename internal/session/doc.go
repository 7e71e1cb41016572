// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package session implements the per-user conversational state machine and
the router that maps user ids to sessions.

A session moves through five modes:

	Idle ──"/start" or mode tap──▶ AwaitingModeChoice / AwaitingDescription / AwaitingFavorites
	AwaitingDescription ──free text──▶ answer, back to Idle
	AwaitingFavorites ──free text──▶ intake; ambiguous titles enter Clarifying
	Clarifying ──tap──▶ next group, or answer and back to Idle

The favorites intake splits free text on ';' and looks each segment up by
normalized title. Unambiguous titles contribute their tags to the query
and their id to the exclusion set at once; titles matching several
records queue one clarification group each, resolved front to back with
one button per candidate.

Every completed answer clears the accumulated query tags and exclusion
ids and returns the session to Idle. Unexpected events (free text while
Idle, a tap outside Clarifying) re-prompt the user and change nothing;
they surface as ErrUnexpectedEvent.

Event handlers mutate a scratch copy of the session state and commit it
only after every outbound messenger call succeeded. A failed delivery
therefore leaves the session exactly as if the event never arrived.

Sessions require no internal locking: the inbound pipeline delivers each
user's events one at a time. The Router's table is shared across users
and guarded by a mutex, with inactivity-based eviction backed by
go-cache.
*/
package session
