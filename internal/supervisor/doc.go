// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package supervisor builds the suture v4 supervision tree.

The tree has two child supervisors under the root:

	filmwise
	├── conversation-layer   WebSocket hub, event pipeline
	└── api-layer            HTTP server

Supervision events are logged through sutureslog into the application's
zerolog output via the logging package's slog bridge.
*/
package supervisor
