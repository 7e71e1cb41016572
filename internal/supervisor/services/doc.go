// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package services provides suture.Service wrappers for Filmwise
components, translating their lifecycle patterns (ListenAndServe,
RunWithContext) into suture's context-aware Serve pattern.
*/
package services
