// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package catalog holds the immutable movie catalog snapshot.

A Catalog is built once from raw rows (typically loaded from the bundled
CSV via Load), computing each record's normalized title and semantic tag
set up front. After construction the snapshot is read-only and may be
shared by reference across all sessions without synchronization.

All view operations (ByID, ByTitle, Excluding) return new Catalog values
that copy the matching records; they never alias mutable state back into
the parent. Lookups that match nothing return an empty Catalog, not an
error.
*/
package catalog
