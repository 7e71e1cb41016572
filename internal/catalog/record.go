// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package catalog

import (
	"fmt"
	"strings"

	"github.com/filmwise/filmwise/internal/tags"
)

// RawMovieRow is one ingested catalog row before tag computation.
// Country and Genre are delimiter-separated strings as found in the
// source data.
type RawMovieRow struct {
	ID            string
	Title         string
	OriginalTitle string
	Year          string
	Genre         string
	Country       string
	Description   string
	VoteAverage   float64
	Votes         int
}

// MovieRecord is an immutable catalog entry. Tags is computed once at
// catalog construction and never mutated afterwards, so records may be
// shared freely across goroutines.
type MovieRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	NormalizedTitle string   `json:"-"`
	Year            string   `json:"year"`
	Genre           []string `json:"genre,omitempty"`
	Country         []string `json:"country"`
	Description     string   `json:"description"`
	VoteAverage     float64  `json:"vote_average"`
	Votes           int      `json:"votes"`

	Tags tags.Set `json:"-"`
}

// Render returns the user-facing one-line description of the record:
//
//	Title (year, country). Description Vote - 8.0
func (r *MovieRecord) Render() string {
	return fmt.Sprintf("%s (%s, %s). %s Vote - %.1f",
		r.Title, r.Year, strings.Join(r.Country, ", "), r.Description, r.VoteAverage)
}

// NormalizeTitle canonicalizes a title for lookup: lowercased, internal
// whitespace collapsed to single spaces, surrounding whitespace trimmed.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// splitList splits a delimiter-separated field into trimmed parts,
// dropping empty segments.
func splitList(field, delimiter string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
