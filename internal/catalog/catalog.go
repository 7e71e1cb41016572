// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filmwise/filmwise/internal/tags"
)

// ErrInvalidInput indicates catalog construction input was empty or
// malformed. Construction failures never corrupt an existing catalog.
var ErrInvalidInput = errors.New("invalid catalog input")

// TagExtractor computes a record's tag set from its description.
type TagExtractor interface {
	Extract(text string) tags.Set
}

// Catalog is an immutable snapshot of movie records. Views created by
// ByID, ByTitle, and Excluding are themselves valid catalogs over a
// copied subset of records.
type Catalog struct {
	records []MovieRecord
	byID    map[string]int
}

// New builds a catalog snapshot from raw rows, computing each record's
// normalized title and tag set. It fails with ErrInvalidInput when rows
// is empty, a required field (id, title) is missing, or an id repeats.
func New(rows []RawMovieRow, extractor TagExtractor) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	if extractor == nil {
		return nil, fmt.Errorf("%w: nil tag extractor", ErrInvalidInput)
	}

	records := make([]MovieRecord, 0, len(rows))
	byID := make(map[string]int, len(rows))

	for i, row := range rows {
		title := row.OriginalTitle
		if strings.TrimSpace(title) == "" {
			title = row.Title
		}
		if strings.TrimSpace(row.ID) == "" {
			return nil, fmt.Errorf("%w: row %d has no id", ErrInvalidInput, i)
		}
		if strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("%w: row %d (%s) has no title", ErrInvalidInput, i, row.ID)
		}
		if _, dup := byID[row.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidInput, row.ID)
		}

		byID[row.ID] = len(records)
		records = append(records, MovieRecord{
			ID:              row.ID,
			Title:           title,
			NormalizedTitle: NormalizeTitle(title),
			Year:            row.Year,
			Genre:           splitList(row.Genre, ","),
			Country:         splitList(row.Country, ","),
			Description:     row.Description,
			VoteAverage:     row.VoteAverage,
			Votes:           row.Votes,
			Tags:            extractor.Extract(row.Description),
		})
	}

	return &Catalog{records: records, byID: byID}, nil
}

// view wraps a copied record subset as a catalog.
func view(records []MovieRecord) *Catalog {
	byID := make(map[string]int, len(records))
	for i := range records {
		byID[records[i].ID] = i
	}
	return &Catalog{records: records, byID: byID}
}

// Size returns the number of records in the catalog.
func (c *Catalog) Size() int {
	return len(c.records)
}

// Records returns the catalog's record sequence. Callers must treat the
// returned slice as read-only.
func (c *Catalog) Records() []MovieRecord {
	return c.records
}

// ByID returns the view of records matching the id: one record, or empty.
func (c *Catalog) ByID(id string) *Catalog {
	if i, ok := c.byID[id]; ok {
		return view([]MovieRecord{c.records[i]})
	}
	return view(nil)
}

// ByTitle returns the view of records whose normalized title equals the
// normalized query title. Several records may share one title.
func (c *Catalog) ByTitle(title string) *Catalog {
	normalized := NormalizeTitle(title)
	var matched []MovieRecord
	for i := range c.records {
		if c.records[i].NormalizedTitle == normalized {
			matched = append(matched, c.records[i])
		}
	}
	return view(matched)
}

// Excluding returns the view with the listed ids removed. An empty or nil
// id set is a no-op returning the receiver.
func (c *Catalog) Excluding(ids map[string]struct{}) *Catalog {
	if len(ids) == 0 {
		return c
	}
	kept := make([]MovieRecord, 0, len(c.records))
	for i := range c.records {
		if _, excluded := ids[c.records[i].ID]; !excluded {
			kept = append(kept, c.records[i])
		}
	}
	return view(kept)
}

// UnionTags returns the union of tag sets across all contained records.
func (c *Catalog) UnionTags() tags.Set {
	union := tags.NewSet()
	for i := range c.records {
		union.Union(c.records[i].Tags)
	}
	return union
}

// IDs returns the ids of all contained records in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.records))
	for i := range c.records {
		ids[i] = c.records[i].ID
	}
	return ids
}
