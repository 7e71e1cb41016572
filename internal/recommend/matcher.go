// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package recommend

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/tags"
)

// ScoredMovie is one record of a transient scored view. The score fields
// are query-scoped and never written back to the catalog.
type ScoredMovie struct {
	catalog.MovieRecord

	TagSimilarity float64 `json:"tag_similarity_score"`
	GeneralScore  float64 `json:"general_score"`
}

// Matcher scores and ranks catalog snapshots against query tag sets.
// It is stateless apart from configuration and safe for concurrent use.
type Matcher struct {
	cfg    Config
	logger zerolog.Logger
}

// NewMatcher creates a matcher with the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatcher(cfg Config, logger zerolog.Logger) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Matcher{
		cfg:    cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// TopK returns the configured conversational answer size.
func (m *Matcher) TopK() int {
	return m.cfg.TopK
}

// MaxK returns the configured request K cap.
func (m *Matcher) MaxK() int {
	return m.cfg.MaxK
}

// TagSimilarity returns |movie ∩ query| / |query|, or 0 for an empty
// query. The denominator is the query size by design; the measure is not
// symmetric.
func TagSimilarity(query, movie tags.Set) float64 {
	if query.Len() == 0 {
		return 0
	}
	return float64(movie.IntersectionSize(query)) / float64(query.Len())
}

// Score computes the scored view of every record in the catalog against
// the query tags. The returned slice preserves catalog order; use Rank
// for the sorted, truncated result.
func (m *Matcher) Score(cat *catalog.Catalog, query tags.Set) []ScoredMovie {
	records := cat.Records()
	scored := make([]ScoredMovie, len(records))

	for i := range records {
		sim := TagSimilarity(query, records[i].Tags)
		scored[i] = ScoredMovie{
			MovieRecord:   records[i],
			TagSimilarity: sim,
			GeneralScore:  m.generalScore(sim, records[i].VoteAverage),
		}
	}

	return scored
}

// generalScore blends thematic similarity with the catalog quality score.
// Zero similarity disqualifies the record regardless of its vote average.
func (m *Matcher) generalScore(similarity, voteAverage float64) float64 {
	if similarity <= 0 {
		return 0
	}
	return m.cfg.TagWeight*similarity + (1-m.cfg.TagWeight)*(voteAverage/10)
}

// Rank returns the top k records of the catalog by general score,
// discarding zero scores. Ties break by vote average descending, then by
// id ascending for determinism. k <= 0 falls back to the configured TopK.
// An empty result means nothing matched; it is not an error.
func (m *Matcher) Rank(cat *catalog.Catalog, query tags.Set, k int) []ScoredMovie {
	if k <= 0 {
		k = m.cfg.TopK
	}

	scored := m.Score(cat, query)
	matched := scored[:0]
	for _, s := range scored {
		if s.GeneralScore > 0 {
			matched = append(matched, s)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].GeneralScore != matched[j].GeneralScore {
			return matched[i].GeneralScore > matched[j].GeneralScore
		}
		if matched[i].VoteAverage != matched[j].VoteAverage {
			return matched[i].VoteAverage > matched[j].VoteAverage
		}
		return matched[i].ID < matched[j].ID
	})

	if len(matched) > k {
		matched = matched[:k]
	}

	m.logger.Debug().
		Int("query_tags", query.Len()).
		Int("catalog_size", cat.Size()).
		Int("matched", len(matched)).
		Msg("ranked recommendations")

	return matched
}
