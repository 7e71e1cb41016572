// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package recommend

import (
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/tags"
)

// fixedExtractor returns preassigned tag sets keyed by description.
type fixedExtractor map[string][]string

func (f fixedExtractor) Extract(text string) tags.Set {
	return tags.NewSet(f[text]...)
}

func buildCatalog(t *testing.T, rows []catalog.RawMovieRow, extractor catalog.TagExtractor) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(rows, extractor)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func testMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	return m
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewMatcherValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero weight", Config{TagWeight: 0, TopK: 5, MaxK: 50}, true},
		{"weight one", Config{TagWeight: 1, TopK: 5, MaxK: 50}, true},
		{"zero top k", Config{TagWeight: 0.95, TopK: 0, MaxK: 50}, true},
		{"max below top", Config{TagWeight: 0.95, TopK: 5, MaxK: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewMatcher(tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMatcher() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTagSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query tags.Set
		movie tags.Set
		want  float64
	}{
		{"empty query", tags.NewSet(), tags.NewSet("cat"), 0},
		{"full overlap", tags.NewSet("cat", "murder"), tags.NewSet("cat", "murder", "noir"), 1},
		{"half overlap", tags.NewSet("cat", "space"), tags.NewSet("cat"), 0.5},
		{"no overlap", tags.NewSet("cat"), tags.NewSet("dog"), 0},
		{"empty movie", tags.NewSet("cat"), tags.NewSet(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TagSimilarity(tt.query, tt.movie); !almostEqual(got, tt.want) {
				t.Errorf("TagSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

// The denominator is the query size, never the movie's tag count.
func TestTagSimilarityAsymmetric(t *testing.T) {
	t.Parallel()

	query := tags.NewSet("cat")
	movie := tags.NewSet("cat", "murder", "mystery", "noir")

	if got := TagSimilarity(query, movie); !almostEqual(got, 1.0) {
		t.Errorf("TagSimilarity(query⊂movie) = %v, want 1.0", got)
	}
	if got := TagSimilarity(movie, query); !almostEqual(got, 0.25) {
		t.Errorf("TagSimilarity(movie-as-query) = %v, want 0.25", got)
	}
}

func TestGeneralScoreReferenceValue(t *testing.T) {
	t.Parallel()

	// A single movie tagged {cat, murder, mystery} with vote 8.0 queried
	// with exactly those tags scores 0.95*1.0 + 0.05*0.8 = 0.99.
	extractor := fixedExtractor{"feline noir": {"cat", "murder", "mystery"}}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt1", OriginalTitle: "Feline Noir", Description: "feline noir", VoteAverage: 8.0},
	}, extractor)

	ranked := testMatcher(t).Rank(cat, tags.NewSet("cat", "murder", "mystery"), 5)
	if len(ranked) != 1 {
		t.Fatalf("len(ranked) = %d, want 1", len(ranked))
	}
	if !almostEqual(ranked[0].GeneralScore, 0.99) {
		t.Errorf("GeneralScore = %v, want 0.99", ranked[0].GeneralScore)
	}
	if !almostEqual(ranked[0].TagSimilarity, 1.0) {
		t.Errorf("TagSimilarity = %v, want 1.0", ranked[0].TagSimilarity)
	}
}

func TestZeroOverlapExcludedDespiteHighVote(t *testing.T) {
	t.Parallel()

	extractor := fixedExtractor{
		"match":    {"cat"},
		"populist": {"dog"},
	}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt1", OriginalTitle: "Match", Description: "match", VoteAverage: 2.0},
		{ID: "tt2", OriginalTitle: "Populist", Description: "populist", VoteAverage: 9.9},
	}, extractor)

	ranked := testMatcher(t).Rank(cat, tags.NewSet("cat"), 5)
	if len(ranked) != 1 {
		t.Fatalf("len(ranked) = %d, want 1", len(ranked))
	}
	if ranked[0].ID != "tt1" {
		t.Errorf("ranked[0].ID = %s, want tt1", ranked[0].ID)
	}
}

func TestRankOrderingAndTruncation(t *testing.T) {
	t.Parallel()

	extractor := fixedExtractor{
		"full a":  {"cat", "murder"},
		"full b":  {"cat", "murder"},
		"half":    {"cat"},
		"nothing": {"space"},
	}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt4", OriginalTitle: "Full Low", Description: "full a", VoteAverage: 6.0},
		{ID: "tt2", OriginalTitle: "Half", Description: "half", VoteAverage: 9.5},
		{ID: "tt1", OriginalTitle: "Full High", Description: "full b", VoteAverage: 9.0},
		{ID: "tt3", OriginalTitle: "Nothing", Description: "nothing", VoteAverage: 9.9},
	}, extractor)

	query := tags.NewSet("cat", "murder")
	ranked := testMatcher(t).Rank(cat, query, 5)

	gotIDs := make([]string, len(ranked))
	for i, s := range ranked {
		gotIDs[i] = s.ID
	}
	// Full overlap beats half overlap even with a lower vote; among equal
	// similarity the higher vote wins.
	want := []string{"tt1", "tt4", "tt2"}
	if !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("ranked ids = %v, want %v", gotIDs, want)
	}

	if got := testMatcher(t).Rank(cat, query, 2); len(got) != 2 {
		t.Errorf("Rank(k=2) returned %d records, want 2", len(got))
	}
}

func TestRankTieBreaksByVoteThenID(t *testing.T) {
	t.Parallel()

	extractor := fixedExtractor{
		"same a": {"cat"},
		"same b": {"cat"},
		"same c": {"cat"},
	}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt9", OriginalTitle: "C", Description: "same c", VoteAverage: 7.0},
		{ID: "tt5", OriginalTitle: "B", Description: "same b", VoteAverage: 7.0},
		{ID: "tt7", OriginalTitle: "A", Description: "same a", VoteAverage: 8.0},
	}, extractor)

	ranked := testMatcher(t).Rank(cat, tags.NewSet("cat"), 5)
	gotIDs := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
	want := []string{"tt7", "tt5", "tt9"}
	if !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("ranked ids = %v, want %v", gotIDs, want)
	}
}

func TestRankDeterministic(t *testing.T) {
	t.Parallel()

	extractor := fixedExtractor{
		"a": {"cat", "noir"},
		"b": {"cat"},
		"c": {"noir"},
	}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt1", OriginalTitle: "A", Description: "a", VoteAverage: 7.0},
		{ID: "tt2", OriginalTitle: "B", Description: "b", VoteAverage: 7.0},
		{ID: "tt3", OriginalTitle: "C", Description: "c", VoteAverage: 7.0},
	}, extractor)

	m := testMatcher(t)
	query := tags.NewSet("cat", "noir")

	first := m.Rank(cat, query, 5)
	for i := 0; i < 20; i++ {
		if got := m.Rank(cat, query, 5); !reflect.DeepEqual(got, first) {
			t.Fatalf("Rank not deterministic on run %d", i)
		}
	}
}

func TestRankEmptyOutcomes(t *testing.T) {
	t.Parallel()

	extractor := fixedExtractor{"x": {"cat"}}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt1", OriginalTitle: "X", Description: "x", VoteAverage: 8.0},
	}, extractor)

	m := testMatcher(t)

	if got := m.Rank(cat, tags.NewSet(), 5); len(got) != 0 {
		t.Errorf("empty query ranked %d records, want 0", len(got))
	}
	if got := m.Rank(cat, tags.NewSet("zebra"), 5); len(got) != 0 {
		t.Errorf("zero-overlap query ranked %d records, want 0", len(got))
	}
}

func TestScorePreservesCatalogOrder(t *testing.T) {
	t.Parallel()

	extractor := fixedExtractor{"a": {"cat"}, "b": {"dog"}}
	cat := buildCatalog(t, []catalog.RawMovieRow{
		{ID: "tt2", OriginalTitle: "B", Description: "b", VoteAverage: 9.0},
		{ID: "tt1", OriginalTitle: "A", Description: "a", VoteAverage: 8.0},
	}, extractor)

	scored := testMatcher(t).Score(cat, tags.NewSet("cat"))
	if len(scored) != 2 {
		t.Fatalf("len(scored) = %d, want 2", len(scored))
	}
	if scored[0].ID != "tt2" || scored[1].ID != "tt1" {
		t.Errorf("Score reordered records: %s, %s", scored[0].ID, scored[1].ID)
	}
	if scored[0].GeneralScore != 0 {
		t.Errorf("zero-overlap GeneralScore = %v, want 0", scored[0].GeneralScore)
	}
}
