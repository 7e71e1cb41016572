// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package tags

import (
	"reflect"
	"testing"
	"unicode"
)

// mockAnnotator returns a fixed annotation, for testing the extraction
// policy independent of the built-in annotator.
type mockAnnotator struct {
	annotation Annotation
}

func (m *mockAnnotator) Annotate(string) Annotation {
	return m.annotation
}

func TestExtractTokenRule(t *testing.T) {
	t.Parallel()

	annotator := &mockAnnotator{annotation: Annotation{
		Tokens: []Token{
			{Text: "cats", Lemma: "cat", Tag: TagOther},
			{Text: "the", Lemma: "the", Tag: TagOther, IsStop: true},
			{Text: ".", Lemma: ".", Tag: TagPunct, IsPunct: true},
			{Text: "1984", Lemma: "1984", Tag: TagNumber, IsNumeric: true},
			{Text: "quickly", Lemma: "quickly", Tag: TagAdverb},
			{Text: "smth", Lemma: "smth", Tag: TagOther},
			{Text: "murder", Lemma: "murder", Tag: TagOther},
		},
	}}

	extractor := NewExtractor(annotator, DefaultConfig())
	got := extractor.Extract("irrelevant")

	want := NewSet("cat", "murder")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got.Items(), want.Items())
	}
}

func TestExtractNounPhraseRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		span string
		want string
		keep bool
	}{
		{"plain two words", "murder mystery", "murder mystery", true},
		{"leading determiner stripped", "a murder mystery", "murder mystery", true},
		{"possessive stripped", "her dark secret", "dark secret", true},
		{"quotes stripped", `"small town"`, "small town", true},
		{"parens stripped", "(serial killer)", "serial killer", true},
		{"single word rejected", "mystery", "", false},
		{"single after strip rejected", "the mystery", "", false},
		{"three words kept", "cold war spy", "cold war spy", true},
		{"four words rejected", "cold war spy thriller", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			annotator := &mockAnnotator{annotation: Annotation{NounPhrases: []string{tt.span}}}
			got := NewExtractor(annotator, DefaultConfig()).Extract("x")

			if tt.keep {
				if !got.Has(tt.want) {
					t.Errorf("Extract(%q) = %v, want phrase %q", tt.span, got.Items(), tt.want)
				}
			} else if got.Len() != 0 {
				t.Errorf("Extract(%q) = %v, want empty", tt.span, got.Items())
			}
		})
	}
}

func TestExtractEmptyText(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(NewEnglishAnnotator(), DefaultConfig())
	for _, text := range []string{"", "   ", "\t\n"} {
		if got := extractor.Extract(text); got.Len() != 0 {
			t.Errorf("Extract(%q) = %v, want empty set", text, got.Items())
		}
	}
}

func TestExtractEndToEnd(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(NewEnglishAnnotator(), DefaultConfig())

	got := extractor.Extract("cats dogs reporters")
	for _, want := range []string{"cat", "dog", "reporter"} {
		if !got.Has(want) {
			t.Errorf("Extract(cats dogs reporters) missing %q: %v", want, got.Items())
		}
	}

	if got := extractor.Extract("women"); !got.Has("woman") {
		t.Errorf("Extract(women) = %v, want woman", got.Items())
	}

	got = extractor.Extract("cats .dogs, reporters")
	if got.Has(".") || got.Has(",") {
		t.Errorf("Extract must drop punctuation tokens, got %v", got.Items())
	}
}

// Extraction output never contains punctuation-only or purely numeric
// tags, and never contains a configured stop word.
func TestExtractOutputHygiene(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(NewEnglishAnnotator(), DefaultConfig())
	texts := []string{
		"A story about two cats solving a murder mystery",
		"In 1984, a lonely clerk rewrites history...",
		"He runs; she hides. They both fall (again).",
		"the the the and and and",
	}

	for _, text := range texts {
		for tag := range extractor.Extract(text) {
			if isAllDigits(tag) {
				t.Errorf("numeric tag %q extracted from %q", tag, text)
			}
			hasAlnum := false
			for _, r := range tag {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					hasAlnum = true
					break
				}
			}
			if !hasAlnum {
				t.Errorf("punctuation-only tag %q extracted from %q", tag, text)
			}
			if _, stop := stopWords[tag]; stop {
				t.Errorf("stop word %q extracted from %q", tag, text)
			}
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(NewEnglishAnnotator(), DefaultConfig())
	text := "a gritty detective hunting a serial killer in a small coastal town"

	first := extractor.Extract(text)
	for i := 0; i < 10; i++ {
		if got := extractor.Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Extract not deterministic: %v != %v", got.Items(), first.Items())
		}
	}
}

func TestExtractConfigurableExclusions(t *testing.T) {
	t.Parallel()

	annotator := &mockAnnotator{annotation: Annotation{
		Tokens: []Token{
			{Text: "quickly", Lemma: "quickly", Tag: TagAdverb},
			{Text: "whatever", Lemma: "whatever", Tag: TagOther},
		},
	}}

	// No excluded tags: adverbs survive.
	cfg := Config{FillerWords: []string{"whatever"}}
	got := NewExtractor(annotator, cfg).Extract("x")
	if !got.Has("quickly") {
		t.Errorf("adverb dropped despite empty exclusion set: %v", got.Items())
	}
	if got.Has("whatever") {
		t.Errorf("filler word kept: %v", got.Items())
	}
}
