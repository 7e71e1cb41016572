// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package tags

import "strings"

// Config controls the extraction policy.
type Config struct {
	// ExcludedTags lists coarse part-of-speech tags whose token lemmas are
	// dropped. Default: [ADV].
	ExcludedTags []string `koanf:"excluded_tags"`

	// FillerWords is an explicit stop-list of filler tokens dropped
	// regardless of annotation. Default: [smth].
	FillerWords []string `koanf:"filler_words"`
}

// DefaultConfig returns the default extraction policy configuration.
func DefaultConfig() Config {
	return Config{
		ExcludedTags: []string{TagAdverb},
		FillerWords:  []string{"smth"},
	}
}

// Extractor applies the tag-extraction policy over an Annotator's output.
// It is stateless apart from its configuration and safe for concurrent use.
type Extractor struct {
	annotator Annotator
	excluded  map[string]struct{}
	filler    map[string]struct{}
}

// NewExtractor creates an Extractor with the given annotator and policy.
func NewExtractor(annotator Annotator, cfg Config) *Extractor {
	excluded := make(map[string]struct{}, len(cfg.ExcludedTags))
	for _, tag := range cfg.ExcludedTags {
		excluded[tag] = struct{}{}
	}
	filler := make(map[string]struct{}, len(cfg.FillerWords))
	for _, word := range cfg.FillerWords {
		filler[strings.ToLower(word)] = struct{}{}
	}

	return &Extractor{annotator: annotator, excluded: excluded, filler: filler}
}

// Extract returns the normalized tag set for the given text: the union of
// selected token lemmas and cleaned noun-phrase spans. Empty or whitespace
// text yields an empty set; Extract never fails.
func (e *Extractor) Extract(text string) Set {
	result := NewSet()
	if strings.TrimSpace(text) == "" {
		return result
	}

	annotation := e.annotator.Annotate(text)

	for _, tok := range annotation.Tokens {
		if e.includeToken(tok) {
			result.Add(tok.Lemma)
		}
	}

	for _, span := range annotation.NounPhrases {
		if phrase, ok := e.cleanPhrase(span); ok {
			result.Add(phrase)
		}
	}

	return result
}

// includeToken applies the token rule: keep the lemma iff the surface form
// is not a stop word, not punctuation, not purely numeric, not excluded by
// coarse tag, and not a filler word.
func (e *Extractor) includeToken(tok Token) bool {
	if tok.IsStop || tok.IsPunct || tok.IsNumeric {
		return false
	}
	if _, ok := e.excluded[tok.Tag]; ok {
		return false
	}
	if _, ok := e.filler[strings.ToLower(tok.Text)]; ok {
		return false
	}
	return true
}

// phraseTrimCutset holds the quote and parenthesis punctuation stripped
// from both ends of a noun-phrase span.
const phraseTrimCutset = "\"'`()[]{}«»“”‘’"

// cleanPhrase applies the noun-phrase rule: lowercase, strip one leading
// determiner, strip surrounding quote and parenthesis punctuation, trim
// whitespace. The phrase is rejected if it is a stop word or its word
// count is outside [2, 3].
func (e *Extractor) cleanPhrase(span string) (string, bool) {
	phrase := strings.ToLower(span)
	phrase = strings.Trim(phrase, phraseTrimCutset)
	phrase = strings.TrimSpace(phrase)

	words := strings.Fields(phrase)
	if len(words) > 0 {
		if _, ok := determiners[words[0]]; ok {
			words = words[1:]
		}
	}
	if len(words) < 2 || len(words) > 3 {
		return "", false
	}

	phrase = strings.Join(words, " ")
	if _, ok := stopWords[phrase]; ok {
		return "", false
	}
	return phrase, true
}
