// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package tags

import (
	"strings"
	"unicode"
)

// stopWords is the built-in English stop-word list. It covers the function
// words that carry no thematic signal in movie descriptions.
var stopWords = map[string]struct{}{}

//nolint:gochecknoinits // populates the shared stop-word set once
func init() {
	for _, w := range strings.Fields(`
		a about above after again against all also am an and any are as at
		be because been before being below between both but by can cannot
		could did do does doing down during each either few five for four
		from further had has have having he her here hers herself him
		himself his how i if in into is it its itself just me more most my
		myself no nor not now of off on once one only or other our ours
		ourselves out over own same she should so some such than that the
		their theirs them themselves then there these they this those
		three through to too two under until up upon us very was we were
		what when where which while who whom why will with would you your
		yours yourself yourselves
	`) {
		stopWords[w] = struct{}{}
	}
}

// irregularLemmas maps irregular plural and inflected forms to their lemma.
var irregularLemmas = map[string]string{
	"children": "child",
	"feet":     "foot",
	"geese":    "goose",
	"lives":    "life",
	"men":      "man",
	"mice":     "mouse",
	"people":   "person",
	"teeth":    "tooth",
	"wives":    "wife",
	"women":    "woman",
}

// EnglishAnnotator is a self-contained Annotator for English text. It
// tokenizes on letter and digit runs, lemmatizes with a small irregular
// table plus suffix rules, guesses coarse tags, and chunks contiguous
// content-word runs into noun-phrase spans.
//
// It stands in for an external NLP pipeline so the service runs without
// extra infrastructure; its output is intentionally conservative rather
// than linguistically complete.
type EnglishAnnotator struct{}

// NewEnglishAnnotator creates the built-in English annotator.
func NewEnglishAnnotator() *EnglishAnnotator {
	return &EnglishAnnotator{}
}

// Annotate produces tokens and noun-phrase spans for the given text.
func (a *EnglishAnnotator) Annotate(text string) Annotation {
	surfaces := tokenize(text)

	tokens := make([]Token, 0, len(surfaces))
	for _, surface := range surfaces {
		tokens = append(tokens, classify(surface))
	}

	return Annotation{
		Tokens:      tokens,
		NounPhrases: chunkNounPhrases(tokens),
	}
}

// tokenize splits text into lowercase word and punctuation tokens.
// Words are maximal runs of letters, digits, and internal apostrophes;
// every other non-space rune becomes a single punctuation token.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

// classify builds an annotated Token from a lowercase surface form.
func classify(surface string) Token {
	isPunct := !containsLetterOrDigit(surface)
	isNumeric := isAllDigits(surface)
	_, isStop := stopWords[surface]

	tok := Token{
		Text:      surface,
		Lemma:     surface,
		Tag:       TagOther,
		IsPunct:   isPunct,
		IsNumeric: isNumeric,
		IsStop:    isStop,
	}

	switch {
	case isPunct:
		tok.Tag = TagPunct
	case isNumeric:
		tok.Tag = TagNumber
	case strings.HasSuffix(surface, "ly") && len(surface) > 3:
		tok.Tag = TagAdverb
	}

	if !isPunct && !isNumeric {
		tok.Lemma = lemmatize(surface)
	}

	return tok
}

// lemmatize reduces a lowercase word to its dictionary form using the
// irregular table and plural suffix rules.
func lemmatize(word string) string {
	if lemma, ok := irregularLemmas[word]; ok {
		return lemma
	}
	if suffix, ok := strings.CutSuffix(word, "men"); ok && suffix != "" {
		return suffix + "man"
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "zes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") &&
		!strings.HasSuffix(word, "us") &&
		!strings.HasSuffix(word, "is") &&
		len(word) > 3:
		return word[:len(word)-1]
	}

	return word
}

// determiners may lead a noun phrase without breaking it.
var determiners = map[string]struct{}{
	"a": {}, "the": {}, "an": {}, "his": {}, "her": {},
	"this": {}, "that": {}, "some": {},
}

// maxChunkWords caps noun-phrase runs; longer spans are noise.
const maxChunkWords = 4

// chunkNounPhrases finds contiguous runs of content words, optionally led
// by a determiner, and returns their surface spans. Single content words
// are omitted since the token rule already covers them.
func chunkNounPhrases(tokens []Token) []string {
	var phrases []string
	var run []string
	var lead string

	flush := func() {
		if len(run) >= 2 && len(run) <= maxChunkWords {
			span := strings.Join(run, " ")
			if lead != "" {
				span = lead + " " + span
			}
			phrases = append(phrases, span)
		}
		run = run[:0]
		lead = ""
	}

	for _, tok := range tokens {
		switch {
		case !tok.IsPunct && !tok.IsNumeric && !tok.IsStop:
			run = append(run, tok.Text)
		case tok.IsStop:
			flush()
			if _, ok := determiners[tok.Text]; ok {
				lead = tok.Text
			}
		default:
			flush()
		}
	}
	flush()

	return phrases
}

func containsLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
