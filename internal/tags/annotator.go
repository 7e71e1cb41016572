// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package tags

// Coarse part-of-speech tags produced by annotators. The built-in
// annotator only distinguishes the classes the extraction policy can act
// on; richer annotators may emit additional tags, which the extractor
// treats as unclassified unless configured otherwise.
const (
	TagPunct  = "PUNCT"
	TagNumber = "NUM"
	TagAdverb = "ADV"
	TagOther  = "X"
)

// Token is a single annotated token of the input text.
type Token struct {
	// Text is the lowercase surface form.
	Text string

	// Lemma is the dictionary form of the token.
	Lemma string

	// Tag is the coarse part-of-speech tag (TagPunct, TagNumber, ...).
	Tag string

	// IsPunct reports whether the token is punctuation only.
	IsPunct bool

	// IsNumeric reports whether the token is purely numeric.
	IsNumeric bool

	// IsStop reports whether the surface form is a stop word.
	IsStop bool
}

// Annotation is the full annotator output for one text.
type Annotation struct {
	Tokens []Token

	// NounPhrases holds the surface strings of detected noun-phrase spans.
	NounPhrases []string
}

// Annotator produces linguistic annotations for free text.
// Implementations must be pure functions of their input and safe for
// concurrent use.
type Annotator interface {
	Annotate(text string) Annotation
}
