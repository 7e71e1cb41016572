// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package tags turns free text into normalized semantic tags.

The package has two halves:

  - The Annotator contract and a self-contained English implementation.
    An Annotator produces tokens (surface, lemma, coarse tag, punctuation
    and numeric flags, stop-word membership) and noun-phrase spans for a
    text. The built-in annotator is a lightweight stand-in for a full NLP
    pipeline; deployments with access to a richer annotator can plug it in
    behind the same interface.

  - The Extractor policy, which is the deterministic part: given an
    annotation it selects token lemmas (dropping stop words, punctuation,
    numbers, excluded coarse tags and filler words), cleans noun-phrase
    spans (lowercase, strip a leading determiner and surrounding quote or
    parenthesis punctuation, keep only two and three word phrases), and
    returns the union of both sets.

Extraction is pure: identical text and identical annotator behavior always
produce the same tag set.

Usage:

	extractor := tags.NewExtractor(tags.NewEnglishAnnotator(), tags.DefaultConfig())
	set := extractor.Extract("cats solving a murder mystery")
*/
package tags
