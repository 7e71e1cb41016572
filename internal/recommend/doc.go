// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package recommend scores and ranks catalog records against a query tag set.

The Matcher is stateless: every call scores a catalog snapshot against the
given query tags and returns a transient scored view. Scores never live on
the canonical catalog.

Scoring formula per record:

	overlap        = |record.tags ∩ query_tags|
	tag_similarity = overlap / |query_tags|          (0 when the query is empty)
	general_score  = W*tag_similarity + (1-W)*(vote_average/10)   when tag_similarity > 0
	               = 0                                            otherwise

The denominator is always the query size, not the record's tag count: a
short query fully covered by a record's tags scores 1.0 regardless of how
many other tags the record carries. A record with zero thematic overlap is
out of consideration no matter its vote average.

Ranking discards zero scores, sorts by general score descending with ties
broken by vote average descending and then id ascending, and returns the
first K records. An empty result is a normal outcome, not an error.
*/
package recommend
