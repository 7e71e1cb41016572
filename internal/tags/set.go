// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package tags

import "sort"

// Set is an unordered collection of unique tag strings.
// The zero value of a nil Set is a valid empty set for reads.
type Set map[string]struct{}

// NewSet creates a Set containing the given items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts an item into the set.
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// Has reports whether the item is in the set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items in the set.
func (s Set) Len() int {
	return len(s)
}

// Union adds every item of other into s.
func (s Set) Union(other Set) {
	for item := range other {
		s[item] = struct{}{}
	}
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for item := range s {
		out[item] = struct{}{}
	}
	return out
}

// IntersectionSize returns the number of items present in both sets.
func (s Set) IntersectionSize(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for item := range small {
		if _, ok := large[item]; ok {
			n++
		}
	}
	return n
}

// Items returns the set contents sorted lexicographically.
func (s Set) Items() []string {
	items := make([]string, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}
