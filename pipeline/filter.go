package pipeline

import (
	"fmt"
	"strings"
)

// MatchMode selects how filter terms combine across keys.
type MatchMode string

const (
	// ModeSome matches when at least one key matches the query.
	ModeSome MatchMode = "some"

	// ModeEvery matches when every key matches the query.
	ModeEvery MatchMode = "every"

	// ModeUnion matches when at least one term is found under any key.
	ModeUnion MatchMode = "union"

	// ModeIntersection matches when every term is found under some key.
	ModeIntersection MatchMode = "intersection"
)

// Predicate is a custom per-value match. A predicate that panics propagates
// to the caller: masking it would hide an application bug.
type Predicate func(value any, term string) bool

// FilterSpec describes one filter stage.
type FilterSpec struct {
	// Query holds the filter terms. An empty query passes every item.
	Query []string

	// Keys restricts matching to these item keys.
	Keys []string

	// Mode selects the term/key combination rule. Empty means ModeSome.
	Mode MatchMode

	// Custom replaces the default case-insensitive substring match.
	Custom Predicate
}

// Equal reports whether two specs describe the same filter. Custom
// predicates compare by presence only.
func (s FilterSpec) Equal(other FilterSpec) bool {
	if s.Mode != other.Mode {
		return false
	}
	if (s.Custom == nil) != (other.Custom == nil) {
		return false
	}
	if !equalStrings(s.Query, other.Query) {
		return false
	}
	return equalStrings(s.Keys, other.Keys)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Filter returns the items passing the spec, preserving input order.
func Filter[T any](items []T, acc Accessor[T], spec FilterSpec) []T {
	if len(spec.Query) == 0 || len(spec.Keys) == 0 {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	match := spec.Custom
	if match == nil {
		match = substringMatch
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if itemMatches(item, acc, spec, match) {
			out = append(out, item)
		}
	}
	return out
}

func itemMatches[T any](item T, acc Accessor[T], spec FilterSpec, match Predicate) bool {
	// keyMatches: the key's value contains at least one term.
	keyMatches := func(key string) bool {
		value := acc(item, key)
		for _, term := range spec.Query {
			if match(value, term) {
				return true
			}
		}
		return false
	}

	switch spec.Mode {
	case ModeEvery:
		for _, key := range spec.Keys {
			if !keyMatches(key) {
				return false
			}
		}
		return true

	case ModeIntersection:
		// Every term must be found under some key.
		for _, term := range spec.Query {
			found := false
			for _, key := range spec.Keys {
				if match(acc(item, key), term) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true

	case ModeSome, ModeUnion, "":
		for _, key := range spec.Keys {
			if keyMatches(key) {
				return true
			}
		}
		return false
	}
	return false
}

// substringMatch is the default predicate: case-insensitive substring over
// the value's string form. Nil values never match.
func substringMatch(value any, term string) bool {
	if value == nil {
		return false
	}
	haystack := strings.ToLower(fmt.Sprint(value))
	return strings.Contains(haystack, strings.ToLower(term))
}
