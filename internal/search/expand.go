// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"
	"strings"
)

// Wildcard is the placeholder query emitted when no usable keyword groups
// survive cleanup. It means "unconstrained"; the aggregator skips it.
const Wildcard = "*"

// ExpandQueries turns the AND-of-OR keyword groups into concrete query
// strings: one phrase chosen per group, cartesian product across groups.
// Empty groups and blank phrases are dropped; multi-word phrases are quoted
// for exact-phrase matching. Deterministic given input order.
func ExpandQueries(groups [][]string) []string {
	var clean [][]string
	for _, group := range groups {
		var g []string
		for _, term := range group {
			if t := quoteIfNeeded(term); t != "" {
				g = append(g, t)
			}
		}
		if len(g) > 0 {
			clean = append(clean, g)
		}
	}
	if len(clean) == 0 {
		return []string{Wildcard}
	}

	queries := []string{""}
	for _, group := range clean {
		next := make([]string, 0, len(queries)*len(group))
		for _, prefix := range queries {
			for _, term := range group {
				if prefix == "" {
					next = append(next, term)
				} else {
					next = append(next, prefix+" "+term)
				}
			}
		}
		queries = next
	}
	return queries
}

// quoteIfNeeded trims the phrase and wraps multi-word phrases in double
// quotes unless already quoted.
func quoteIfNeeded(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, " ") && !(strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)) {
		return `"` + s + `"`
	}
	return s
}

var termRe = regexp.MustCompile(`"[^"]+"|\S+`)

// splitTerms splits a query into terms, keeping quoted phrases intact
// (quotes included). Used by adapters that rebuild per-term syntax.
func splitTerms(q string) []string {
	return termRe.FindAllString(strings.TrimSpace(q), -1)
}
