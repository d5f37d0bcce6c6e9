// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// DedupKey is the derived record identity: DOI beats URL beats
// (normalized title, year). Comparable, so usable as a map key.
type DedupKey struct {
	kind  string
	value string
	year  int
}

// KeyOf derives the dedup key for a record.
func KeyOf(p types.PaperMetadata) DedupKey {
	if p.DOI != "" {
		return DedupKey{kind: "doi", value: strings.ToLower(p.DOI)}
	}
	if p.URL != "" {
		return DedupKey{kind: "url", value: strings.ToLower(p.URL)}
	}
	year := 0
	if p.Year != nil {
		year = *p.Year
	}
	return DedupKey{kind: "ty", value: normTitle(p.Title), year: year}
}

var spaceRe = regexp.MustCompile(`\s+`)

// normTitle lowercases and collapses whitespace.
func normTitle(t string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(t)), " ")
}

var doiPrefixRe = regexp.MustCompile(`(?i)^https?://doi\.org/`)

// cleanDOI strips a doi.org URL prefix, leaving the bare DOI.
func cleanDOI(doi string) string {
	return doiPrefixRe.ReplaceAllString(strings.TrimSpace(doi), "")
}

// dedupeFinal collapses the merged record list across backends, first seen
// wins. Merge order is fixed by the caller, so output order never depends
// on backend completion timing.
func dedupeFinal(merged []types.PaperMetadata) []types.PaperMetadata {
	seen := make(map[DedupKey]struct{}, len(merged))
	final := make([]types.PaperMetadata, 0, len(merged))
	for _, p := range merged {
		k := KeyOf(p)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		final = append(final, p)
	}
	return final
}
