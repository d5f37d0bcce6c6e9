// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent turns a free-text research question into a normalized
// SearchIntent. The production parser is an upstream collaborator reached
// through the Parser interface; this package ships a JSON parser for
// structured intent documents and a free-text fallback.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// DefaultMaxResults applies when an intent document leaves max_results unset.
const DefaultMaxResults = 10

// Parser produces a normalized intent from free text.
type Parser interface {
	Parse(ctx context.Context, freeText string) (types.SearchIntent, error)
}

// JSONParser decodes a structured JSON intent document. The CLI uses it for
// --intent files; tests use it to bypass the upstream parser.
type JSONParser struct{}

// Parse decodes the document and applies defaults.
func (JSONParser) Parse(_ context.Context, doc string) (types.SearchIntent, error) {
	var it types.SearchIntent
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&it); err != nil {
		return types.SearchIntent{}, fmt.Errorf("parsing intent document: %w", err)
	}
	applyDefaults(&it)
	return it, nil
}

// FreeTextParser treats the whole query as one keyword group. It stands in
// for the upstream intent service when none is wired.
type FreeTextParser struct{}

// Parse never fails; blank text yields an empty intent.
func (FreeTextParser) Parse(_ context.Context, freeText string) (types.SearchIntent, error) {
	return FromFreeText(freeText), nil
}

// FromFreeText builds a single-group intent straight from raw query text,
// used when no structured parser is available.
func FromFreeText(query string) types.SearchIntent {
	it := types.SearchIntent{}
	if q := strings.TrimSpace(query); q != "" {
		it.AnyGroups = [][]string{{q}}
	}
	applyDefaults(&it)
	return it
}

func applyDefaults(it *types.SearchIntent) {
	if it.MaxResults == 0 {
		it.MaxResults = DefaultMaxResults
	}
	if strings.TrimSpace(it.SortBy) == "" {
		it.SortBy = types.SortRelevance
	}
}

// Validate rejects intents whose result cap is out of bounds. The check runs
// before any network activity.
func Validate(it types.SearchIntent, cfg types.SearchConfig) error {
	if it.MaxResults < 1 {
		return fmt.Errorf("max_results must be at least 1, got %d", it.MaxResults)
	}
	if cfg.MaxResultsLimit > 0 && it.MaxResults > cfg.MaxResultsLimit {
		return fmt.Errorf("max_results %d exceeds the limit of %d", it.MaxResults, cfg.MaxResultsLimit)
	}
	return nil
}
