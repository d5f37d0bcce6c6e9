// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-survey/internal/httputil"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// openAlexAuthorsBase is the OpenAlex authors endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAuthorsBase = "https://api.openalex.org/authors"

const defaultLookupConcurrency = 4

// Enricher fills FirstAuthorHIndex from the OpenAlex authors endpoint
// before ranking. Lookups are best-effort: a failed lookup leaves the field
// unset, a lookup that matched no author records the floor value 1.
type Enricher struct {
	Client *httputil.Client
	// Email is sent as the mailto parameter for polite pool access.
	Email string
	// Concurrency bounds parallel author lookups. Zero selects the default.
	Concurrency int
}

// EnrichFirstAuthors resolves each distinct first author once and writes the
// h-index back into every paper sharing that author. Mutates papers in place.
func (e *Enricher) EnrichFirstAuthors(ctx context.Context, papers []types.PaperMetadata) {
	type lookup struct {
		hIndex *int
	}

	var mu sync.Mutex
	cache := make(map[string]lookup)

	limit := e.Concurrency
	if limit <= 0 {
		limit = defaultLookupConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range papers {
		if len(papers[i].Authors) == 0 {
			continue
		}
		name := strings.TrimSpace(papers[i].Authors[0])
		key := strings.ToLower(name)
		if key == "" {
			continue
		}

		mu.Lock()
		_, queued := cache[key]
		if !queued {
			cache[key] = lookup{}
		}
		mu.Unlock()
		if queued {
			continue
		}

		g.Go(func() error {
			h := e.lookupHIndex(gctx, name)
			mu.Lock()
			cache[key] = lookup{hIndex: h}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // lookups never return errors; failures leave the field unset

	for i := range papers {
		if len(papers[i].Authors) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(papers[i].Authors[0]))
		if l, ok := cache[key]; ok && l.hIndex != nil {
			papers[i].FirstAuthorHIndex = l.hIndex
		}
	}
}

// lookupHIndex fetches the top author match for the name. Returns nil when
// the call fails, 1 when no author matched.
func (e *Enricher) lookupHIndex(ctx context.Context, name string) *int {
	params := url.Values{
		"search":   {name},
		"per-page": {"1"},
	}
	if e.Email != "" {
		params.Set("mailto", e.Email)
	}

	var resp openAlexAuthorsResponse
	if err := e.Client.GetJSON(ctx, openAlexAuthorsBase, params, nil, &resp); err != nil {
		return nil
	}
	if len(resp.Results) == 0 {
		h := 1
		return &h
	}
	h := resp.Results[0].SummaryStats.HIndex
	if h < 1 {
		h = 1
	}
	return &h
}

// OpenAlex authors API JSON structures.
type openAlexAuthorsResponse struct {
	Results []openAlexAuthorRecord `json:"results"`
}

type openAlexAuthorRecord struct {
	DisplayName  string            `json:"display_name"`
	SummaryStats openAlexAuthStats `json:"summary_stats"`
}

type openAlexAuthStats struct {
	HIndex int `json:"h_index"`
}
