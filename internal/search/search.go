// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search implements the multi-source aggregation engine: query
// expansion, one adapter per bibliographic backend, a unified client-side
// filter, and cross-source deduplication. Each backend absorbs its own
// failures; a dead backend degrades to zero results without aborting the run.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-survey/internal/httputil"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// Backend searches a single bibliographic API. Implementations map native
// responses into canonical records, honor only the filters their API
// supports, and skip records whose dedup key is already in seen, a set
// owned exclusively by this backend for the whole run. Errors are advisory:
// the aggregator records them and continues with the other backends.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error)
}

// ProgressFunc receives per-backend progress updates as adapter calls
// complete. May be nil.
type ProgressFunc func(source string, p types.SourceProgress)

// AllowedSources enumerates the closed backend set in canonical order.
var AllowedSources = []string{"s2", "openalex", "crossref", "arxiv", "pubmed", "eupmc"}

// Backends constructs the full adapter set from configuration. Each backend
// class gets its own pacing gate shared across all calls to it.
func Backends(cfg types.SearchConfig, log *slog.Logger) map[string]Backend {
	hc := &http.Client{Timeout: cfg.Timeout}
	client := func(rps float64) *httputil.Client {
		return &httputil.Client{
			HTTP:      hc,
			Pacer:     httputil.NewPacer(rps),
			UserAgent: cfg.UserAgent,
			Log:       log,
		}
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		if cfg.SemanticScholarAPIKey != "" {
			maxPages = 4
		} else {
			maxPages = 2
		}
	}

	return map[string]Backend{
		"s2":       &SemanticScholarBackend{Client: client(cfg.SemanticScholarRPS), APIKey: cfg.SemanticScholarAPIKey, MaxPages: maxPages},
		"openalex": &OpenAlexBackend{Client: client(cfg.PublicAPIRPS), Email: cfg.OpenAlexEmail},
		"crossref": &CrossrefBackend{Client: client(cfg.PublicAPIRPS)},
		"arxiv":    &ArxivBackend{Client: client(cfg.PublicAPIRPS)},
		"pubmed":   &PubMedBackend{Client: client(cfg.PublicAPIRPS)},
		"eupmc":    &EuropePMCBackend{Client: client(cfg.PublicAPIRPS)},
	}
}

// NormalizeSources cleans the intent's source selection: unknown names are
// dropped, duplicates collapse keeping first position, the primary source is
// forced in, and the list is capped at cfg.SourceCap entries.
func NormalizeSources(cfg types.SearchConfig, srcs []string) []string {
	allowed := make(map[string]struct{}, len(AllowedSources))
	for _, s := range AllowedSources {
		allowed[s] = struct{}{}
	}

	seen := make(map[string]struct{})
	var norm []string
	for _, s := range srcs {
		k := strings.ToLower(strings.TrimSpace(s))
		if _, ok := allowed[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		norm = append(norm, k)
	}

	primary := cfg.PrimarySource
	if _, ok := seen[primary]; !ok {
		norm = append([]string{primary}, norm...)
	}

	limit := cfg.SourceCap
	if limit > 0 && len(norm) > limit {
		kept := []string{primary}
		for _, s := range norm {
			if s != primary && len(kept) < limit {
				kept = append(kept, s)
			}
		}
		norm = kept
	}
	return norm
}

// pageSizing derives the per-page fetch size following the query volume
// policy: generous over-fetch so the client-side filter has material, deeper
// with an API key.
func pageSizing(cfg types.SearchConfig, maxResults int) int {
	if cfg.SemanticScholarAPIKey != "" {
		perPage := maxResults * 3
		if perPage < 50 {
			perPage = 50
		}
		if perPage > 100 {
			perPage = 100
		}
		return perPage
	}
	perPage := maxResults * 2
	if perPage < 50 {
		perPage = 50
	}
	return perPage
}

// sourceOutcome is one backend's accumulated result over all queries.
type sourceOutcome struct {
	kept   []types.PaperMetadata
	stats  types.SourceStats
	errors []string
}

// SearchPapers fans every expanded query out across the selected backends,
// applies the unified filter, and merges with cross-source dedup. Backends
// run concurrently, but each backend's own calls are strictly sequential and
// the merge follows backend-selection order, never completion order.
func SearchPapers(ctx context.Context, intent types.SearchIntent, backends map[string]Backend, cfg types.SearchConfig, progress ProgressFunc, log *slog.Logger) ([]types.PaperMetadata, types.CombinedStats) {
	if log == nil {
		log = slog.Default()
	}
	if progress == nil {
		progress = func(string, types.SourceProgress) {}
	}

	sources := NormalizeSources(cfg, intent.EnabledSources)
	expanded := ExpandQueries(intent.AnyGroups)

	var queries []string
	for _, q := range expanded {
		if q = strings.TrimSpace(q); q != "" && q != Wildcard {
			queries = append(queries, q)
		}
	}
	log.Info("starting multi-source search",
		"sources", sources, "query_combinations", len(queries))

	perPage := pageSizing(cfg, intent.MaxResults)

	outcomes := make([]sourceOutcome, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		b := backends[src]
		g.Go(func() error {
			outcomes[i] = runSource(gctx, b, src, queries, intent, perPage, progress, log)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures degrade per source

	// Deterministic merge in selection order, then final cross-source dedup.
	var merged []types.PaperMetadata
	for _, out := range outcomes {
		merged = append(merged, out.kept...)
	}
	final := dedupeFinal(merged)

	stats := types.CombinedStats{
		SelectedSources:   sources,
		QueryCombinations: len(expanded),
		PerPage:           perPage,
		FinalUniqueCount:  len(final),
		PerSource:         make(map[string]types.SourceStats, len(sources)),
	}
	for i, src := range sources {
		st := outcomes[i].stats
		stats.PerSource[src] = st
		stats.TotalPages += st.Pages
		stats.TotalRawFetched += st.RawFetched
		stats.TotalRawUnique += st.RawUnique
		stats.TotalAfterFilter += st.AfterFilter
		for _, q := range queries {
			stats.Queries = append(stats.Queries, "["+src+"] "+q)
		}
	}

	log.Info("multi-source search finished",
		"fetched", stats.TotalRawFetched, "unique", stats.TotalRawUnique,
		"after_filter", stats.TotalAfterFilter, "final", len(final))
	return final, stats
}

// runSource executes all queries against one backend sequentially. The seen
// set lives here, giving the backend sole ownership across its calls.
func runSource(ctx context.Context, b Backend, src string, queries []string, intent types.SearchIntent, perPage int, progress ProgressFunc, log *slog.Logger) sourceOutcome {
	var out sourceOutcome
	if b == nil {
		log.Warn("no adapter for source, skipping", "source", src)
		out.errors = append(out.errors, "no adapter for source")
		progress(src, types.SourceProgress{Status: types.SourceFailed, Errors: out.errors})
		return out
	}

	progress(src, types.SourceProgress{Status: types.SourceInProgress})

	seen := make(map[DedupKey]struct{})
	for _, q := range queries {
		records, st, err := b.Search(ctx, q, intent, seen, perPage)
		if err != nil {
			log.Warn("backend call failed", "source", src, "query", q, "err", err)
			out.errors = append(out.errors, err.Error())
		}
		out.stats.RawFetched += st.RawFetched
		out.stats.RawUnique += st.RawUnique
		out.stats.Pages += st.Pages

		for _, p := range records {
			if reason := rejectReason(p, intent); reason != "" {
				log.Debug("record rejected", "source", src, "reason", reason, "title", p.Title)
				continue
			}
			out.kept = append(out.kept, p)
			out.stats.AfterFilter++
		}

		progress(src, types.SourceProgress{
			Status:  types.SourceInProgress,
			Fetched: out.stats.RawUnique,
			Errors:  out.errors,
		})
	}

	status := types.SourceCompleted
	if len(out.errors) > 0 && out.stats.RawFetched == 0 {
		status = types.SourceFailed
	}
	progress(src, types.SourceProgress{
		Status:  status,
		Fetched: out.stats.RawUnique,
		Errors:  out.errors,
	})
	return out
}
