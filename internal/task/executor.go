// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/paper-survey/internal/intent"
	"github.com/pdiddy/paper-survey/internal/rank"
	"github.com/pdiddy/paper-survey/internal/search"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// Recorder archives a finished search. Implemented by the history store;
// nil disables archiving.
type Recorder interface {
	Record(resp types.SearchResponse) error
}

// Executor drives one task through parse, search, rank, complete.
type Executor struct {
	Store    *Store
	Parser   intent.Parser
	Backends map[string]search.Backend
	Config   types.SearchConfig
	// Enricher fills first-author prominence before ranking when
	// Config.EnrichAuthors is set. May be nil.
	Enricher *rank.Enricher
	// History archives completed searches. May be nil.
	History Recorder
	Log     *slog.Logger
}

// Run executes the task to a terminal state. Panics are contained: the task
// fails instead of taking the process down.
func (e *Executor) Run(ctx context.Context, taskID, query string) {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", "task_id", taskID, "panic", r)
			e.Store.Fail(taskID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	e.Store.SetStatus(taskID, types.TaskParsing)
	it, err := e.Parser.Parse(ctx, query)
	if err != nil {
		e.Store.Fail(taskID, fmt.Sprintf("parsing query: %v", err))
		return
	}
	// Reject an oversized request before any network call happens.
	if err := intent.Validate(it, e.Config); err != nil {
		e.Store.Fail(taskID, err.Error())
		return
	}

	e.Store.SetStatus(taskID, types.TaskSearching)
	sources := search.NormalizeSources(e.Config, it.EnabledSources)
	e.Store.SeedSources(taskID, sources)

	progress := func(src string, p types.SourceProgress) {
		e.Store.UpdateSource(taskID, src, p)
	}
	results, stats := search.SearchPapers(ctx, it, e.Backends, e.Config, progress, log)

	e.Store.SetStatus(taskID, types.TaskRanking)
	if e.Config.EnrichAuthors && e.Enricher != nil {
		e.Enricher.EnrichFirstAuthors(ctx, results)
	}
	ranked := rank.Top(rank.Rank(results, it.SortBy), it.MaxResults)

	resp := &types.SearchResponse{
		Query:            query,
		NormalizedIntent: it,
		Counts: types.ResponseCounts{
			QueryCombinations: stats.QueryCombinations,
			TotalRawFetched:   stats.TotalRawFetched,
			TotalRawUnique:    stats.TotalRawUnique,
			FinalUniqueCount:  stats.FinalUniqueCount,
			AfterRankCut:      len(ranked),
		},
		Stats:   stats,
		Results: ranked,
	}
	e.Store.Complete(taskID, resp)

	if e.History != nil {
		if err := e.History.Record(*resp); err != nil {
			log.Warn("archiving search failed", "task_id", taskID, "err", err)
		}
	}
}

// Search runs the whole pipeline synchronously and never returns an error:
// a failure yields a response with the error field set and empty results.
func (e *Executor) Search(ctx context.Context, query string) types.SearchResponse {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}

	it, err := e.Parser.Parse(ctx, query)
	if err != nil {
		return types.SearchResponse{Query: query, Error: fmt.Sprintf("parsing query: %v", err)}
	}
	if err := intent.Validate(it, e.Config); err != nil {
		return types.SearchResponse{Query: query, Error: err.Error()}
	}

	results, stats := search.SearchPapers(ctx, it, e.Backends, e.Config, nil, log)
	if e.Config.EnrichAuthors && e.Enricher != nil {
		e.Enricher.EnrichFirstAuthors(ctx, results)
	}
	ranked := rank.Top(rank.Rank(results, it.SortBy), it.MaxResults)

	resp := types.SearchResponse{
		Query:            query,
		NormalizedIntent: it,
		Counts: types.ResponseCounts{
			QueryCombinations: stats.QueryCombinations,
			TotalRawFetched:   stats.TotalRawFetched,
			TotalRawUnique:    stats.TotalRawUnique,
			FinalUniqueCount:  stats.FinalUniqueCount,
			AfterRankCut:      len(ranked),
		},
		Stats:   stats,
		Results: ranked,
	}
	if e.History != nil {
		if err := e.History.Record(resp); err != nil {
			log.Warn("archiving search failed", "err", err)
		}
	}
	return resp
}
