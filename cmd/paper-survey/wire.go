// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pdiddy/paper-survey/internal/history"
	"github.com/pdiddy/paper-survey/internal/httputil"
	"github.com/pdiddy/paper-survey/internal/rank"
	"github.com/pdiddy/paper-survey/internal/search"
	"github.com/pdiddy/paper-survey/internal/task"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// newExecutor assembles the pipeline from configuration. The caller picks
// the parser. The returned cleanup closes the history store when one was
// opened; it is safe to call unconditionally.
func newExecutor(cfg types.Config, log *slog.Logger) (*task.Executor, *task.Store, func(), error) {
	store := task.NewStore(cfg.Task, log)
	exec := &task.Executor{
		Store:    store,
		Backends: search.Backends(cfg.Search, log),
		Config:   cfg.Search,
		Log:      log,
	}

	if cfg.Search.EnrichAuthors {
		exec.Enricher = &rank.Enricher{
			Client: &httputil.Client{
				HTTP:      &http.Client{Timeout: cfg.Search.Timeout},
				Pacer:     httputil.NewPacer(cfg.Search.PublicAPIRPS),
				UserAgent: cfg.Search.UserAgent,
				Log:       log,
			},
			Email: cfg.Search.OpenAlexEmail,
		}
	}

	cleanup := func() {}
	if cfg.History.Enabled {
		hs, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("opening history: %w", err)
		}
		exec.History = hs
		cleanup = func() { hs.Close() }
	}
	return exec, store, cleanup, nil
}
