// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package task runs asynchronous searches: an in-memory TTL store of task
// state plus an executor that drives one task through its lifecycle. Task
// state never leaves process memory; a restart forgets all tasks.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// sourceDisplayNames are the human-readable backend names used in stage
// descriptions.
var sourceDisplayNames = map[string]string{
	"s2":       "Semantic Scholar",
	"openalex": "OpenAlex",
	"crossref": "Crossref",
	"arxiv":    "arXiv",
	"pubmed":   "PubMed",
	"eupmc":    "Europe PMC",
}

// Store holds all live task state behind one mutex. Finished tasks stay
// readable until their TTL passes and the cleanup loop evicts them.
type Store struct {
	mu    sync.Mutex
	tasks map[string]*types.TaskState

	ttl             time.Duration
	cleanupInterval time.Duration
	log             *slog.Logger
}

// NewStore builds a store from the task configuration.
func NewStore(cfg types.TaskConfig, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		tasks:           make(map[string]*types.TaskState),
		ttl:             cfg.TTL,
		cleanupInterval: cfg.CleanupInterval,
		log:             log,
	}
}

// Create registers a new task in the created state and returns a copy.
func (s *Store) Create(query string) types.TaskState {
	now := time.Now()
	t := &types.TaskState{
		ID:        uuid.NewString(),
		Status:    types.TaskCreated,
		Query:     query,
		CreatedAt: now,
		UpdatedAt: now,
		Progress: types.TaskProgress{
			Sources: make(map[string]types.SourceProgress),
		},
	}
	recompute(t)

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	return copyTask(t)
}

// Get returns a copy of the task. Callers never see live state.
func (s *Store) Get(id string) (types.TaskState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return types.TaskState{}, false
	}
	return copyTask(t), true
}

// SetStatus transitions the task to a non-terminal status. Transitions out
// of a terminal status are ignored.
func (s *Store) SetStatus(id string, status types.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	t.Status = status
	recompute(t)
}

// SeedSources registers the selected backends as pending before the search
// fans out, so pollers see the full source list immediately.
func (s *Store) SeedSources(id string, sources []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	for _, src := range sources {
		t.Progress.Sources[src] = types.SourceProgress{Status: types.SourcePending}
	}
	recompute(t)
}

// UpdateSource folds one backend's progress into the task.
func (s *Store) UpdateSource(id, source string, p types.SourceProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	t.Progress.Sources[source] = p
	recompute(t)
}

// Complete finishes the task with its results and stamps the TTL.
func (s *Store) Complete(id string, results *types.SearchResponse) {
	s.finish(id, types.TaskCompleted, results, "")
}

// Fail finishes the task with a failure message and stamps the TTL.
func (s *Store) Fail(id, message string) {
	s.finish(id, types.TaskFailed, nil, message)
}

func (s *Store) finish(id string, status types.TaskStatus, results *types.SearchResponse, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	now := time.Now()
	t.Status = status
	t.Results = results
	if message != "" {
		t.Errors = append(t.Errors, types.TaskError{Message: message, Timestamp: now})
	}
	t.CompletedAt = &now
	expires := now.Add(s.ttl)
	t.ExpiresAt = &expires
	recompute(t)
}

// Cleanup evicts tasks whose TTL has passed and returns how many went.
func (s *Store) Cleanup() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		if t.ExpiresAt != nil && now.After(*t.ExpiresAt) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs the eviction loop until the context is done.
func (s *Store) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				s.log.Info("evicted expired tasks", "count", n)
			}
		}
	}
}

// recompute refreshes the derived progress fields. Caller holds the lock.
func recompute(t *types.TaskState) {
	t.UpdatedAt = time.Now()
	t.Progress.Stage = string(t.Status)
	t.Progress.OverallPercent = percent(t)
	t.Progress.StageDescription = describe(t)
}

// percent maps the task status to its milestone. A searching task moves
// from 25 to 75 as backends finish.
func percent(t *types.TaskState) int {
	switch t.Status {
	case types.TaskCreated, types.TaskFailed:
		return 0
	case types.TaskParsing:
		return 25
	case types.TaskSearching:
		total := len(t.Progress.Sources)
		if total == 0 {
			return 25
		}
		done := 0
		for _, p := range t.Progress.Sources {
			if p.Status == types.SourceCompleted || p.Status == types.SourceFailed {
				done++
			}
		}
		return 25 + 50*done/total
	case types.TaskRanking:
		return 75
	case types.TaskCompleted:
		return 100
	}
	return 0
}

func describe(t *types.TaskState) string {
	switch t.Status {
	case types.TaskCreated:
		return "task created"
	case types.TaskParsing:
		return "analyzing the research question"
	case types.TaskSearching:
		for _, src := range orderedSources(t) {
			if t.Progress.Sources[src].Status == types.SourceInProgress {
				name := sourceDisplayNames[src]
				if name == "" {
					name = src
				}
				return "searching " + name
			}
		}
		if len(t.Progress.Sources) > 0 && percent(t) == 75 {
			return "search complete"
		}
		return "searching backends"
	case types.TaskRanking:
		return "ranking results"
	case types.TaskCompleted:
		return "completed"
	case types.TaskFailed:
		if n := len(t.Errors); n > 0 {
			return fmt.Sprintf("failed: %s", t.Errors[n-1].Message)
		}
		return "failed"
	}
	return string(t.Status)
}

// orderedSources returns the canonical backend order restricted to the
// task's sources, so the description is deterministic.
func orderedSources(t *types.TaskState) []string {
	canonical := []string{"s2", "openalex", "crossref", "arxiv", "pubmed", "eupmc"}
	var out []string
	for _, src := range canonical {
		if _, ok := t.Progress.Sources[src]; ok {
			out = append(out, src)
		}
	}
	for src := range t.Progress.Sources {
		known := false
		for _, o := range out {
			if o == src {
				known = true
				break
			}
		}
		if !known {
			out = append(out, src)
		}
	}
	return out
}

// copyTask deep-copies the mutable parts of a task.
func copyTask(t *types.TaskState) types.TaskState {
	out := *t
	out.Progress.Sources = make(map[string]types.SourceProgress, len(t.Progress.Sources))
	for k, v := range t.Progress.Sources {
		p := v
		p.Errors = append([]string(nil), v.Errors...)
		out.Progress.Sources[k] = p
	}
	out.Errors = append([]types.TaskError(nil), t.Errors...)
	if t.Results != nil {
		r := *t.Results
		out.Results = &r
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		out.CompletedAt = &c
	}
	if t.ExpiresAt != nil {
		e := *t.ExpiresAt
		out.ExpiresAt = &e
	}
	return out
}
