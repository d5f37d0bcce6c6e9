// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TaskStatus is the lifecycle state of an asynchronous search task.
// completed and failed are terminal.
type TaskStatus string

const (
	TaskCreated   TaskStatus = "created"
	TaskParsing   TaskStatus = "parsing"
	TaskSearching TaskStatus = "searching"
	TaskRanking   TaskStatus = "ranking"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// SourceStatus is the per-backend progress state within a searching task.
type SourceStatus string

const (
	SourcePending    SourceStatus = "pending"
	SourceInProgress SourceStatus = "in_progress"
	SourceCompleted  SourceStatus = "completed"
	SourceFailed     SourceStatus = "failed"
)

// SourceProgress tracks one backend's progress within a task.
type SourceProgress struct {
	Status         SourceStatus `json:"status"`
	Fetched        int          `json:"fetched"`
	TotalEstimated *int         `json:"total_estimated,omitempty"`
	Errors         []string     `json:"errors,omitempty"`
}

// TaskProgress is the progress block exposed to pollers.
type TaskProgress struct {
	// Stage mirrors the task status as a stage name.
	Stage string `json:"stage"`

	// StageDescription is a human-readable description of the current
	// stage, naming the backend being searched when one is in progress.
	StageDescription string `json:"stage_description"`

	// Sources maps backend name to its progress.
	Sources map[string]SourceProgress `json:"sources"`

	// OverallPercent is 0-100, computed from fixed stage milestones.
	OverallPercent int `json:"overall_percent"`
}

// TaskError is one timestamped failure message.
type TaskError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskState is the complete record of an asynchronous search task. It lives
// only in process memory and is evicted once ExpiresAt has passed.
type TaskState struct {
	ID       string       `json:"task_id"`
	Status   TaskStatus   `json:"status"`
	Progress TaskProgress `json:"progress"`
	Query    string       `json:"query"`

	// Results is set only when Status is completed.
	Results *SearchResponse `json:"results,omitempty"`

	// Errors accumulates failure messages; a failed task has at least one.
	Errors []TaskError `json:"errors,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
