// Package task tracks conversion lifecycle state: each conversion gets a
// keyed record moving pending -> processing -> completed|failed, mirrored to
// a flat JSON file so state survives restarts.
package task

import (
	"errors"
	"fmt"
	"time"
)

// Status is a conversion task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one conversion's tracked record.
type Task struct {
	ID        string         `json:"id"`
	Status    Status         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Data      map[string]any `json:"data,omitempty"`
}

// Store is the contract for tracking tasks. The orchestrator only ever holds
// task ids; all mutation goes through the store.
type Store interface {
	// Create registers a new pending task and returns its id.
	Create(data map[string]any) (string, error)

	// SetStatus transitions a task. Transitions out of a terminal status
	// are rejected with ErrTerminal.
	SetStatus(id string, status Status) error

	// MergeData merges the given keys into the task's data blob.
	MergeData(id string, data map[string]any) error

	// Get returns the task with the given id.
	Get(id string) (Task, bool)

	// ListByStatus returns all tasks with the given status, oldest first.
	ListByStatus(status Status) []Task
}

var (
	// ErrNotFound is returned when a task id is unknown.
	ErrNotFound = errors.New("task not found")

	// ErrTerminal is returned on attempts to transition a completed or
	// failed task.
	ErrTerminal = errors.New("task already in a terminal status")
)

// StoreError wraps a persistence failure. Task tracking is best effort: the
// orchestrator logs these and never lets them mask the conversion outcome.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("task store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }
