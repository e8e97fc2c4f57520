package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKind is returned when a submission names a task type other than
// "python" or "bin".
var ErrUnknownKind = errors.New("unknown task kind")

// Kind selects the executor code path and how Request.Payload is interpreted.
type Kind string

// Task kinds as they appear on the wire.
const (
	KindScript Kind = "python"
	KindBinary Kind = "bin"
)

// ParseKind maps a wire value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindScript, KindBinary:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Status is the lifecycle state of a task.
type Status string

// Task status constants. StatusNotFound is only ever reported by queries and
// is never stored.
const (
	StatusWaiting  Status = "WAIT"
	StatusRunning  Status = "RUNNING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusNotFound Status = "NOT_FOUND"
)

// IsTerminal reports whether no further transitions can happen.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// validTransitions maps each status to the set of statuses it may transition to.
var validTransitions = map[Status]map[Status]bool{
	StatusWaiting: {
		StatusRunning: true,
		StatusFailed:  true,
	},
	StatusRunning: {
		StatusSuccess: true,
		StatusFailed:  true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
// Waiting→Failed covers tasks that are recorded but can no longer be queued.
func ValidTransition(from, to Status) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Request is the immutable input of a task.
type Request struct {
	Kind      Kind
	Payload   string
	Arguments string
}

// Record is the mutable state of a task, owned by the status store.
type Record struct {
	Kind       Kind       `json:"kind"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Stdout     string     `json:"stdout"`
	Stderr     *string    `json:"stderr,omitempty"`
}

// NewRecord returns a Waiting record created now.
func NewRecord(kind Kind) Record {
	return Record{
		Kind:      kind,
		Status:    StatusWaiting,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy so callers never share pointers with the store.
func (r Record) Clone() Record {
	c := r
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	if r.Stderr != nil {
		s := *r.Stderr
		c.Stderr = &s
	}
	return c
}

// Duration returns the execution time of a finished task, or zero.
func (r Record) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}
