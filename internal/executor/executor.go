package executor

import (
	"context"

	"github.com/seantiz/tasksolver/internal/model"
)

// Executor runs one task payload to completion.
type Executor interface {
	// Execute runs spec and blocks until the process exits. A returned error
	// means the payload could not be started at all (decode or spawn
	// failure); a process that ran and exited non-zero is reported through
	// Result.Outcome instead.
	Execute(ctx context.Context, spec Spec) (Result, error)

	// Info describes the executor for listing endpoints.
	Info() Info
}

// Spec describes a task to be executed.
type Spec struct {
	ID        string     `json:"id"`
	Kind      model.Kind `json:"kind"`
	Payload   string     `json:"payload"`
	Arguments string     `json:"arguments"`
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string       `json:"stdout"`
	Stderr   *string      `json:"stderr,omitempty"`
	ExitCode int          `json:"exit_code"`
	Outcome  model.Status `json:"outcome"`
}

// Info describes what an executor runs.
type Info struct {
	Kind    model.Kind `json:"kind"`
	Name    string     `json:"name"`
	Command string     `json:"command"`
}
