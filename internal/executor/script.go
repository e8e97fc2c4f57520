package executor

import (
	"context"

	"github.com/seantiz/tasksolver/internal/model"
)

// DefaultInterpreter is the command used to run script payloads.
const DefaultInterpreter = "python3"

// ScriptExecutor runs the payload as Python source via "<interpreter> -c".
type ScriptExecutor struct {
	interpreter string
}

// NewScriptExecutor creates a script executor. An empty interpreter selects
// DefaultInterpreter.
func NewScriptExecutor(interpreter string) *ScriptExecutor {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	return &ScriptExecutor{interpreter: interpreter}
}

// Execute runs the script and maps a non-zero exit to StatusFailed.
func (s *ScriptExecutor) Execute(ctx context.Context, spec Spec) (Result, error) {
	return runProcess(ctx, "", s.interpreter, argv([]string{"-c", spec.Payload}, spec.Arguments)...)
}

// Info implements Executor.
func (s *ScriptExecutor) Info() Info {
	return Info{
		Kind:    model.KindScript,
		Name:    "script",
		Command: s.interpreter + " -c",
	}
}
