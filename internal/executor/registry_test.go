package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/seantiz/tasksolver/internal/executor"
	"github.com/seantiz/tasksolver/internal/model"
)

// stubExecutor is a minimal Executor for registry tests.
type stubExecutor struct {
	kind model.Kind
	name string
}

func (s *stubExecutor) Execute(_ context.Context, _ executor.Spec) (executor.Result, error) {
	return executor.Result{Outcome: model.StatusSuccess}, nil
}

func (s *stubExecutor) Info() executor.Info {
	return executor.Info{Kind: s.kind, Name: s.name}
}

func TestRegistryRegisterAndList(t *testing.T) {
	reg := executor.NewRegistry()
	reg.Register(&stubExecutor{kind: model.KindScript, name: "script"})
	reg.Register(&stubExecutor{kind: model.KindBinary, name: "binary"})

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d executors, want 2", len(list))
	}
	// Sorted by kind: "bin" < "python".
	if list[0].Kind != model.KindBinary || list[1].Kind != model.KindScript {
		t.Errorf("List() order = %v, want [bin python]", list)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := executor.NewRegistry()
	script := &stubExecutor{kind: model.KindScript, name: "script"}
	reg.Register(script)

	got, err := reg.Resolve(model.KindScript)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != script {
		t.Error("Resolve returned a different executor")
	}
	if !reg.Supports(model.KindScript) {
		t.Error("Supports(python) = false, want true")
	}
}

func TestRegistryResolveUnregistered(t *testing.T) {
	reg := executor.NewRegistry()

	_, err := reg.Resolve(model.KindBinary)
	if !errors.Is(err, executor.ErrNoExecutor) {
		t.Errorf("Resolve error = %v, want ErrNoExecutor", err)
	}
	if reg.Supports(model.KindBinary) {
		t.Error("Supports(bin) = true on empty registry")
	}
}

func TestRegistryReplace(t *testing.T) {
	reg := executor.NewRegistry()
	reg.Register(&stubExecutor{kind: model.KindScript, name: "old"})
	reg.Register(&stubExecutor{kind: model.KindScript, name: "new"})

	list := reg.List()
	if len(list) != 1 || list[0].Name != "new" {
		t.Errorf("List() = %v, want single entry named new", list)
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := executor.NewDefaultRegistry("", t.TempDir())

	for _, k := range []model.Kind{model.KindScript, model.KindBinary} {
		if !reg.Supports(k) {
			t.Errorf("default registry does not support %q", k)
		}
	}
}
