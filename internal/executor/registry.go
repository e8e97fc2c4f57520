package executor

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/seantiz/tasksolver/internal/model"
)

// ErrNoExecutor is returned by Resolve when no executor handles a kind.
var ErrNoExecutor = errors.New("no executor registered")

// Registry maps task kinds to executors.
type Registry struct {
	mu        sync.RWMutex
	executors map[model.Kind]Executor
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[model.Kind]Executor),
	}
}

// NewDefaultRegistry returns a registry with the script and binary executors.
func NewDefaultRegistry(interpreter, workDir string) *Registry {
	r := NewRegistry()
	r.Register(NewScriptExecutor(interpreter))
	r.Register(NewBinaryExecutor(workDir))
	return r
}

// Register adds e under the kind it reports, replacing any previous executor.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Info().Kind] = e
}

// Resolve returns the executor for kind.
func (r *Registry) Resolve(kind model.Kind) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[kind]
	if !ok {
		return nil, fmt.Errorf("%w for kind %q", ErrNoExecutor, kind)
	}
	return e, nil
}

// Supports reports whether an executor is registered for kind.
func (r *Registry) Supports(kind model.Kind) bool {
	_, err := r.Resolve(kind)
	return err == nil
}

// List returns information about all registered executors, sorted by kind
// for a stable API response.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.executors))
	for _, e := range r.executors {
		infos = append(infos, e.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Kind < infos[j].Kind
	})
	return infos
}
