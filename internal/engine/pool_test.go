package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seantiz/tasksolver/internal/executor"
	"github.com/seantiz/tasksolver/internal/model"
	"github.com/seantiz/tasksolver/internal/queue"
	"github.com/seantiz/tasksolver/internal/store"
)

// recordingStore wraps a MemoryStore and remembers every status each task
// was written with, in order.
type recordingStore struct {
	*store.MemoryStore

	mu      sync.Mutex
	history map[string][]model.Status
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		MemoryStore: store.NewMemoryStore(),
		history:     make(map[string][]model.Status),
	}
}

func (s *recordingStore) Create(id string, rec model.Record) {
	s.MemoryStore.Create(id, rec)
	s.mu.Lock()
	s.history[id] = append(s.history[id], rec.Status)
	s.mu.Unlock()
}

func (s *recordingStore) Update(id string, mutate func(*model.Record)) {
	s.MemoryStore.Update(id, func(r *model.Record) {
		mutate(r)
		s.mu.Lock()
		s.history[id] = append(s.history[id], r.Status)
		s.mu.Unlock()
	})
}

func (s *recordingStore) statuses(id string) []model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Status(nil), s.history[id]...)
}

type outcomeExecutor struct{}

func (outcomeExecutor) Execute(_ context.Context, spec executor.Spec) (executor.Result, error) {
	switch spec.Payload {
	case "fail":
		msg := "exit 1"
		return executor.Result{Stderr: &msg, ExitCode: 1, Outcome: model.StatusFailed}, nil
	case "bogus":
		// An executor reporting a non-terminal outcome is recorded as failed.
		return executor.Result{Outcome: model.StatusRunning}, nil
	default:
		return executor.Result{Stdout: spec.Payload, Outcome: model.StatusSuccess}, nil
	}
}

func (outcomeExecutor) Info() executor.Info {
	return executor.Info{Kind: model.KindScript, Name: "outcome"}
}

func newTestPool(t *testing.T, size int, s store.Store) (*Pool, *queue.Queue) {
	t.Helper()
	reg := executor.NewRegistry()
	reg.Register(outcomeExecutor{})

	q := queue.New()
	p := NewPool(size, q, s, reg, NewStatusBroker(nil), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	t.Cleanup(func() { p.Stop() })
	return p, q
}

func TestStatusTransitionsAreStrictlyOrdered(t *testing.T) {
	s := newRecordingStore()
	_, q := newTestPool(t, 4, s)

	payloads := []string{"ok", "fail", "bogus"}
	var ids []string
	for i := range 30 {
		id := fmt.Sprintf("task-%02d", i)
		s.Create(id, model.NewRecord(model.KindScript))
		require.NoError(t, q.Enqueue(queue.Item{ID: id, Request: model.Request{
			Kind:    model.KindScript,
			Payload: payloads[i%len(payloads)],
		}}))
		ids = append(ids, id)
	}

	require.Eventually(t, func() bool {
		for _, id := range ids {
			rec, _ := s.Get(id)
			if !rec.Status.IsTerminal() {
				return false
			}
		}
		return true
	}, 5*time.Second, 5*time.Millisecond)

	for i, id := range ids {
		hist := s.statuses(id)
		require.Len(t, hist, 3, "task %s history %v", id, hist)
		assert.Equal(t, model.StatusWaiting, hist[0])
		assert.Equal(t, model.StatusRunning, hist[1])
		for j := 1; j < len(hist); j++ {
			assert.True(t, model.ValidTransition(hist[j-1], hist[j]), "task %s: %s -> %s", id, hist[j-1], hist[j])
		}

		want := model.StatusSuccess
		if payloads[i%len(payloads)] != "ok" {
			want = model.StatusFailed
		}
		assert.Equal(t, want, hist[2], "task %s", id)
	}
}

func TestPoolMinimumOneWorker(t *testing.T) {
	p, _ := newTestPool(t, 0, store.NewMemoryStore())
	assert.Equal(t, 1, p.Size())
}

func TestUnresolvableKindFailsTask(t *testing.T) {
	s := store.NewMemoryStore()
	_, q := newTestPool(t, 1, s)

	s.Create("bin-task", model.NewRecord(model.KindBinary))
	require.NoError(t, q.Enqueue(queue.Item{ID: "bin-task", Request: model.Request{Kind: model.KindBinary}}))

	require.Eventually(t, func() bool {
		rec, _ := s.Get("bin-task")
		return rec.Status == model.StatusFailed
	}, 5*time.Second, 5*time.Millisecond)

	rec, _ := s.Get("bin-task")
	require.NotNil(t, rec.Stderr)
	assert.Contains(t, *rec.Stderr, "resolve executor")
	assert.NotNil(t, rec.StartedAt, "started_at is set even when no executor resolves")
}

func TestStopIsIdempotent(t *testing.T) {
	p, q := newTestPool(t, 2, store.NewMemoryStore())

	assert.Empty(t, p.Stop())
	assert.Nil(t, p.Stop())
	assert.ErrorIs(t, q.Enqueue(queue.Item{ID: "x"}), queue.ErrClosed)
}
