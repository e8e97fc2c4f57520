package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seantiz/tasksolver/internal/model"
)

func TestCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	rec := model.NewRecord(model.KindScript)

	s.Create("t1", rec)

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, model.StatusWaiting, got.Status)
	assert.Equal(t, model.KindScript, got.Kind)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.Stderr)
}

func TestGetMissing(t *testing.T) {
	s := NewMemoryStore()

	got, ok := s.Get("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, model.Record{}, got)
}

func TestCreateDuplicatePanics(t *testing.T) {
	s := NewMemoryStore()
	s.Create("t1", model.NewRecord(model.KindBinary))

	assert.Panics(t, func() {
		s.Create("t1", model.NewRecord(model.KindBinary))
	})
}

func TestUpdateMissingPanics(t *testing.T) {
	s := NewMemoryStore()

	assert.Panics(t, func() {
		s.Update("nonexistent", func(r *model.Record) { r.Status = model.StatusRunning })
	})
}

func TestUpdateMutatesInPlace(t *testing.T) {
	s := NewMemoryStore()
	s.Create("t1", model.NewRecord(model.KindScript))

	now := time.Now().UTC()
	stderr := "warning"
	s.Update("t1", func(r *model.Record) {
		r.Status = model.StatusSuccess
		r.Stdout = "out"
		r.Stderr = &stderr
		r.FinishedAt = &now
	})

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, model.StatusSuccess, got.Status)
	assert.Equal(t, "out", got.Stdout)
	require.NotNil(t, got.Stderr)
	assert.Equal(t, "warning", *got.Stderr)
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := NewMemoryStore()
	s.Create("t1", model.NewRecord(model.KindScript))
	s.Update("t1", func(r *model.Record) {
		msg := "original"
		r.Stderr = &msg
	})

	got, _ := s.Get("t1")
	*got.Stderr = "tampered"
	got.Status = model.StatusFailed

	again, _ := s.Get("t1")
	assert.Equal(t, "original", *again.Stderr)
	assert.Equal(t, model.StatusWaiting, again.Status)
}

func TestSingleShardStillWorks(t *testing.T) {
	s := NewMemoryStoreWithShards(0)
	for i := range 10 {
		s.Create(fmt.Sprintf("t%d", i), model.NewRecord(model.KindScript))
	}
	assert.Equal(t, 10, s.Stats().Total)
}

func TestConcurrentCreateUpdateGet(t *testing.T) {
	s := NewMemoryStore()
	const n = 200

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("task-%d", i)
			s.Create(id, model.NewRecord(model.KindScript))
			s.Update(id, func(r *model.Record) { r.Status = model.StatusRunning })
			_, _ = s.Get(fmt.Sprintf("task-%d", (i+1)%n))
			s.Update(id, func(r *model.Record) { r.Status = model.StatusSuccess })
		}()
	}
	wg.Wait()

	for i := range n {
		got, ok := s.Get(fmt.Sprintf("task-%d", i))
		require.True(t, ok)
		assert.Equal(t, model.StatusSuccess, got.Status)
	}
}

func TestStats(t *testing.T) {
	s := NewMemoryStore()

	s.Create("w", model.NewRecord(model.KindScript))
	s.Create("r", model.NewRecord(model.KindBinary))
	s.Update("r", func(r *model.Record) { r.Status = model.StatusRunning })

	start := time.Now()
	for i, d := range []time.Duration{100 * time.Millisecond, 300 * time.Millisecond} {
		id := fmt.Sprintf("done-%d", i)
		s.Create(id, model.NewRecord(model.KindScript))
		s.Update(id, func(r *model.Record) {
			end := start.Add(d)
			r.Status = model.StatusSuccess
			r.StartedAt = &start
			r.FinishedAt = &end
		})
	}

	stats := s.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.CountByStatus[model.StatusWaiting])
	assert.Equal(t, 1, stats.CountByStatus[model.StatusRunning])
	assert.Equal(t, 2, stats.CountByStatus[model.StatusSuccess])
	assert.Equal(t, 3, stats.CountByKind[model.KindScript])
	assert.Equal(t, 1, stats.CountByKind[model.KindBinary])
	assert.Equal(t, 200*time.Millisecond, stats.AvgDuration)
}
