package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/seantiz/tasksolver/internal/executor"
	"github.com/seantiz/tasksolver/internal/model"
	"github.com/seantiz/tasksolver/internal/queue"
	"github.com/seantiz/tasksolver/internal/store"
	"github.com/seantiz/tasksolver/internal/telemetry"
)

var (
	// ErrNotFound is returned by Status for ids that were never submitted.
	ErrNotFound = errors.New("task not found")

	// ErrShuttingDown is returned by Submit once Shutdown has begun.
	ErrShuttingDown = errors.New("engine is shutting down")
)

// Engine is the composition root of the task execution engine. It owns the
// queue and worker pool and shares the status store with its callers.
type Engine struct {
	store    store.Store
	registry *executor.Registry
	queue    *queue.Queue
	pool     *Pool
	broker   *StatusBroker
	logger   *slog.Logger
}

// NewEngine creates an engine and starts its worker pool.
func NewEngine(s store.Store, reg *executor.Registry, workers int, logger *slog.Logger) *Engine {
	q := queue.New()
	broker := NewStatusBroker(func(id string) (model.Status, bool) {
		rec, ok := s.Get(id)
		return rec.Status, ok
	})
	trackQueue(q)
	return &Engine{
		store:    s,
		registry: reg,
		queue:    q,
		pool:     NewPool(workers, q, s, reg, broker, logger),
		broker:   broker,
		logger:   logger,
	}
}

// Broker returns the engine's status broker for event subscription.
func (e *Engine) Broker() *StatusBroker {
	return e.broker
}

// Workers returns the size of the worker pool.
func (e *Engine) Workers() int {
	return e.pool.Size()
}

// Running returns the number of tasks currently executing.
func (e *Engine) Running() int {
	return e.pool.Running()
}

// Submit records req as waiting and queues it for a worker. The record is
// created before the task is queued, so a Status call racing right behind
// Submit always finds it. Kinds without a registered executor are rejected
// with model.ErrUnknownKind.
//
// If the engine is shutting down the record is still created, marked failed
// and its id returned alongside ErrShuttingDown.
func (e *Engine) Submit(ctx context.Context, req model.Request) (string, error) {
	if !e.registry.Supports(req.Kind) {
		return "", fmt.Errorf("submit: %w: %q", model.ErrUnknownKind, req.Kind)
	}

	_, span := telemetry.Tracer().Start(ctx, "engine.submit")
	defer span.End()

	id := model.NewID()
	span.SetAttributes(
		attribute.String("task.id", id),
		attribute.String("task.kind", string(req.Kind)),
	)

	e.store.Create(id, model.NewRecord(req.Kind))
	e.broker.Publish(id, model.StatusWaiting)

	if err := e.queue.Enqueue(queue.Item{ID: id, Request: req}); err != nil {
		e.rejectQueued(id, err)
		return id, fmt.Errorf("submit: %w", ErrShuttingDown)
	}
	tasksSubmitted.WithLabelValues(string(req.Kind)).Inc()

	e.logger.Debug("task submitted", "task_id", id, "kind", req.Kind)
	return id, nil
}

// rejectQueued fails a waiting task that could not be queued so it never
// stays waiting. Subscribers see the FAILED status like any other outcome.
func (e *Engine) rejectQueued(id string, cause error) {
	msg := fmt.Sprintf("task not queued: %v", cause)
	now := time.Now().UTC()
	e.store.Update(id, func(r *model.Record) {
		r.Status = model.StatusFailed
		r.Stderr = &msg
		r.FinishedAt = &now
	})
	e.broker.Publish(id, model.StatusFailed)
	e.logger.Warn("task rejected", "task_id", id, "error", cause)
}

// Status returns a snapshot of the task record.
func (e *Engine) Status(id string) (model.Record, error) {
	rec, ok := e.store.Get(id)
	if !ok {
		return model.Record{}, ErrNotFound
	}
	return rec, nil
}

// Pending returns the number of tasks waiting in the queue, not counting
// tasks already running. It is a point-in-time estimate.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Stats returns aggregate statistics over all tasks.
func (e *Engine) Stats() store.TaskStats {
	return e.store.Stats()
}

// Shutdown stops accepting tasks and waits for in-flight executions to
// complete. Tasks still queued are never started; they are marked failed so
// no record stays waiting.
func (e *Engine) Shutdown() {
	e.logger.Info("engine shutting down", "pending", e.queue.Len(), "running", e.pool.Running())

	left := e.pool.Stop()
	for _, item := range left {
		e.rejectQueued(item.ID, ErrShuttingDown)
	}
	untrackQueue(e.queue)

	e.logger.Info("engine stopped", "unstarted", len(left))
}
