package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/seantiz/tasksolver/internal/executor"
	"github.com/seantiz/tasksolver/internal/model"
	"github.com/seantiz/tasksolver/internal/queue"
	"github.com/seantiz/tasksolver/internal/store"
	"github.com/seantiz/tasksolver/internal/telemetry"
)

// Pool is a fixed set of worker goroutines draining one queue into one
// status store. Workers are started by NewPool and run until Stop.
type Pool struct {
	queue    *queue.Queue
	store    store.Store
	registry *executor.Registry
	broker   *StatusBroker
	logger   *slog.Logger
	size     int

	wg       sync.WaitGroup
	running  atomic.Int64
	stopOnce sync.Once
}

// NewPool starts size workers (minimum 1).
func NewPool(size int, q *queue.Queue, s store.Store, reg *executor.Registry, broker *StatusBroker, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		queue:    q,
		store:    s,
		registry: reg,
		broker:   broker,
		logger:   logger,
		size:     size,
	}

	for range size {
		workerID := "worker-" + uuid.NewString()[:8]
		p.wg.Go(func() {
			p.work(workerID)
		})
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Running returns the number of tasks currently being executed.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Stop closes the queue and waits for every worker to finish its in-flight
// task. It returns the queued items that were never started. Executions are
// never killed, so Stop blocks for as long as the slowest running task.
func (p *Pool) Stop() []queue.Item {
	var left []queue.Item
	p.stopOnce.Do(func() {
		left = p.queue.Close()
		p.wg.Wait()
	})
	return left
}

// work is one worker loop. It only returns once the queue is closed.
func (p *Pool) work(workerID string) {
	log := p.logger.With("worker_id", workerID)
	log.Debug("worker started")

	for {
		item, err := p.queue.Dequeue(context.Background())
		if err != nil {
			log.Debug("worker stopped", "reason", err)
			return
		}
		p.process(workerID, item)
	}
}

// process drives one task through running to its terminal state.
func (p *Pool) process(workerID string, item queue.Item) {
	kind := item.Request.Kind
	log := p.logger.With("task_id", item.ID, "kind", kind, "worker_id", workerID)

	ctx, span := telemetry.Tracer().Start(context.Background(), "worker.process_task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", item.ID),
		attribute.String("task.kind", string(kind)),
		attribute.String("worker.id", workerID),
	)

	p.running.Add(1)
	tasksRunning.Inc()
	defer func() {
		tasksRunning.Dec()
		p.running.Add(-1)
	}()

	start := time.Now().UTC()
	p.store.Update(item.ID, func(r *model.Record) {
		r.Status = model.StatusRunning
		r.StartedAt = &start
	})
	p.broker.Publish(item.ID, model.StatusRunning)
	log.Debug("task running")

	res := p.execute(ctx, item)

	finished := time.Now().UTC()
	p.store.Update(item.ID, func(r *model.Record) {
		r.Status = res.Outcome
		r.Stdout = res.Stdout
		r.Stderr = res.Stderr
		r.FinishedAt = &finished
	})
	p.broker.Publish(item.ID, res.Outcome)

	duration := finished.Sub(start)
	taskDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
	tasksProcessed.WithLabelValues(string(kind), string(res.Outcome)).Inc()

	if res.Outcome == model.StatusFailed {
		span.SetStatus(codes.Error, "task failed")
		log.Info("task failed", "exit_code", res.ExitCode, "duration_ms", duration.Milliseconds())
		return
	}
	log.Info("task succeeded", "duration_ms", duration.Milliseconds())
}

// execute resolves and runs the executor for item. It never panics: a
// missing executor, a start failure or a panicking executor all come back
// as a failed result with a diagnostic stderr.
func (p *Pool) execute(ctx context.Context, item queue.Item) (res executor.Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("executor panicked", "task_id", item.ID, "panic", r)
			res = failedResult(fmt.Sprintf("executor panic: %v", r))
		}
	}()

	ex, err := p.registry.Resolve(item.Request.Kind)
	if err != nil {
		return failedResult(fmt.Sprintf("resolve executor: %v", err))
	}

	res, err = ex.Execute(ctx, executor.Spec{
		ID:        item.ID,
		Kind:      item.Request.Kind,
		Payload:   item.Request.Payload,
		Arguments: item.Request.Arguments,
	})
	if err != nil {
		return failedResult(err.Error())
	}
	if res.Outcome != model.StatusSuccess {
		res.Outcome = model.StatusFailed
	}
	return res
}

// failedResult builds the result recorded for a task that never ran.
func failedResult(msg string) executor.Result {
	return executor.Result{
		Stderr:   &msg,
		ExitCode: -1,
		Outcome:  model.StatusFailed,
	}
}
