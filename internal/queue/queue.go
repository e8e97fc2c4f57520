// Package queue implements the hand-off between submitters and workers: an
// unbounded multi-producer, multi-consumer FIFO whose producers never block.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/seantiz/tasksolver/internal/model"
)

// ErrClosed is returned by Enqueue and Dequeue once the queue is closed.
var ErrClosed = errors.New("queue closed")

// Item is one task awaiting a worker.
type Item struct {
	ID      string
	Request model.Request
}

// Queue is safe for concurrent use by any number of producers and consumers.
//
// Items are kept in a slice guarded by mu. The ready channel holds at most one
// wake-up token; a consumer that takes an item and leaves more behind passes
// the token on, so a burst of enqueues wakes as many consumers as it needs.
type Queue struct {
	mu     sync.Mutex
	items  []Item
	closed bool

	ready chan struct{}
	done  chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Enqueue appends item without blocking.
func (q *Queue) Enqueue(item Item) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.signal()
	return nil
}

// Dequeue blocks until an item is available, ctx is done or the queue is
// closed. Items still queued at Close are returned by Close instead.
func (q *Queue) Dequeue(ctx context.Context) (Item, error) {
	for {
		if item, ok, err := q.tryDequeue(); err != nil || ok {
			return item, err
		}

		select {
		case <-q.ready:
		case <-q.done:
			return Item{}, ErrClosed
		case <-ctx.Done():
			return Item{}, ctx.Err()
		}
	}
}

func (q *Queue) tryDequeue() (Item, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Item{}, false, ErrClosed
	}
	if len(q.items) == 0 {
		return Item{}, false, nil
	}

	item := q.items[0]
	q.items[0] = Item{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Release the backing array once drained.
		q.items = nil
	} else {
		q.signal()
	}
	return item, true, nil
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Len returns the number of items waiting for a consumer.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue and returns the items that were never handed to a
// consumer. It is safe to call more than once; later calls return nil.
func (q *Queue) Close() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)

	left := q.items
	q.items = nil
	return left
}
