package engine

import (
	"sync"

	"github.com/seantiz/tasksolver/internal/model"
)

// A task emits at most WAIT, RUNNING and one terminal status, so a
// subscriber buffer of this size can never fill.
const subscriberBufferSize = 4

// StatusLookup reports the stored status of a task. The broker falls back to
// it for tasks it holds no live topic for.
type StatusLookup func(taskID string) (model.Status, bool)

// StatusBroker streams the lifecycle of live tasks to subscribers.
//
// A topic exists from the task's first published status until its terminal
// one; publishing a terminal status delivers it, closes every subscriber and
// drops the topic. Statuses that do not advance the task along
// model.ValidTransition are discarded, so subscribers see each status at most
// once and in lifecycle order.
type StatusBroker struct {
	mu     sync.Mutex
	topics map[string]*statusTopic
	lookup StatusLookup
}

type statusTopic struct {
	last   model.Status
	subs   map[int]chan model.Status
	nextID int
}

// NewStatusBroker creates a broker. lookup answers subscriptions to tasks
// without a live topic (finished or not yet published); it may be nil.
func NewStatusBroker(lookup StatusLookup) *StatusBroker {
	return &StatusBroker{
		topics: make(map[string]*statusTopic),
		lookup: lookup,
	}
}

// Subscribe returns a channel that first yields the task's current status,
// then every later transition, and is closed after the terminal one. ok is
// false when the task is unknown.
func (b *StatusBroker) Subscribe(taskID string) (ch <-chan model.Status, unsubscribe func(), ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(chan model.Status, subscriberBufferSize)

	t, live := b.topics[taskID]
	if !live {
		if b.lookup == nil {
			return nil, func() {}, false
		}
		status, found := b.lookup(taskID)
		if !found {
			return nil, func() {}, false
		}
		out <- status
		if status.IsTerminal() {
			close(out)
			return out, func() {}, true
		}
		// Recorded but not yet published: open the topic at the stored
		// status so the pending publish is accepted or deduplicated.
		t = b.openTopic(taskID, status)
	} else {
		out <- t.last
	}

	id := t.nextID
	t.nextID++
	t.subs[id] = out

	return out, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(t.subs, id)
	}, true
}

// Publish records status as the task's latest and delivers it. A terminal
// status also closes the topic.
func (b *StatusBroker) Publish(taskID string, status model.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, live := b.topics[taskID]
	if !live {
		if status.IsTerminal() {
			// Nobody can be listening and late subscribers read the store.
			return
		}
		b.openTopic(taskID, status)
		return
	}
	if !model.ValidTransition(t.last, status) {
		return
	}

	t.last = status
	for _, ch := range t.subs {
		ch <- status
	}

	if status.IsTerminal() {
		for id, ch := range t.subs {
			close(ch)
			delete(t.subs, id)
		}
		delete(b.topics, taskID)
	}
}

// Live returns the number of tasks with an open topic.
func (b *StatusBroker) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics)
}

func (b *StatusBroker) openTopic(taskID string, status model.Status) *statusTopic {
	t := &statusTopic{last: status, subs: make(map[int]chan model.Status)}
	b.topics[taskID] = t
	return t
}
