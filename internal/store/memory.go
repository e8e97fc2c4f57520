package store

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/seantiz/tasksolver/internal/model"
)

// DefaultShards is the shard count used by NewMemoryStore.
const DefaultShards = 32

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)

type shard struct {
	mu      sync.RWMutex
	records map[string]*model.Record
}

// MemoryStore implements Store as a sharded, mutex-protected map. A reader
// only contends with writers whose id hashes to the same shard.
type MemoryStore struct {
	shards []*shard
}

// NewMemoryStore creates a store with DefaultShards shards.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithShards(DefaultShards)
}

// NewMemoryStoreWithShards creates a store with n shards (minimum 1).
func NewMemoryStoreWithShards(n int) *MemoryStore {
	if n < 1 {
		n = 1
	}
	s := &MemoryStore{shards: make([]*shard, n)}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*model.Record)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Create inserts a new record. It panics if id already exists.
func (s *MemoryStore) Create(id string, rec model.Record) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.records[id]; ok {
		panic(fmt.Sprintf("store: duplicate task id %q", id))
	}
	r := rec.Clone()
	sh.records[id] = &r
}

// Get returns a snapshot copy of the record for id.
func (s *MemoryStore) Get(id string) (model.Record, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	r, ok := sh.records[id]
	if !ok {
		return model.Record{}, false
	}
	return r.Clone(), true
}

// Update applies mutate to the record for id while holding the shard lock.
// It panics if id does not exist.
func (s *MemoryStore) Update(id string, mutate func(*model.Record)) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r, ok := sh.records[id]
	if !ok {
		panic(fmt.Sprintf("store: update of unknown task id %q", id))
	}
	mutate(r)
}

// Stats walks every shard and aggregates counts and the average duration of
// finished tasks. Shards are read one at a time, so the result is a
// point-in-time estimate under concurrent updates.
func (s *MemoryStore) Stats() TaskStats {
	stats := TaskStats{
		CountByStatus: make(map[model.Status]int),
		CountByKind:   make(map[model.Kind]int),
	}

	var total time.Duration
	var finished int
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, r := range sh.records {
			stats.Total++
			stats.CountByStatus[r.Status]++
			stats.CountByKind[r.Kind]++
			if r.Status.IsTerminal() {
				if d := r.Duration(); d > 0 {
					total += d
					finished++
				}
			}
		}
		sh.mu.RUnlock()
	}
	if finished > 0 {
		stats.AvgDuration = total / time.Duration(finished)
	}
	return stats
}
