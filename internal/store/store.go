// Package store holds the status store: the concurrent map from task id to
// task record shared by the request layer and the worker pool.
package store

import (
	"time"

	"github.com/seantiz/tasksolver/internal/model"
)

// TaskStats holds aggregate execution statistics.
type TaskStats struct {
	Total         int                  `json:"total"`
	CountByStatus map[model.Status]int `json:"count_by_status"`
	CountByKind   map[model.Kind]int   `json:"count_by_kind"`
	AvgDuration   time.Duration        `json:"-"`
}

// Store defines the status store operations.
//
// Create and Update treat a duplicate or missing id as a broken caller
// contract and panic; every other operation is safe for concurrent use.
type Store interface {
	Create(id string, rec model.Record)
	Get(id string) (model.Record, bool)
	Update(id string, mutate func(*model.Record))
	Stats() TaskStats
}
