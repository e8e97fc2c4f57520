package engine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seantiz/tasksolver/internal/model"
	"github.com/seantiz/tasksolver/internal/queue"
)

// trackedQueues holds the queues of running engines; queue depth is read
// from them at scrape time.
var trackedQueues sync.Map // *queue.Queue -> struct{}

func trackQueue(q *queue.Queue)   { trackedQueues.Store(q, struct{}{}) }
func untrackQueue(q *queue.Queue) { trackedQueues.Delete(q) }

func trackedDepth() float64 {
	var n int
	trackedQueues.Range(func(k, _ any) bool {
		n += k.(*queue.Queue).Len()
		return true
	})
	return float64(n)
}

var (
	tasksSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksolver_tasks_submitted_total",
			Help: "Total number of tasks accepted by the engine.",
		},
		[]string{"kind"},
	)

	tasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksolver_tasks_processed_total",
			Help: "Total number of tasks that reached a terminal state.",
		},
		[]string{"kind", "status"},
	)

	tasksRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksolver_tasks_running",
			Help: "Number of tasks currently held by a worker.",
		},
	)

	queueDepth = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tasksolver_queue_depth",
			Help: "Number of tasks waiting in the queue for a worker.",
		},
		trackedDepth,
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksolver_task_duration_seconds",
			Help:    "Execution time from running to terminal state, in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(tasksSubmitted)
	prometheus.MustRegister(tasksProcessed)
	prometheus.MustRegister(tasksRunning)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(taskDuration)

	// Pre-initialize label combinations so they appear in /metrics with
	// value 0 from startup.
	for _, k := range []model.Kind{model.KindScript, model.KindBinary} {
		tasksSubmitted.WithLabelValues(string(k))
		tasksProcessed.WithLabelValues(string(k), string(model.StatusSuccess))
		tasksProcessed.WithLabelValues(string(k), string(model.StatusFailed))
	}
}
