package api

import (
	"net/http"

	"github.com/seantiz/tasksolver/internal/model"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Total         int                  `json:"total"`
	ByStatus      map[model.Status]int `json:"by_status"`
	ByKind        map[model.Kind]int   `json:"by_kind"`
	AvgDurationMS float64              `json:"avg_duration_ms"`
	Pending       int                  `json:"pending"`
	Running       int                  `json:"running"`
	Workers       int                  `json:"workers"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.engine.Stats()

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:         stats.Total,
		ByStatus:      stats.CountByStatus,
		ByKind:        stats.CountByKind,
		AvgDurationMS: float64(stats.AvgDuration.Microseconds()) / 1000,
		Pending:       s.engine.Pending(),
		Running:       s.engine.Running(),
		Workers:       s.engine.Workers(),
	})
}
