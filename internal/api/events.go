package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/tasksolver/internal/model"
)

// statusEvent is the data payload of each "status" SSE event.
type statusEvent struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

func (s *Server) handleStatusEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The first status on ch is the task's current one; the channel is
	// closed after the terminal status.
	ch, unsub, ok := s.engine.Broker().Subscribe(id)
	if !ok {
		s.writeNotFound(w)
		return
	}
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("set write deadline for SSE", "error", err)
	}

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case status, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", "stream complete")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			if err := writeStatusEvent(w, id, status); err != nil {
				return // Write failed (e.g. client gone).
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return // Client disconnected.
		}
	}
}

func writeStatusEvent(w http.ResponseWriter, id string, status model.Status) error {
	data, err := json.Marshal(statusEvent{ID: id, Status: status})
	if err != nil {
		return err
	}
	return writeSSEEvent(w, "status", string(data))
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
