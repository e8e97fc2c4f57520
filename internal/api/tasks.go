package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/tasksolver/internal/engine"
	"github.com/seantiz/tasksolver/internal/model"
)

var (
	errMissingID   = errors.New("id is required")
	errInvalidBody = errors.New("invalid JSON body")
)

// createTaskRequest is the JSON body for POST /create_task. File holds the
// script source for python tasks and the base64 executable for bin tasks.
type createTaskRequest struct {
	Type string `json:"type"`
	File string `json:"file"`
	Args string `json:"args"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type statusRequest struct {
	ID string `json:"id"`
}

type statusMeta struct {
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type statusResult struct {
	Stdout string  `json:"stdout"`
	Stderr *string `json:"stderr,omitempty"`
}

type statusResponse struct {
	Status model.Status `json:"status"`
	Meta   statusMeta   `json:"meta"`
	Result statusResult `json:"result"`
}

type taskCountResponse struct {
	Tasks int `json:"tasks"`
}

func newStatusResponse(rec model.Record) statusResponse {
	return statusResponse{
		Status: rec.Status,
		Meta: statusMeta{
			CreatedAt:  rec.CreatedAt,
			StartedAt:  rec.StartedAt,
			FinishedAt: rec.FinishedAt,
		},
		Result: statusResult{
			Stdout: rec.Stdout,
			Stderr: rec.Stderr,
		},
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observeCreateTask("", http.StatusBadRequest)
		s.writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}

	kind, err := model.ParseKind(req.Type)
	if err != nil {
		observeCreateTask(req.Type, http.StatusBadRequest)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.engine.Submit(r.Context(), model.Request{
		Kind:      kind,
		Payload:   req.File,
		Arguments: req.Args,
	})
	switch {
	case errors.Is(err, model.ErrUnknownKind):
		observeCreateTask(req.Type, http.StatusBadRequest)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, engine.ErrShuttingDown):
		observeCreateTask(req.Type, http.StatusServiceUnavailable)
		s.writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	case err != nil:
		observeCreateTask(req.Type, http.StatusInternalServerError)
		s.logger.Error("submit task", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	observeCreateTask(req.Type, http.StatusOK)
	s.writeJSON(w, http.StatusOK, createTaskResponse{ID: id})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.engine.Status(id)
	if errors.Is(err, engine.ErrNotFound) {
		s.writeNotFound(w)
		return
	}
	if err != nil {
		s.logger.Error("get status", "task_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get status")
		return
	}

	s.writeJSON(w, http.StatusOK, newStatusResponse(rec))
}

func (s *Server) handleGetTaskCount(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, taskCountResponse{Tasks: s.engine.Pending()})
}

// writeNotFound reports an unknown task id with the NOT_FOUND status.
func (s *Server) writeNotFound(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusNotFound, map[string]string{
		"error":  "task not found",
		"status": string(model.StatusNotFound),
	})
}

// taskID reads the task id from the path, the id query parameter or a JSON
// body of the form {"id": "..."}, in that order.
func taskID(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := chi.URLParam(r, "id"); id != "" {
		return id, nil
	}
	if id := r.URL.Query().Get("id"); id != "" {
		return id, nil
	}

	var req statusRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", errMissingID
		}
		return "", errInvalidBody
	}
	if req.ID == "" {
		return "", errMissingID
	}
	return req.ID, nil
}
