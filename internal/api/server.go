package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Add1ct1ve/CalWid/internal/logger"
	"github.com/Add1ct1ve/CalWid/internal/snapshot"
)

// SnapshotProvider serves the widget's data view.
type SnapshotProvider interface {
	Refresh(ctx context.Context) (*snapshot.Snapshot, snapshot.Report, error)
	Cached() *snapshot.Snapshot
}

// TaskCompleter marks a task completed at the provider.
type TaskCompleter interface {
	Complete(ctx context.Context, taskID, tasklistID string) error
}

// Server exposes the snapshot cache over a local HTTP listener so the
// widget process polls data instead of talking to Google itself.
type Server struct {
	provider  SnapshotProvider
	completer TaskCompleter
	http      *http.Server
}

// NewServer creates the API server on the given listen address.
func NewServer(listen string, provider SnapshotProvider, completer TaskCompleter) *Server {
	s := &Server{provider: provider, completer: completer}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("GET /api/cached", s.handleCached)
	mux.HandleFunc("POST /api/tasks/complete", s.handleCompleteTask)

	s.http = &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // a refresh can wait on two upstream APIs
	}
	return s
}

// ListenAndServe blocks serving requests until the context is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// dataResponse wraps a snapshot with the refresh outcome so clients can
// tell fresh data from a cached fallback.
type dataResponse struct {
	*snapshot.Snapshot
	Stale  bool     `json:"stale"`
	Errors []string `json:"errors,omitempty"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, report, err := s.provider.Refresh(r.Context())
	if err != nil {
		// Nothing cached and the refresh failed: no data to serve.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := dataResponse{Snapshot: snap, Stale: !report.Fresh()}
	if !report.Events.OK() {
		resp.Errors = append(resp.Errors, report.Events.Err.Error())
	}
	if !report.Tasks.OK() {
		resp.Errors = append(resp.Errors, report.Tasks.Err.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCached(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.provider.Cached())
}

type completeTaskRequest struct {
	TaskID     string `json:"task_id"`
	TasklistID string `json:"tasklist_id"`
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req completeTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TaskID == "" || req.TasklistID == "" {
		writeError(w, http.StatusBadRequest, "task_id and tasklist_id are required")
		return
	}

	if err := s.completer.Complete(r.Context(), req.TaskID, req.TasklistID); err != nil {
		logger.Error("failed to complete task", "task", req.TaskID, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		logger.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
