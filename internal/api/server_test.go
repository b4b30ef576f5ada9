package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Add1ct1ve/CalWid/internal/calendar"
	"github.com/Add1ct1ve/CalWid/internal/snapshot"
	"github.com/Add1ct1ve/CalWid/internal/tasks"
)

type stubProvider struct {
	snap   *snapshot.Snapshot
	report snapshot.Report
	err    error
	cached *snapshot.Snapshot
}

func (s *stubProvider) Refresh(ctx context.Context) (*snapshot.Snapshot, snapshot.Report, error) {
	return s.snap, s.report, s.err
}

func (s *stubProvider) Cached() *snapshot.Snapshot {
	return s.cached
}

type stubCompleter struct {
	taskID     string
	tasklistID string
	err        error
}

func (s *stubCompleter) Complete(ctx context.Context, taskID, tasklistID string) error {
	s.taskID = taskID
	s.tasklistID = tasklistID
	return s.err
}

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Events: []calendar.Event{{ID: "ev-1", Title: "Standup"}},
		Tasks:  []tasks.Task{{ID: "t-1", Title: "Buy stamps", TasklistID: "list-todo"}},
	}
}

func TestHandleData_Fresh(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot()}
	srv := NewServer("127.0.0.1:0", provider, &stubCompleter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Events []calendar.Event `json:"events"`
		Tasks  []tasks.Task     `json:"tasks"`
		Stale  bool             `json:"stale"`
		Errors []string         `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 1)
	assert.Len(t, resp.Tasks, 1)
	assert.False(t, resp.Stale)
	assert.Empty(t, resp.Errors)
}

func TestHandleData_StaleFallback(t *testing.T) {
	provider := &stubProvider{
		snap:   testSnapshot(),
		report: snapshot.Report{Tasks: snapshot.Outcome{Err: errors.New("tasks api down")}},
	}
	srv := NewServer("127.0.0.1:0", provider, &stubCompleter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	require.Equal(t, http.StatusOK, rec.Code, "cached fallback still serves data")
	var resp struct {
		Stale  bool     `json:"stale"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Stale)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "tasks api down")
}

func TestHandleData_ColdCacheFailure(t *testing.T) {
	provider := &stubProvider{
		snap: &snapshot.Snapshot{Events: []calendar.Event{}, Tasks: []tasks.Task{}},
		err:  fmt.Errorf("refresh failed with no cached snapshot"),
	}
	srv := NewServer("127.0.0.1:0", provider, &stubCompleter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleCached(t *testing.T) {
	provider := &stubProvider{cached: testSnapshot()}
	srv := NewServer("127.0.0.1:0", provider, &stubCompleter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cached", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Events, 1)
}

func TestHandleCompleteTask(t *testing.T) {
	completer := &stubCompleter{}
	srv := NewServer("127.0.0.1:0", &stubProvider{}, completer)

	body := bytes.NewBufferString(`{"task_id":"t-1","tasklist_id":"list-todo"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/complete", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t-1", completer.taskID)
	assert.Equal(t, "list-todo", completer.tasklistID)
}

func TestHandleCompleteTask_Validation(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &stubProvider{}, &stubCompleter{})

	for name, body := range map[string]string{
		"missing task_id":     `{"tasklist_id":"list-todo"}`,
		"missing tasklist_id": `{"task_id":"t-1"}`,
		"invalid json":        `{not json`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/tasks/complete", bytes.NewBufferString(body))
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleCompleteTask_ProviderError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("task not found")}
	srv := NewServer("127.0.0.1:0", &stubProvider{}, completer)

	body := bytes.NewBufferString(`{"task_id":"t-x","tasklist_id":"list-todo"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/complete", body))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &stubProvider{}, &stubCompleter{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/data", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
