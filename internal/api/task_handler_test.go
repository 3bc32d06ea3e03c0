package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanlab/taskboard/internal/api"
	"github.com/kanbanlab/taskboard/internal/api/shared"
	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
	"github.com/kanbanlab/taskboard/internal/store"
)

// authedRequest builds a request carrying an authenticated user ID, routed
// through chi so URL parameters resolve.
func authedRequest(t *testing.T, method, path string, body interface{}, userID int64) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(shared.WithUserID(req.Context(), userID))
}

func taskRouter(h *api.TaskHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/tasks", h.CreateTask)
	r.Patch("/api/tasks/reorder", h.Reorder)
	r.Get("/api/tasks/{taskID}", h.GetTask)
	r.Patch("/api/tasks/{taskID}/status", h.SetStatus)
	return r
}

func TestCreateTaskReturnsCreated(t *testing.T) {
	columnID := int64(3)
	tasks := &stubTaskService{
		createFn: func(ctx context.Context, userID int64, input service.CreateTaskInput) (*domain.Task, error) {
			require.Equal(t, int64(1), userID)
			require.NotNil(t, input.ColumnID)
			task, err := domain.NewTask(userID, input.Title, input.Description)
			require.NoError(t, err)
			task.ID = 10
			task.ColumnID = input.ColumnID
			task.Position = 4
			return task, nil
		},
	}
	router := taskRouter(api.NewTaskHandler(tasks))

	req := authedRequest(t, http.MethodPost, "/api/tasks", api.CreateTaskRequest{
		Title:    "Write release notes",
		ColumnID: &columnID,
	}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var task domain.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
	assert.Equal(t, int64(10), task.ID)
	assert.Equal(t, 4, task.Position)
}

func TestCreateTaskRejectsShortTitle(t *testing.T) {
	router := taskRouter(api.NewTaskHandler(&stubTaskService{}))

	req := authedRequest(t, http.MethodPost, "/api/tasks", api.CreateTaskRequest{Title: "ab"}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTaskMapsErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing task", store.ErrTaskNotFound, http.StatusNotFound},
		{"no access", service.ErrPermissionDenied, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := &stubTaskService{
				getFn: func(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
					return nil, tc.err
				},
			}
			router := taskRouter(api.NewTaskHandler(tasks))

			req := authedRequest(t, http.MethodGet, "/api/tasks/5", nil, 1)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestGetTaskRejectsMalformedID(t *testing.T) {
	router := taskRouter(api.NewTaskHandler(&stubTaskService{}))

	req := authedRequest(t, http.MethodGet, "/api/tasks/not-a-number", nil, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	router := taskRouter(api.NewTaskHandler(&stubTaskService{}))

	req := authedRequest(t, http.MethodPatch, "/api/tasks/5/status", api.SetStatusRequest{Status: "paused"}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReorderForwardsItems(t *testing.T) {
	var got []service.ReorderItem
	tasks := &stubTaskService{
		reorderFn: func(ctx context.Context, userID int64, items []service.ReorderItem) error {
			got = items
			return nil
		},
	}
	router := taskRouter(api.NewTaskHandler(tasks))

	pos := 2
	status := "done"
	req := authedRequest(t, http.MethodPatch, "/api/tasks/reorder", api.ReorderRequest{
		Items: []api.ReorderTaskItem{
			{ID: 5, Position: &pos, Status: &status},
			{ID: 6},
		},
	}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	require.NotNil(t, got[0].Status)
	assert.Equal(t, domain.TaskStatusDone, *got[0].Status)
	assert.Nil(t, got[1].Position)
}

func TestReorderRejectsEmptyBatch(t *testing.T) {
	router := taskRouter(api.NewTaskHandler(&stubTaskService{}))

	req := authedRequest(t, http.MethodPatch, "/api/tasks/reorder", api.ReorderRequest{}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	router := taskRouter(api.NewTaskHandler(&stubTaskService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
