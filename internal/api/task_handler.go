package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kanbanlab/taskboard/internal/api/shared"
	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
)

// TaskHandler handles task HTTP requests, including the bulk reorder
// endpoint used by drag-and-drop clients.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// ListUserTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListUserTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	tasks, err := h.taskService.ListUserTasks(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ListBoardTasks handles GET /api/boards/{boardID}/tasks requests.
func (h *TaskHandler) ListBoardTasks(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListBoardTasks(r.Context(), userID, boardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks requests. The new task lands at the
// end of its column, or of the user's same-status list when no column is
// given.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		BoardID:     req.BoardID,
		ColumnID:    req.ColumnID,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /api/tasks/{taskID} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/{taskID} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// SetStatus handles PATCH /api/tasks/{taskID}/status requests.
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	status := domain.TaskStatus(req.Status)
	if !status.IsValid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
		return
	}

	task, err := h.taskService.SetStatus(r.Context(), userID, taskID, status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// MoveToColumn handles PATCH /api/tasks/{taskID}/column requests. The task
// lands at the end of the target column.
func (h *TaskHandler) MoveToColumn(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.MoveToColumn(r.Context(), userID, taskID, req.ColumnID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Reorder handles PATCH /api/tasks/reorder requests. Entries referencing
// tasks that no longer exist are skipped, so clients may safely retry the
// same payload.
func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req ReorderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	items := make([]service.ReorderItem, 0, len(req.Items))
	for _, entry := range req.Items {
		item := service.ReorderItem{
			ID:       entry.ID,
			Position: entry.Position,
			ColumnID: entry.ColumnID,
			BoardID:  entry.BoardID,
		}
		if entry.Status != nil {
			status := domain.TaskStatus(*entry.Status)
			if !status.IsValid() {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
				return
			}
			item.Status = &status
		}
		items = append(items, item)
	}

	if err := h.taskService.Reorder(r.Context(), userID, items); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask handles DELETE /api/tasks/{taskID} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
