package domain

import (
	"fmt"
	"time"
)

// Task-specific validation errors, all wrapping ErrValidation.
var (
	// ErrTaskTitleLength is returned when a task title is shorter than 3 or
	// longer than 150 characters.
	ErrTaskTitleLength = fmt.Errorf("%w: task title must be between 3 and 150 characters", ErrValidation)

	// ErrTaskDescriptionLength is returned when a task description exceeds
	// 2000 characters.
	ErrTaskDescriptionLength = fmt.Errorf("%w: task description must be at most 2000 characters", ErrValidation)

	// ErrTaskUserEmpty is returned when a task has no owning user.
	ErrTaskUserEmpty = fmt.Errorf("%w: task user cannot be empty", ErrValidation)
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task statuses.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether the status is one of the recognized values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the importance of a task.
type TaskPriority string

// Possible task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether the priority is one of the recognized values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work, optionally placed on a board column. Position is a
// display rank within its scope: the column when ColumnID is set, otherwise
// the legacy (user, status) pair. If ColumnID is set, BoardID always equals
// the column's board.
type Task struct {
	ID          int64        `json:"id"`
	BoardID     *int64       `json:"board_id,omitempty"`
	ColumnID    *int64       `json:"column_id,omitempty"`
	UserID      int64        `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Position    int          `json:"position"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewTask creates a new Task for the given user with default status and
// priority. Position is assigned later by the ordering engine.
// Returns an error if validation fails.
func NewTask(userID int64, title, description string) (*Task, error) {
	task := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      TaskStatusPending,
		Priority:    TaskPriorityNormal,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.UserID == 0 {
		return ErrTaskUserEmpty
	}

	if len(t.Title) < 3 || len(t.Title) > 150 {
		return ErrTaskTitleLength
	}

	if len(t.Description) > 2000 {
		return ErrTaskDescriptionLength
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	return nil
}

// SetStatus updates the task status. Moving to done stamps CompletedAt.
// Moving away from done deliberately leaves the stamp in place: the last
// completion time stays visible even after a task is reopened.
func (t *Task) SetStatus(status TaskStatus) {
	t.Status = status
	if status == TaskStatusDone {
		now := time.Now().UTC()
		t.CompletedAt = &now
	}
}

// PlaceIn assigns the task to a column, forcing the board to the column's
// board so the two never disagree.
func (t *Task) PlaceIn(column *Column) {
	t.ColumnID = &column.ID
	t.BoardID = &column.BoardID
}
