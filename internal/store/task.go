package store

import (
	"context"
	"database/sql"

	"github.com/kanbanlab/taskboard/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task and fills in its generated ID. Position
	// assignment is the ordering engine's job; Create stores whatever
	// position the task carries.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListByBoard retrieves the tasks of a board sorted by column order,
	// then by position. Tasks without a column sort last.
	ListByBoard(ctx context.Context, boardID int64) ([]*domain.Task, error)

	// ListByUser retrieves all tasks owned by a user sorted by status,
	// then by position (the legacy display ordering).
	ListByUser(ctx context.Context, userID int64) ([]*domain.Task, error)

	// Update persists changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID. Callers delete the task's notes
	// first, within the same transaction.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// DeleteByBoard removes all tasks of a board.
	DeleteByBoard(ctx context.Context, boardID int64) error

	// DeleteByColumn removes all tasks of a column.
	DeleteByColumn(ctx context.Context, columnID int64) error

	// MaxPositionInColumn returns the highest position among tasks in the
	// given column, or 0 when the column holds no tasks.
	MaxPositionInColumn(ctx context.Context, columnID int64) (int, error)

	// MaxPositionForUserStatus returns the highest position among a user's
	// tasks with the given status (the legacy scope), or 0 when none exist.
	MaxPositionForUserStatus(ctx context.Context, userID int64, status domain.TaskStatus) (int, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
