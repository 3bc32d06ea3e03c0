package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/events"
	"github.com/kanbanlab/taskboard/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Status and Priority fall back to their defaults when empty. When
// ColumnID is set the column's board wins over any supplied BoardID.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	BoardID     *int64
	ColumnID    *int64
}

// UpdateTaskInput carries the mutable fields of a task for a full update.
type UpdateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// ReorderItem is one entry of a bulk reorder request. Nil fields are left
// untouched on the task. BoardID only feeds the broadcast payload.
type ReorderItem struct {
	ID       int64
	Position *int
	Status   *domain.TaskStatus
	ColumnID *int64
	BoardID  *int64
}

// TaskService provides task operations, including position management.
type TaskService interface {
	// CreateTask creates a task at the end of its ordering scope: the
	// target column, or the user's tasks with the same status for tasks
	// outside any board.
	CreateTask(ctx context.Context, userID int64, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task the user may at least view.
	GetTask(ctx context.Context, userID, taskID int64) (*domain.Task, error)

	// ListBoardTasks retrieves a board's tasks in display order.
	ListBoardTasks(ctx context.Context, userID, boardID int64) ([]*domain.Task, error)

	// ListUserTasks retrieves the user's own tasks ordered by status and
	// position.
	ListUserTasks(ctx context.Context, userID int64) ([]*domain.Task, error)

	// UpdateTask replaces the mutable fields of a task.
	UpdateTask(ctx context.Context, userID, taskID int64, input UpdateTaskInput) (*domain.Task, error)

	// SetStatus changes only the task's status.
	SetStatus(ctx context.Context, userID, taskID int64, status domain.TaskStatus) (*domain.Task, error)

	// MoveToColumn moves a task to the end of another column.
	MoveToColumn(ctx context.Context, userID, taskID, columnID int64) (*domain.Task, error)

	// Reorder applies a batch of position, status, and column changes in
	// one transaction. Items referencing missing tasks are skipped, so
	// replaying the same batch is safe.
	Reorder(ctx context.Context, userID int64, items []ReorderItem) error

	// DeleteTask removes a task and its notes.
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "reorder")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It returns known sentinel errors directly without wrapping.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isPassthrough(err) {
		return err
	}
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks     store.TaskStore
	boards    store.BoardStore
	columns   store.ColumnStore
	notes     store.NoteStore
	users     store.UserStore
	runner    store.TxRunner
	perms     *PermissionEvaluator
	ordering  *OrderingEngine
	publisher events.Publisher
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	boards store.BoardStore,
	columns store.ColumnStore,
	notes store.NoteStore,
	users store.UserStore,
	runner store.TxRunner,
	perms *PermissionEvaluator,
	ordering *OrderingEngine,
	publisher events.Publisher,
	logger *slog.Logger,
) (TaskService, error) {
	for name, dep := range map[string]any{
		"tasks": tasks, "boards": boards, "columns": columns,
		"notes": notes, "users": users, "runner": runner,
		"perms": perms, "ordering": ordering, "publisher": publisher,
	} {
		if dep == nil {
			return nil, &TaskServiceError{
				Operation: "create_service",
				Message:   name + " cannot be nil",
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:     tasks,
		boards:    boards,
		columns:   columns,
		notes:     notes,
		users:     users,
		runner:    runner,
		perms:     perms,
		ordering:  ordering,
		publisher: publisher,
		logger:    logger.With("component", "task_service"),
	}, nil
}

// CreateTask assigns the next free position in the task's scope. The read
// of the current maximum and the insert run under the scope lock so two
// concurrent creates never claim the same slot.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID int64,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title, input.Description)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}
	if input.Status != "" {
		task.SetStatus(input.Status)
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	task.DueDate = input.DueDate
	task.BoardID = input.BoardID
	if err := task.Validate(); err != nil {
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}

	if input.ColumnID != nil {
		column, err := s.columns.GetByID(ctx, *input.ColumnID)
		if err != nil {
			return nil, NewTaskServiceError("create_task", "failed to load column", err)
		}
		board, err := s.boards.GetByID(ctx, column.BoardID)
		if err != nil {
			return nil, NewTaskServiceError("create_task", "failed to load board", err)
		}
		if err := s.perms.Require(ctx, board, userID, domain.PermissionEdit); err != nil {
			return nil, err
		}
		task.PlaceIn(column)

		err = s.ordering.InColumnScope(column.ID, func() error {
			return s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
				txTasks := s.tasks.WithTx(tx)
				max, err := txTasks.MaxPositionInColumn(ctx, column.ID)
				if err != nil {
					return NewTaskServiceError("create_task", "failed to read max position", err)
				}
				task.Position = max + 1
				if err := txTasks.Create(ctx, task); err != nil {
					return NewTaskServiceError("create_task", "failed to save task", err)
				}
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	} else {
		err = s.ordering.InUserStatusScope(userID, task.Status, func() error {
			return s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
				txTasks := s.tasks.WithTx(tx)
				max, err := txTasks.MaxPositionForUserStatus(ctx, userID, task.Status)
				if err != nil {
					return NewTaskServiceError("create_task", "failed to read max position", err)
				}
				task.Position = max + 1
				if err := txTasks.Create(ctx, task); err != nil {
					return NewTaskServiceError("create_task", "failed to save task", err)
				}
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	s.publisher.Publish(events.NewTaskEvent(events.TypeTaskCreated, task, s.actorName(ctx, userID)))
	return task, nil
}

// GetTask retrieves a task after a VIEW-level authorization check.
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to load task", err)
	}
	if err := s.authorize(ctx, userID, task, domain.PermissionView); err != nil {
		return nil, err
	}
	return task, nil
}

// ListBoardTasks returns a board's tasks sorted by column order and position.
func (s *taskServiceImpl) ListBoardTasks(ctx context.Context, userID, boardID int64) ([]*domain.Task, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewTaskServiceError("list_board_tasks", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionView); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, NewTaskServiceError("list_board_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// ListUserTasks returns the user's own tasks.
func (s *taskServiceImpl) ListUserTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewTaskServiceError("list_user_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// UpdateTask replaces the task's mutable fields. Status changes go through
// SetStatus so completion stamping stays consistent.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID int64,
	input UpdateTaskInput,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("update_task", "failed to load task", err)
	}
	if err := s.authorize(ctx, userID, task, domain.PermissionEdit); err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = input.DueDate
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Status != "" && input.Status != task.Status {
		task.SetStatus(input.Status)
	}
	if err := task.Validate(); err != nil {
		return nil, NewTaskServiceError("update_task", "invalid task", err)
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	s.publisher.Publish(events.NewTaskEvent(events.TypeTaskUpdated, task, s.actorName(ctx, userID)))
	return task, nil
}

// SetStatus changes only the status of a task.
func (s *taskServiceImpl) SetStatus(
	ctx context.Context,
	userID, taskID int64,
	status domain.TaskStatus,
) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, NewTaskServiceError("set_status", "invalid status", domain.ErrInvalidStatus)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("set_status", "failed to load task", err)
	}
	if err := s.authorize(ctx, userID, task, domain.PermissionEdit); err != nil {
		return nil, err
	}

	task.SetStatus(status)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("set_status", "failed to save task", err)
	}

	s.publisher.Publish(events.NewTaskEvent(events.TypeTaskUpdated, task, s.actorName(ctx, userID)))
	return task, nil
}

// MoveToColumn places the task at the end of the target column. The
// column's board replaces the task's board.
func (s *taskServiceImpl) MoveToColumn(
	ctx context.Context,
	userID, taskID, columnID int64,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("move_task", "failed to load task", err)
	}
	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, NewTaskServiceError("move_task", "failed to load column", err)
	}
	board, err := s.boards.GetByID(ctx, column.BoardID)
	if err != nil {
		return nil, NewTaskServiceError("move_task", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionEdit); err != nil {
		return nil, err
	}

	task.PlaceIn(column)
	err = s.ordering.InColumnScope(column.ID, func() error {
		return s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			txTasks := s.tasks.WithTx(tx)
			max, err := txTasks.MaxPositionInColumn(ctx, column.ID)
			if err != nil {
				return NewTaskServiceError("move_task", "failed to read max position", err)
			}
			task.Position = max + 1
			if err := txTasks.Update(ctx, task); err != nil {
				return NewTaskServiceError("move_task", "failed to save task", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.NewTaskEvent(events.TypeTaskUpdated, task, s.actorName(ctx, userID)))
	return task, nil
}

// Reorder applies every item in one transaction. Positions are absolute,
// so applying a batch a second time lands in the same state. Items whose
// task has disappeared are skipped rather than failing the batch.
func (s *taskServiceImpl) Reorder(ctx context.Context, userID int64, items []ReorderItem) error {
	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txColumns := s.columns.WithTx(tx)
		txPerms := s.perms.WithTx(tx)

		for _, item := range items {
			task, err := txTasks.GetByID(ctx, item.ID)
			if err != nil {
				if errors.Is(err, store.ErrTaskNotFound) {
					s.logger.Debug("reorder item skipped, task gone",
						"task_id", item.ID)
					continue
				}
				return NewTaskServiceError("reorder", "failed to load task", err)
			}
			if err := s.authorizeTx(ctx, tx, txPerms, userID, task, domain.PermissionEdit); err != nil {
				return err
			}

			if item.Status != nil && *item.Status != task.Status {
				task.SetStatus(*item.Status)
			}
			if item.ColumnID != nil {
				column, err := txColumns.GetByID(ctx, *item.ColumnID)
				if err != nil {
					return NewTaskServiceError("reorder", "failed to load column", err)
				}
				task.PlaceIn(column)
			}
			if item.Position != nil {
				task.Position = *item.Position
			}
			if err := txTasks.Update(ctx, task); err != nil {
				return NewTaskServiceError("reorder", "failed to save task", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	boardID := int64(-1)
	for _, item := range items {
		if item.BoardID != nil {
			boardID = *item.BoardID
			break
		}
	}
	s.publisher.Publish(events.NewTasksReordered(boardID))
	return nil
}

// DeleteTask removes the task and its notes in one transaction.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID int64) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return NewTaskServiceError("delete_task", "failed to load task", err)
	}
	if err := s.authorize(ctx, userID, task, domain.PermissionEdit); err != nil {
		return err
	}

	err = s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.notes.WithTx(tx).DeleteByTask(ctx, taskID); err != nil {
			return NewTaskServiceError("delete_task", "failed to delete notes", err)
		}
		if err := s.tasks.WithTx(tx).Delete(ctx, taskID); err != nil {
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(events.NewTaskDeleted(taskID))
	s.publisher.Publish(events.NewTaskDeletedBy(taskID, s.actorName(ctx, userID)))
	return nil
}

// authorize checks access to a task: board tasks go through the board's
// permission lattice, personal tasks are visible to their owner only.
func (s *taskServiceImpl) authorize(
	ctx context.Context,
	userID int64,
	task *domain.Task,
	required domain.SharePermission,
) error {
	if task.BoardID == nil {
		if task.UserID != userID {
			return ErrPermissionDenied
		}
		return nil
	}

	board, err := s.boards.GetByID(ctx, *task.BoardID)
	if err != nil {
		return NewTaskServiceError("authorize", "failed to load board", err)
	}
	return s.perms.Require(ctx, board, userID, required)
}

// authorizeTx is authorize with all reads bound to tx.
func (s *taskServiceImpl) authorizeTx(
	ctx context.Context,
	tx *sql.Tx,
	txPerms *PermissionEvaluator,
	userID int64,
	task *domain.Task,
	required domain.SharePermission,
) error {
	if task.BoardID == nil {
		if task.UserID != userID {
			return ErrPermissionDenied
		}
		return nil
	}

	board, err := s.boards.WithTx(tx).GetByID(ctx, *task.BoardID)
	if err != nil {
		return NewTaskServiceError("authorize", "failed to load board", err)
	}
	return txPerms.Require(ctx, board, userID, required)
}

func (s *taskServiceImpl) actorName(ctx context.Context, userID int64) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve actor name",
			"error", err,
			"user_id", userID)
		return ""
	}
	return user.DisplayName()
}
