package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, board_id, column_id, user_id, title, description,
	status, priority, "position", due_date, created_at, completed_at`

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (board_id, column_id, user_id, title, description,
			status, priority, "position", due_date, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		task.BoardID,
		task.ColumnID,
		task.UserID,
		task.Title,
		nullIfEmpty(task.Description),
		task.Status,
		task.Priority,
		task.Position,
		task.DueDate,
		task.CreatedAt,
		task.CompletedAt,
	).Scan(&task.ID)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var task domain.Task
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.BoardID,
		&task.ColumnID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&task.Position,
		&task.DueDate,
		&task.CreatedAt,
		&task.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	task.Description = description.String

	return &task, nil
}

// ListByBoard implements store.TaskStore.ListByBoard.
// Tasks come back sorted by column order, then position; tasks without a
// column, or without a position, sort last within their group.
func (s *PostgresTaskStore) ListByBoard(ctx context.Context, boardID int64) ([]*domain.Task, error) {
	query := `
		SELECT t.id, t.board_id, t.column_id, t.user_id, t.title, t.description,
			t.status, t.priority, t."position", t.due_date, t.created_at, t.completed_at
		FROM tasks t
		LEFT JOIN board_columns c ON c.id = t.column_id
		WHERE t.board_id = $1
		ORDER BY c.ordinal ASC NULLS LAST, t."position" ASC, t.id ASC
	`

	return s.queryTasks(ctx, query, boardID)
}

// ListByUser implements store.TaskStore.ListByUser using the legacy
// (status, position) display ordering.
func (s *PostgresTaskStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY status ASC, "position" ASC, id ASC
	`

	return s.queryTasks(ctx, query, userID)
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET board_id = $1, column_id = $2, title = $3, description = $4,
			status = $5, priority = $6, "position" = $7, due_date = $8,
			completed_at = $9
		WHERE id = $10
	`

	result, err := s.db.ExecContext(ctx, query,
		task.BoardID,
		task.ColumnID,
		task.Title,
		nullIfEmpty(task.Description),
		task.Status,
		task.Priority,
		task.Position,
		task.DueDate,
		task.CompletedAt,
		task.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// DeleteByBoard implements store.TaskStore.DeleteByBoard
func (s *PostgresTaskStore) DeleteByBoard(ctx context.Context, boardID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE board_id = $1`, boardID)
	return MapError(err)
}

// DeleteByColumn implements store.TaskStore.DeleteByColumn
func (s *PostgresTaskStore) DeleteByColumn(ctx context.Context, columnID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE column_id = $1`, columnID)
	return MapError(err)
}

// MaxPositionInColumn implements store.TaskStore.MaxPositionInColumn
func (s *PostgresTaskStore) MaxPositionInColumn(ctx context.Context, columnID int64) (int, error) {
	query := `SELECT COALESCE(MAX("position"), 0) FROM tasks WHERE column_id = $1`

	var max int
	if err := s.db.QueryRowContext(ctx, query, columnID).Scan(&max); err != nil {
		return 0, MapError(err)
	}

	return max, nil
}

// MaxPositionForUserStatus implements store.TaskStore.MaxPositionForUserStatus
func (s *PostgresTaskStore) MaxPositionForUserStatus(
	ctx context.Context,
	userID int64,
	status domain.TaskStatus,
) (int, error) {
	query := `
		SELECT COALESCE(MAX("position"), 0)
		FROM tasks
		WHERE user_id = $1 AND status = $2 AND column_id IS NULL
	`

	var max int
	if err := s.db.QueryRowContext(ctx, query, userID, status).Scan(&max); err != nil {
		return 0, MapError(err)
	}

	return max, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		var description sql.NullString
		if err := rows.Scan(
			&task.ID,
			&task.BoardID,
			&task.ColumnID,
			&task.UserID,
			&task.Title,
			&description,
			&task.Status,
			&task.Priority,
			&task.Position,
			&task.DueDate,
			&task.CreatedAt,
			&task.CompletedAt,
		); err != nil {
			return nil, MapError(err)
		}
		task.Description = description.String
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
