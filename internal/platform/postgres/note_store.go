package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/store"
)

// PostgresNoteStore implements the store.NoteStore interface
// using a PostgreSQL database as the storage backend. Note viewers live in
// the note_views join table and are folded into Note.ViewedBy on reads.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the
// NoteStore interface. If logger is nil, a default logger will be used.
func NewPostgresNoteStore(db store.DBTX, logger *slog.Logger) *PostgresNoteStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore interface
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// Create implements store.NoteStore.Create
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.Note) error {
	query := `
		INSERT INTO task_notes (task_id, author_id, content, is_public, recipient_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		note.TaskID,
		note.AuthorID,
		note.Content,
		note.IsPublic,
		note.RecipientID,
		note.CreatedAt,
	).Scan(&note.ID)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.NoteStore.GetByID
func (s *PostgresNoteStore) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	query := `
		SELECT id, task_id, author_id, content, is_public, recipient_id, created_at
		FROM task_notes
		WHERE id = $1
	`

	var note domain.Note
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.TaskID,
		&note.AuthorID,
		&note.Content,
		&note.IsPublic,
		&note.RecipientID,
		&note.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNoteNotFound
		}
		return nil, MapError(err)
	}

	viewers, err := s.viewersByNote(ctx, `SELECT note_id, user_id FROM note_views WHERE note_id = $1`, id)
	if err != nil {
		return nil, err
	}
	note.ViewedBy = viewers[note.ID]

	return &note, nil
}

// ListVisible implements store.NoteStore.ListVisible
func (s *PostgresNoteStore) ListVisible(ctx context.Context, taskID, userID int64) ([]*domain.Note, error) {
	query := `
		SELECT id, task_id, author_id, content, is_public, recipient_id, created_at
		FROM task_notes
		WHERE task_id = $1
			AND (is_public OR author_id = $2 OR recipient_id = $2)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var notes []*domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(
			&note.ID,
			&note.TaskID,
			&note.AuthorID,
			&note.Content,
			&note.IsPublic,
			&note.RecipientID,
			&note.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		notes = append(notes, &note)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	viewers, err := s.viewersByNote(ctx, `
		SELECT v.note_id, v.user_id
		FROM note_views v
		JOIN task_notes n ON n.id = v.note_id
		WHERE n.task_id = $1
	`, taskID)
	if err != nil {
		return nil, err
	}
	for _, note := range notes {
		note.ViewedBy = viewers[note.ID]
	}

	return notes, nil
}

// Update implements store.NoteStore.Update
func (s *PostgresNoteStore) Update(ctx context.Context, note *domain.Note) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE task_notes
		SET content = $1, is_public = $2, recipient_id = $3
		WHERE id = $4
	`, note.Content, note.IsPublic, note.RecipientID, note.ID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrNoteNotFound)
}

// MarkViewed implements store.NoteStore.MarkViewed
func (s *PostgresNoteStore) MarkViewed(ctx context.Context, noteID, userID int64) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM task_notes WHERE id = $1)`, noteID,
	).Scan(&exists)
	if err != nil {
		return MapError(err)
	}
	if !exists {
		return store.ErrNoteNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO note_views (note_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (note_id, user_id) DO NOTHING
	`, noteID, userID)
	return MapError(err)
}

// CountUnread implements store.NoteStore.CountUnread
func (s *PostgresNoteStore) CountUnread(ctx context.Context, taskID, userID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM task_notes n
		WHERE n.task_id = $1
			AND n.author_id <> $2
			AND (n.is_public OR n.recipient_id = $2)
			AND NOT EXISTS (
				SELECT 1 FROM note_views v
				WHERE v.note_id = n.id AND v.user_id = $2
			)
	`

	var count int64
	if err := s.db.QueryRowContext(ctx, query, taskID, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// Delete implements store.NoteStore.Delete
func (s *PostgresNoteStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM note_views WHERE note_id = $1`, id); err != nil {
		return MapError(err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM task_notes WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrNoteNotFound)
}

// DeleteByTask implements store.NoteStore.DeleteByTask
func (s *PostgresNoteStore) DeleteByTask(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM note_views
		WHERE note_id IN (SELECT id FROM task_notes WHERE task_id = $1)
	`, taskID)
	if err != nil {
		return MapError(err)
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM task_notes WHERE task_id = $1`, taskID)
	return MapError(err)
}

// DeleteByBoard implements store.NoteStore.DeleteByBoard
func (s *PostgresNoteStore) DeleteByBoard(ctx context.Context, boardID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM note_views
		WHERE note_id IN (
			SELECT n.id FROM task_notes n
			JOIN tasks t ON t.id = n.task_id
			WHERE t.board_id = $1
		)
	`, boardID)
	if err != nil {
		return MapError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM task_notes
		WHERE task_id IN (SELECT id FROM tasks WHERE board_id = $1)
	`, boardID)
	return MapError(err)
}

// DeleteByColumn implements store.NoteStore.DeleteByColumn
func (s *PostgresNoteStore) DeleteByColumn(ctx context.Context, columnID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM note_views
		WHERE note_id IN (
			SELECT n.id FROM task_notes n
			JOIN tasks t ON t.id = n.task_id
			WHERE t.column_id = $1
		)
	`, columnID)
	if err != nil {
		return MapError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM task_notes
		WHERE task_id IN (SELECT id FROM tasks WHERE column_id = $1)
	`, columnID)
	return MapError(err)
}

// WithTx implements store.NoteStore.WithTx
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{db: tx, logger: s.logger}
}

func (s *PostgresNoteStore) viewersByNote(ctx context.Context, query string, arg any) (map[int64][]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	viewers := make(map[int64][]int64)
	for rows.Next() {
		var noteID, userID int64
		if err := rows.Scan(&noteID, &userID); err != nil {
			return nil, MapError(err)
		}
		viewers[noteID] = append(viewers[noteID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return viewers, nil
}
