package store

import (
	"context"
	"database/sql"

	"github.com/kanbanlab/taskboard/internal/domain"
)

// NoteStore defines the interface for task note data persistence.
type NoteStore interface {
	// Create saves a new note and fills in its generated ID.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its unique ID, including its viewers.
	// Returns ErrNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Note, error)

	// ListVisible retrieves the notes of a task visible to the given user:
	// public notes plus private notes the user authored or received.
	ListVisible(ctx context.Context, taskID, userID int64) ([]*domain.Note, error)

	// Update persists changes to a note's content and visibility.
	// Returns ErrNoteNotFound if the note does not exist.
	Update(ctx context.Context, note *domain.Note) error

	// MarkViewed records that the user has viewed the note. Idempotent.
	// Returns ErrNoteNotFound if the note does not exist.
	MarkViewed(ctx context.Context, noteID, userID int64) error

	// CountUnread returns how many notes of a task are visible to the user
	// but not yet viewed by them, excluding the user's own notes.
	CountUnread(ctx context.Context, taskID, userID int64) (int64, error)

	// Delete removes a note by its ID.
	// Returns ErrNoteNotFound if the note does not exist.
	Delete(ctx context.Context, id int64) error

	// DeleteByTask removes all notes of a task.
	DeleteByTask(ctx context.Context, taskID int64) error

	// DeleteByBoard removes all notes of all tasks of a board.
	DeleteByBoard(ctx context.Context, boardID int64) error

	// DeleteByColumn removes all notes of all tasks of a column.
	DeleteByColumn(ctx context.Context, columnID int64) error

	// WithTx returns a NoteStore bound to the given transaction.
	WithTx(tx *sql.Tx) NoteStore
}
