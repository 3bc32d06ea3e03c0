package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/events"
	"github.com/kanbanlab/taskboard/internal/store"
)

// NoteService provides task note operations. Notes live on tasks; private
// notes are visible only to their author and recipient.
type NoteService interface {
	// AddNote attaches a note to a task the user can view.
	AddNote(ctx context.Context, userID, taskID int64, content string, isPublic bool, recipientID *int64) (*domain.Note, error)

	// ListNotes retrieves the notes of a task that are visible to the
	// user, oldest first.
	ListNotes(ctx context.Context, userID, taskID int64) ([]*domain.Note, error)

	// UpdateNote changes a note's content and visibility. Author only.
	UpdateNote(ctx context.Context, userID, noteID int64, content string, isPublic bool, recipientID *int64) (*domain.Note, error)

	// DeleteNote removes a note. Author only.
	DeleteNote(ctx context.Context, userID, noteID int64) error

	// MarkViewed records that the user has seen the note. Idempotent.
	MarkViewed(ctx context.Context, userID, noteID int64) error

	// CountUnread reports how many of a task's notes the user has not
	// seen yet. The user's own notes never count.
	CountUnread(ctx context.Context, userID, taskID int64) (int64, error)
}

// NoteServiceError wraps errors from the note service with context.
type NoteServiceError struct {
	// Operation is the operation that failed (e.g., "add_note")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for NoteServiceError.
func (e *NoteServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("note service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("note service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *NoteServiceError) Unwrap() error {
	return e.Err
}

// NewNoteServiceError creates a new NoteServiceError.
// It returns known sentinel errors directly without wrapping.
func NewNoteServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isPassthrough(err) {
		return err
	}
	return &NoteServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// noteServiceImpl implements the NoteService interface
type noteServiceImpl struct {
	notes     store.NoteStore
	tasks     store.TaskStore
	boards    store.BoardStore
	runner    store.TxRunner
	perms     *PermissionEvaluator
	publisher events.Publisher
	logger    *slog.Logger
}

// NewNoteService creates a new NoteService.
// It returns an error if any of the required dependencies are nil.
func NewNoteService(
	notes store.NoteStore,
	tasks store.TaskStore,
	boards store.BoardStore,
	runner store.TxRunner,
	perms *PermissionEvaluator,
	publisher events.Publisher,
	logger *slog.Logger,
) (NoteService, error) {
	for name, dep := range map[string]any{
		"notes": notes, "tasks": tasks, "boards": boards,
		"runner": runner, "perms": perms, "publisher": publisher,
	} {
		if dep == nil {
			return nil, &NoteServiceError{
				Operation: "create_service",
				Message:   name + " cannot be nil",
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &noteServiceImpl{
		notes:     notes,
		tasks:     tasks,
		boards:    boards,
		runner:    runner,
		perms:     perms,
		publisher: publisher,
		logger:    logger.With("component", "note_service"),
	}, nil
}

// AddNote creates a note on a task the user can view. Viewing is enough:
// commenting does not require edit rights on the board.
func (s *noteServiceImpl) AddNote(
	ctx context.Context,
	userID, taskID int64,
	content string,
	isPublic bool,
	recipientID *int64,
) (*domain.Note, error) {
	task, err := s.loadAuthorizedTask(ctx, "add_note", userID, taskID)
	if err != nil {
		return nil, err
	}

	note, err := domain.NewNote(taskID, userID, content, isPublic, recipientID)
	if err != nil {
		return nil, NewNoteServiceError("add_note", "invalid note", err)
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, NewNoteServiceError("add_note", "failed to save note", err)
	}

	s.publisher.Publish(events.NewNoteEvent(events.TypeNoteCreated, note, taskID, task.BoardID))
	return note, nil
}

// ListNotes returns the task's notes visible to the user.
func (s *noteServiceImpl) ListNotes(ctx context.Context, userID, taskID int64) ([]*domain.Note, error) {
	if _, err := s.loadAuthorizedTask(ctx, "list_notes", userID, taskID); err != nil {
		return nil, err
	}

	notes, err := s.notes.ListVisible(ctx, taskID, userID)
	if err != nil {
		return nil, NewNoteServiceError("list_notes", "failed to list notes", err)
	}
	return notes, nil
}

// UpdateNote rewrites a note's content and visibility. Only the author may
// change a note, board permissions notwithstanding.
func (s *noteServiceImpl) UpdateNote(
	ctx context.Context,
	userID, noteID int64,
	content string,
	isPublic bool,
	recipientID *int64,
) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, NewNoteServiceError("update_note", "failed to load note", err)
	}
	if note.AuthorID != userID {
		return nil, ErrNotNoteAuthor
	}

	note.Content = content
	note.IsPublic = isPublic
	note.RecipientID = recipientID
	if err := note.Validate(); err != nil {
		return nil, NewNoteServiceError("update_note", "invalid note", err)
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, NewNoteServiceError("update_note", "failed to save note", err)
	}

	task, err := s.tasks.GetByID(ctx, note.TaskID)
	var boardID *int64
	if err == nil {
		boardID = task.BoardID
	}
	s.publisher.Publish(events.NewNoteEvent(events.TypeNoteUpdated, note, note.TaskID, boardID))
	return note, nil
}

// DeleteNote removes a note. Author only.
func (s *noteServiceImpl) DeleteNote(ctx context.Context, userID, noteID int64) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return NewNoteServiceError("delete_note", "failed to load note", err)
	}
	if note.AuthorID != userID {
		return ErrNotNoteAuthor
	}

	var boardID *int64
	if task, err := s.tasks.GetByID(ctx, note.TaskID); err == nil {
		boardID = task.BoardID
	}

	if err := s.notes.Delete(ctx, noteID); err != nil {
		return NewNoteServiceError("delete_note", "failed to delete note", err)
	}

	s.publisher.Publish(events.NewNoteDeleted(noteID, note.TaskID, boardID))
	return nil
}

// MarkViewed records the user's view of a note they can see.
func (s *noteServiceImpl) MarkViewed(ctx context.Context, userID, noteID int64) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return NewNoteServiceError("mark_viewed", "failed to load note", err)
	}
	if !note.VisibleTo(userID) {
		return ErrPermissionDenied
	}

	if err := s.notes.MarkViewed(ctx, noteID, userID); err != nil {
		return NewNoteServiceError("mark_viewed", "failed to record view", err)
	}
	return nil
}

// CountUnread reports the unread visible notes of a task for the user.
func (s *noteServiceImpl) CountUnread(ctx context.Context, userID, taskID int64) (int64, error) {
	if _, err := s.loadAuthorizedTask(ctx, "count_unread", userID, taskID); err != nil {
		return 0, err
	}

	count, err := s.notes.CountUnread(ctx, taskID, userID)
	if err != nil {
		return 0, NewNoteServiceError("count_unread", "failed to count unread notes", err)
	}
	return count, nil
}

// loadAuthorizedTask fetches the task and checks VIEW-level access: board
// tasks go through the board's permission lattice, personal tasks belong
// to their owner only.
func (s *noteServiceImpl) loadAuthorizedTask(
	ctx context.Context,
	operation string,
	userID, taskID int64,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewNoteServiceError(operation, "failed to load task", err)
	}

	if task.BoardID == nil {
		if task.UserID != userID {
			return nil, ErrPermissionDenied
		}
		return task, nil
	}

	board, err := s.boards.GetByID(ctx, *task.BoardID)
	if err != nil {
		return nil, NewNoteServiceError(operation, "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionView); err != nil {
		return nil, err
	}
	return task, nil
}
