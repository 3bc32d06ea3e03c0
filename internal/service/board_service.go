package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/events"
	"github.com/kanbanlab/taskboard/internal/platform/mail"
	"github.com/kanbanlab/taskboard/internal/store"
)

// BoardService provides board, column, and share operations.
type BoardService interface {
	// CreateBoard creates a board for the owner and seeds it with the
	// default column.
	CreateBoard(ctx context.Context, ownerID int64, name, icon string) (*domain.Board, error)

	// GetBoard retrieves a board the user can at least view.
	GetBoard(ctx context.Context, userID, boardID int64) (*domain.Board, error)

	// ListBoards retrieves the user's own boards and the boards shared
	// with them, as separate slices.
	ListBoards(ctx context.Context, userID int64) (own, shared []*domain.Board, err error)

	// UpdateBoard renames a board and/or changes its icon. Requires EDIT.
	UpdateBoard(ctx context.Context, userID, boardID int64, name, icon string) (*domain.Board, error)

	// DeleteBoard removes a board and everything on it. Owner only.
	DeleteBoard(ctx context.Context, userID, boardID int64) error

	// ListColumns retrieves a board's columns in display order.
	ListColumns(ctx context.Context, userID, boardID int64) ([]*domain.Column, error)

	// CreateColumn appends a column to the end of a board. Requires EDIT.
	CreateColumn(ctx context.Context, userID, boardID int64, title string) (*domain.Column, error)

	// RenameColumn changes a column's title. Requires EDIT.
	RenameColumn(ctx context.Context, userID, columnID int64, title string) (*domain.Column, error)

	// DeleteColumn removes a column with its tasks and renumbers the
	// surviving columns to a dense 1..N sequence. Requires EDIT.
	DeleteColumn(ctx context.Context, userID, columnID int64) error

	// ShareBoard grants or updates a user's access to a board, addressed
	// by email. Owner only.
	ShareBoard(ctx context.Context, ownerID, boardID int64, targetEmail string, permission domain.SharePermission) (*domain.Share, error)

	// UnshareBoard revokes a user's access to a board. Owner only.
	UnshareBoard(ctx context.Context, ownerID, boardID, targetUserID int64) error

	// ListMembers retrieves the owner and everyone the board is shared
	// with. Any member may look.
	ListMembers(ctx context.Context, userID, boardID int64) ([]*BoardMember, error)
}

// BoardMember is one row of a board's member list.
type BoardMember struct {
	UserID     int64                  `json:"user_id"`
	Name       string                 `json:"name"`
	Email      string                 `json:"email"`
	Owner      bool                   `json:"owner"`
	Permission domain.SharePermission `json:"permission,omitempty"`
}

// BoardServiceError wraps errors from the board service with context.
type BoardServiceError struct {
	// Operation is the operation that failed (e.g., "create_board", "share_board")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for BoardServiceError.
func (e *BoardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("board service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BoardServiceError) Unwrap() error {
	return e.Err
}

// passthroughSentinels are errors callers match with errors.Is; they are
// returned as-is instead of being wrapped.
var passthroughSentinels = []error{
	ErrPermissionDenied,
	ErrNotBoardOwner,
	ErrNotNoteAuthor,
	ErrShareTargetNotFound,
	domain.ErrValidation,
	store.ErrNotFound,
	store.ErrDuplicate,
}

func isPassthrough(err error) bool {
	for _, sentinel := range passthroughSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// NewBoardServiceError creates a new BoardServiceError.
// It returns known sentinel errors directly without wrapping.
func NewBoardServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isPassthrough(err) {
		return err
	}
	return &BoardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	boards    store.BoardStore
	columns   store.ColumnStore
	tasks     store.TaskStore
	shares    store.ShareStore
	notes     store.NoteStore
	users     store.UserStore
	runner    store.TxRunner
	perms     *PermissionEvaluator
	ordering  *OrderingEngine
	publisher events.Publisher
	mailer    mail.Mailer
	logger    *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(
	boards store.BoardStore,
	columns store.ColumnStore,
	tasks store.TaskStore,
	shares store.ShareStore,
	notes store.NoteStore,
	users store.UserStore,
	runner store.TxRunner,
	perms *PermissionEvaluator,
	ordering *OrderingEngine,
	publisher events.Publisher,
	mailer mail.Mailer,
	logger *slog.Logger,
) (BoardService, error) {
	for name, dep := range map[string]any{
		"boards": boards, "columns": columns, "tasks": tasks,
		"shares": shares, "notes": notes, "users": users,
		"runner": runner, "perms": perms, "ordering": ordering,
		"publisher": publisher,
	} {
		if dep == nil {
			return nil, &BoardServiceError{
				Operation: "create_service",
				Message:   name + " cannot be nil",
			}
		}
	}
	if mailer == nil {
		mailer = mail.NoopMailer{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		boards:    boards,
		columns:   columns,
		tasks:     tasks,
		shares:    shares,
		notes:     notes,
		users:     users,
		runner:    runner,
		perms:     perms,
		ordering:  ordering,
		publisher: publisher,
		mailer:    mailer,
		logger:    logger.With("component", "board_service"),
	}, nil
}

// CreateBoard creates the board and its default column in one transaction.
func (s *boardServiceImpl) CreateBoard(
	ctx context.Context,
	ownerID int64,
	name, icon string,
) (*domain.Board, error) {
	board, err := domain.NewBoard(ownerID, name, icon)
	if err != nil {
		return nil, NewBoardServiceError("create_board", "invalid board", err)
	}

	err = s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.boards.WithTx(tx).Create(ctx, board); err != nil {
			return NewBoardServiceError("create_board", "failed to save board", err)
		}

		column, err := domain.NewColumn(board.ID, domain.DefaultColumnTitle, 1)
		if err != nil {
			return NewBoardServiceError("create_board", "invalid default column", err)
		}
		if err := s.columns.WithTx(tx).Create(ctx, column); err != nil {
			return NewBoardServiceError("create_board", "failed to seed default column", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("board created",
		"board_id", board.ID,
		"owner_id", ownerID)
	return board, nil
}

// GetBoard retrieves a board after a VIEW permission check.
func (s *boardServiceImpl) GetBoard(ctx context.Context, userID, boardID int64) (*domain.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("get_board", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionView); err != nil {
		return nil, err
	}
	return board, nil
}

// ListBoards returns the user's own boards and the boards shared with them.
func (s *boardServiceImpl) ListBoards(ctx context.Context, userID int64) ([]*domain.Board, []*domain.Board, error) {
	own, err := s.boards.ListByOwner(ctx, userID)
	if err != nil {
		return nil, nil, NewBoardServiceError("list_boards", "failed to list own boards", err)
	}
	shared, err := s.boards.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, nil, NewBoardServiceError("list_boards", "failed to list shared boards", err)
	}
	return own, shared, nil
}

// UpdateBoard renames a board and broadcasts the change.
func (s *boardServiceImpl) UpdateBoard(
	ctx context.Context,
	userID, boardID int64,
	name, icon string,
) (*domain.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("update_board", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionEdit); err != nil {
		return nil, err
	}

	board.Name = name
	board.Icon = icon
	if err := board.Validate(); err != nil {
		return nil, NewBoardServiceError("update_board", "invalid board", err)
	}
	if err := s.boards.Update(ctx, board); err != nil {
		return nil, NewBoardServiceError("update_board", "failed to save board", err)
	}

	s.publisher.Publish(events.NewBoardUpdated(board, s.actorName(ctx, userID)))
	return board, nil
}

// DeleteBoard cascades notes, tasks, columns, and shares before removing
// the board itself, all inside one transaction. Owner only.
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, userID, boardID int64) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return NewBoardServiceError("delete_board", "failed to load board", err)
	}
	if err := s.perms.RequireOwner(board, userID); err != nil {
		return err
	}

	err = s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.notes.WithTx(tx).DeleteByBoard(ctx, boardID); err != nil {
			return NewBoardServiceError("delete_board", "failed to delete notes", err)
		}
		if err := s.tasks.WithTx(tx).DeleteByBoard(ctx, boardID); err != nil {
			return NewBoardServiceError("delete_board", "failed to delete tasks", err)
		}
		if err := s.columns.WithTx(tx).DeleteByBoard(ctx, boardID); err != nil {
			return NewBoardServiceError("delete_board", "failed to delete columns", err)
		}
		if err := s.shares.WithTx(tx).DeleteByBoard(ctx, boardID); err != nil {
			return NewBoardServiceError("delete_board", "failed to delete shares", err)
		}
		if err := s.boards.WithTx(tx).Delete(ctx, boardID); err != nil {
			return NewBoardServiceError("delete_board", "failed to delete board", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("board deleted",
		"board_id", boardID,
		"owner_id", userID)
	return nil
}

// ListColumns returns a board's columns in display order.
func (s *boardServiceImpl) ListColumns(ctx context.Context, userID, boardID int64) ([]*domain.Column, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("list_columns", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionView); err != nil {
		return nil, err
	}

	columns, err := s.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("list_columns", "failed to list columns", err)
	}
	return columns, nil
}

// CreateColumn appends a column at the end of the board's sequence. The
// count-then-insert runs under the board's ordering scope so concurrent
// creates on one board cannot assign the same ordinal.
func (s *boardServiceImpl) CreateColumn(
	ctx context.Context,
	userID, boardID int64,
	title string,
) (*domain.Column, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("create_column", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionEdit); err != nil {
		return nil, err
	}

	var column *domain.Column
	err = s.ordering.InBoardScope(boardID, func() error {
		existing, err := s.columns.ListByBoard(ctx, boardID)
		if err != nil {
			return NewBoardServiceError("create_column", "failed to list columns", err)
		}

		column, err = domain.NewColumn(boardID, title, len(existing)+1)
		if err != nil {
			return NewBoardServiceError("create_column", "invalid column", err)
		}
		if err := s.columns.Create(ctx, column); err != nil {
			return NewBoardServiceError("create_column", "failed to save column", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.NewColumnEvent(events.TypeColumnCreated, column, boardID))
	return column, nil
}

// RenameColumn changes a column's title.
func (s *boardServiceImpl) RenameColumn(
	ctx context.Context,
	userID, columnID int64,
	title string,
) (*domain.Column, error) {
	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, NewBoardServiceError("rename_column", "failed to load column", err)
	}
	board, err := s.boards.GetByID(ctx, column.BoardID)
	if err != nil {
		return nil, NewBoardServiceError("rename_column", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionEdit); err != nil {
		return nil, err
	}

	column.Title = title
	if err := column.Validate(); err != nil {
		return nil, NewBoardServiceError("rename_column", "invalid column", err)
	}
	if err := s.columns.Update(ctx, column); err != nil {
		return nil, NewBoardServiceError("rename_column", "failed to save column", err)
	}

	s.publisher.Publish(events.NewColumnEvent(events.TypeColumnUpdated, column, column.BoardID))
	return column, nil
}

// DeleteColumn removes a column with its tasks and notes, then renumbers
// the remaining columns so their orders form a dense 1..N sequence again.
func (s *boardServiceImpl) DeleteColumn(ctx context.Context, userID, columnID int64) error {
	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return NewBoardServiceError("delete_column", "failed to load column", err)
	}
	board, err := s.boards.GetByID(ctx, column.BoardID)
	if err != nil {
		return NewBoardServiceError("delete_column", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionEdit); err != nil {
		return err
	}

	err = s.ordering.InBoardScope(board.ID, func() error {
		return s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			if err := s.notes.WithTx(tx).DeleteByColumn(ctx, columnID); err != nil {
				return NewBoardServiceError("delete_column", "failed to delete notes", err)
			}
			if err := s.tasks.WithTx(tx).DeleteByColumn(ctx, columnID); err != nil {
				return NewBoardServiceError("delete_column", "failed to delete tasks", err)
			}
			txColumns := s.columns.WithTx(tx)
			if err := txColumns.Delete(ctx, columnID); err != nil {
				return NewBoardServiceError("delete_column", "failed to delete column", err)
			}

			remaining, err := txColumns.ListByBoard(ctx, board.ID)
			if err != nil {
				return NewBoardServiceError("delete_column", "failed to list remaining columns", err)
			}
			for i, rc := range remaining {
				want := i + 1
				if rc.Order == want {
					continue
				}
				rc.Order = want
				if err := txColumns.Update(ctx, rc); err != nil {
					return NewBoardServiceError("delete_column", "failed to renumber column", err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(events.NewColumnDeleted(columnID, board.ID))
	return nil
}

// ShareBoard grants access to the user behind targetEmail, or updates the
// permission of an existing share. The notification email is best effort.
func (s *boardServiceImpl) ShareBoard(
	ctx context.Context,
	ownerID, boardID int64,
	targetEmail string,
	permission domain.SharePermission,
) (*domain.Share, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("share_board", "failed to load board", err)
	}
	if err := s.perms.RequireOwner(board, ownerID); err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, NewBoardServiceError("share_board", "failed to load owner", err)
	}
	target, err := s.users.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrShareTargetNotFound
		}
		return nil, NewBoardServiceError("share_board", "failed to load target user", err)
	}

	existing, err := s.shares.GetByBoardAndUser(ctx, boardID, target.ID)
	switch {
	case err == nil:
		// Sharing twice updates the permission instead of failing.
		if err := s.shares.UpdatePermission(ctx, existing.ID, permission); err != nil {
			return nil, NewBoardServiceError("share_board", "failed to update permission", err)
		}
		existing.Permission = permission
		s.publisher.Publish(events.NewBoardUpdated(board, owner.DisplayName()))
		return existing, nil
	case errors.Is(err, store.ErrShareNotFound):
		// fall through to create
	default:
		return nil, NewBoardServiceError("share_board", "failed to look up share", err)
	}

	share, err := domain.NewShare(boardID, ownerID, target.ID, permission)
	if err != nil {
		return nil, NewBoardServiceError("share_board", "invalid share", err)
	}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, NewBoardServiceError("share_board", "failed to save share", err)
	}

	s.publisher.Publish(events.NewBoardShared(board, target.DisplayName(), owner.DisplayName()))
	s.notifyShared(ctx, board, owner, target, permission)
	return share, nil
}

// UnshareBoard revokes targetUserID's access. Owner only.
func (s *boardServiceImpl) UnshareBoard(ctx context.Context, ownerID, boardID, targetUserID int64) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return NewBoardServiceError("unshare_board", "failed to load board", err)
	}
	if err := s.perms.RequireOwner(board, ownerID); err != nil {
		return err
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return NewBoardServiceError("unshare_board", "failed to load owner", err)
	}
	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return NewBoardServiceError("unshare_board", "failed to load target user", err)
	}

	if err := s.shares.DeleteByBoardAndUser(ctx, boardID, targetUserID); err != nil {
		return NewBoardServiceError("unshare_board", "failed to delete share", err)
	}

	s.publisher.Publish(events.NewBoardUnshared(boardID, target.DisplayName(), owner.DisplayName()))
	s.notifyUnshared(ctx, board, owner, target)
	return nil
}

// ListMembers returns the owner followed by the shared users, oldest
// share first.
func (s *boardServiceImpl) ListMembers(ctx context.Context, userID, boardID int64) ([]*BoardMember, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("list_members", "failed to load board", err)
	}
	if err := s.perms.Require(ctx, board, userID, domain.PermissionView); err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, board.OwnerID)
	if err != nil {
		return nil, NewBoardServiceError("list_members", "failed to load owner", err)
	}
	members := []*BoardMember{{
		UserID: owner.ID,
		Name:   owner.DisplayName(),
		Email:  owner.Email,
		Owner:  true,
	}}

	shares, err := s.shares.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("list_members", "failed to list shares", err)
	}
	for _, share := range shares {
		user, err := s.users.GetByID(ctx, share.SharedWithID)
		if err != nil {
			return nil, NewBoardServiceError("list_members", "failed to load member", err)
		}
		members = append(members, &BoardMember{
			UserID:     user.ID,
			Name:       user.DisplayName(),
			Email:      user.Email,
			Permission: share.Permission,
		})
	}
	return members, nil
}

// actorName resolves the display name used in broadcast events. Lookup
// failures degrade to an empty name rather than failing the mutation.
func (s *boardServiceImpl) actorName(ctx context.Context, userID int64) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve actor name",
			"error", err,
			"user_id", userID)
		return ""
	}
	return user.DisplayName()
}

func (s *boardServiceImpl) notifyShared(
	ctx context.Context,
	board *domain.Board,
	owner, target *domain.User,
	permission domain.SharePermission,
) {
	subject := fmt.Sprintf("%s shared the board %q with you", owner.DisplayName(), board.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s shared the board %q with you (%s access).\n",
		target.DisplayName(), owner.DisplayName(), board.Name, permission,
	)
	if err := s.mailer.Send(ctx, target.Email, subject, body); err != nil {
		s.logger.Error("failed to send share notification",
			"error", err,
			"board_id", board.ID,
			"to", target.Email)
	}
}

func (s *boardServiceImpl) notifyUnshared(ctx context.Context, board *domain.Board, owner, target *domain.User) {
	subject := fmt.Sprintf("Your access to the board %q was removed", board.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s removed your access to the board %q.\n",
		target.DisplayName(), owner.DisplayName(), board.Name,
	)
	if err := s.mailer.Send(ctx, target.Email, subject, body); err != nil {
		s.logger.Error("failed to send unshare notification",
			"error", err,
			"board_id", board.ID,
			"to", target.Email)
	}
}
