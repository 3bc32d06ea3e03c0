package store

import (
	"context"
	"database/sql"

	"github.com/kanbanlab/taskboard/internal/domain"
)

// BoardStore defines the interface for board data persistence.
type BoardStore interface {
	// Create saves a new board and fills in its generated ID.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board by its unique ID.
	// Returns ErrBoardNotFound if the board does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Board, error)

	// ListByOwner retrieves the boards owned by a user, oldest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Board, error)

	// ListSharedWith retrieves the boards shared with a user, oldest
	// share first.
	ListSharedWith(ctx context.Context, userID int64) ([]*domain.Board, error)

	// Update persists changes to an existing board.
	// Returns ErrBoardNotFound if the board does not exist.
	Update(ctx context.Context, board *domain.Board) error

	// Delete removes a board by its ID. Callers are responsible for the
	// cascade: notes, tasks, columns, and shares of the board must be
	// removed first, in that order, within the same transaction.
	// Returns ErrBoardNotFound if the board does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a BoardStore bound to the given transaction.
	WithTx(tx *sql.Tx) BoardStore
}
