package store

import (
	"context"
	"database/sql"

	"github.com/kanbanlab/taskboard/internal/domain"
)

// ShareStore defines the interface for board share data persistence.
type ShareStore interface {
	// Create saves a new share and fills in its generated ID.
	// Returns ErrShareExists when the board is already shared with the user.
	Create(ctx context.Context, share *domain.Share) error

	// GetByBoardAndUser retrieves the unique share of a board with a user.
	// Returns ErrShareNotFound if no such share exists.
	GetByBoardAndUser(ctx context.Context, boardID, userID int64) (*domain.Share, error)

	// ListByBoard retrieves all shares of a board, oldest first.
	ListByBoard(ctx context.Context, boardID int64) ([]*domain.Share, error)

	// UpdatePermission changes the permission of an existing share.
	// Returns ErrShareNotFound if the share does not exist.
	UpdatePermission(ctx context.Context, id int64, permission domain.SharePermission) error

	// DeleteByBoardAndUser removes the share of a board with a user.
	// Returns ErrShareNotFound if no such share exists.
	DeleteByBoardAndUser(ctx context.Context, boardID, userID int64) error

	// DeleteByBoard removes all shares of a board.
	DeleteByBoard(ctx context.Context, boardID int64) error

	// WithTx returns a ShareStore bound to the given transaction.
	WithTx(tx *sql.Tx) ShareStore
}
