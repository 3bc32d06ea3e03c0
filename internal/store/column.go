package store

import (
	"context"
	"database/sql"

	"github.com/kanbanlab/taskboard/internal/domain"
)

// ColumnStore defines the interface for column data persistence.
type ColumnStore interface {
	// Create saves a new column and fills in its generated ID.
	Create(ctx context.Context, column *domain.Column) error

	// GetByID retrieves a column by its unique ID.
	// Returns ErrColumnNotFound if the column does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Column, error)

	// ListByBoard retrieves the columns of a board ordered by their
	// board-local order value, ascending.
	ListByBoard(ctx context.Context, boardID int64) ([]*domain.Column, error)

	// Update persists changes to an existing column (title and order).
	// Returns ErrColumnNotFound if the column does not exist.
	Update(ctx context.Context, column *domain.Column) error

	// Delete removes a column by its ID. Callers re-densify the surviving
	// columns' order afterwards, within the same transaction.
	// Returns ErrColumnNotFound if the column does not exist.
	Delete(ctx context.Context, id int64) error

	// DeleteByBoard removes all columns of a board.
	DeleteByBoard(ctx context.Context, boardID int64) error

	// WithTx returns a ColumnStore bound to the given transaction.
	WithTx(tx *sql.Tx) ColumnStore
}
