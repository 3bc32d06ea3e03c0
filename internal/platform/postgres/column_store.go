package postgres

import (
	"context"
	"database/sql"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/store"
)

// PostgresColumnStore implements the store.ColumnStore interface
// using a PostgreSQL database as the storage backend.
type PostgresColumnStore struct {
	db store.DBTX
}

// NewPostgresColumnStore creates a new PostgreSQL implementation of the
// ColumnStore interface.
func NewPostgresColumnStore(db store.DBTX) *PostgresColumnStore {
	return &PostgresColumnStore{db: db}
}

// Ensure PostgresColumnStore implements store.ColumnStore interface
var _ store.ColumnStore = (*PostgresColumnStore)(nil)

// Create implements store.ColumnStore.Create
func (s *PostgresColumnStore) Create(ctx context.Context, column *domain.Column) error {
	query := `
		INSERT INTO board_columns (board_id, title, ordinal)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		column.BoardID,
		column.Title,
		column.Order,
	).Scan(&column.ID)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ColumnStore.GetByID
func (s *PostgresColumnStore) GetByID(ctx context.Context, id int64) (*domain.Column, error) {
	query := `
		SELECT id, board_id, title, ordinal
		FROM board_columns
		WHERE id = $1
	`

	var column domain.Column
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&column.ID,
		&column.BoardID,
		&column.Title,
		&column.Order,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrColumnNotFound
		}
		return nil, MapError(err)
	}

	return &column, nil
}

// ListByBoard implements store.ColumnStore.ListByBoard
func (s *PostgresColumnStore) ListByBoard(ctx context.Context, boardID int64) ([]*domain.Column, error) {
	query := `
		SELECT id, board_id, title, ordinal
		FROM board_columns
		WHERE board_id = $1
		ORDER BY ordinal ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close() //nolint:errcheck

	var columns []*domain.Column
	for rows.Next() {
		var column domain.Column
		if err := rows.Scan(
			&column.ID,
			&column.BoardID,
			&column.Title,
			&column.Order,
		); err != nil {
			return nil, MapError(err)
		}
		columns = append(columns, &column)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return columns, nil
}

// Update implements store.ColumnStore.Update
func (s *PostgresColumnStore) Update(ctx context.Context, column *domain.Column) error {
	query := `
		UPDATE board_columns
		SET title = $1, ordinal = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, column.Title, column.Order, column.ID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrColumnNotFound)
}

// Delete implements store.ColumnStore.Delete
func (s *PostgresColumnStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM board_columns WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrColumnNotFound)
}

// DeleteByBoard implements store.ColumnStore.DeleteByBoard
func (s *PostgresColumnStore) DeleteByBoard(ctx context.Context, boardID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM board_columns WHERE board_id = $1`, boardID)
	return MapError(err)
}

// WithTx implements store.ColumnStore.WithTx
func (s *PostgresColumnStore) WithTx(tx *sql.Tx) store.ColumnStore {
	return &PostgresColumnStore{db: tx}
}
