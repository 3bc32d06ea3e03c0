package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/store"
)

// PostgresShareStore implements the store.ShareStore interface
// using a PostgreSQL database as the storage backend.
type PostgresShareStore struct {
	db store.DBTX
}

// NewPostgresShareStore creates a new PostgreSQL implementation of the
// ShareStore interface.
func NewPostgresShareStore(db store.DBTX) *PostgresShareStore {
	return &PostgresShareStore{db: db}
}

// Ensure PostgresShareStore implements store.ShareStore interface
var _ store.ShareStore = (*PostgresShareStore)(nil)

// Create implements store.ShareStore.Create
func (s *PostgresShareStore) Create(ctx context.Context, share *domain.Share) error {
	query := `
		INSERT INTO board_shares (board_id, shared_by_id, shared_with_id, permission, shared_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		share.BoardID,
		share.SharedByID,
		share.SharedWithID,
		share.Permission,
		share.SharedAt,
	).Scan(&share.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrShareExists, err)
		}
		return MapError(err)
	}

	return nil
}

// GetByBoardAndUser implements store.ShareStore.GetByBoardAndUser
func (s *PostgresShareStore) GetByBoardAndUser(ctx context.Context, boardID, userID int64) (*domain.Share, error) {
	query := `
		SELECT id, board_id, shared_by_id, shared_with_id, permission, shared_at
		FROM board_shares
		WHERE board_id = $1 AND shared_with_id = $2
	`

	var share domain.Share
	err := s.db.QueryRowContext(ctx, query, boardID, userID).Scan(
		&share.ID,
		&share.BoardID,
		&share.SharedByID,
		&share.SharedWithID,
		&share.Permission,
		&share.SharedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrShareNotFound
		}
		return nil, MapError(err)
	}

	return &share, nil
}

// ListByBoard implements store.ShareStore.ListByBoard
func (s *PostgresShareStore) ListByBoard(ctx context.Context, boardID int64) ([]*domain.Share, error) {
	query := `
		SELECT id, board_id, shared_by_id, shared_with_id, permission, shared_at
		FROM board_shares
		WHERE board_id = $1
		ORDER BY shared_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close() //nolint:errcheck

	var shares []*domain.Share
	for rows.Next() {
		var share domain.Share
		if err := rows.Scan(
			&share.ID,
			&share.BoardID,
			&share.SharedByID,
			&share.SharedWithID,
			&share.Permission,
			&share.SharedAt,
		); err != nil {
			return nil, MapError(err)
		}
		shares = append(shares, &share)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return shares, nil
}

// UpdatePermission implements store.ShareStore.UpdatePermission
func (s *PostgresShareStore) UpdatePermission(
	ctx context.Context,
	id int64,
	permission domain.SharePermission,
) error {
	query := `UPDATE board_shares SET permission = $1 WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, permission, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrShareNotFound)
}

// DeleteByBoardAndUser implements store.ShareStore.DeleteByBoardAndUser
func (s *PostgresShareStore) DeleteByBoardAndUser(ctx context.Context, boardID, userID int64) error {
	query := `DELETE FROM board_shares WHERE board_id = $1 AND shared_with_id = $2`

	result, err := s.db.ExecContext(ctx, query, boardID, userID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrShareNotFound)
}

// DeleteByBoard implements store.ShareStore.DeleteByBoard
func (s *PostgresShareStore) DeleteByBoard(ctx context.Context, boardID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM board_shares WHERE board_id = $1`, boardID)
	return MapError(err)
}

// WithTx implements store.ShareStore.WithTx
func (s *PostgresShareStore) WithTx(tx *sql.Tx) store.ShareStore {
	return &PostgresShareStore{db: tx}
}
