package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/store"
)

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the
// BoardStore interface. If logger is nil, a default logger will be used.
func NewPostgresBoardStore(db store.DBTX, logger *slog.Logger) *PostgresBoardStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

// Ensure PostgresBoardStore implements store.BoardStore interface
var _ store.BoardStore = (*PostgresBoardStore)(nil)

// Create implements store.BoardStore.Create
func (s *PostgresBoardStore) Create(ctx context.Context, board *domain.Board) error {
	query := `
		INSERT INTO boards (name, icon, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		board.Name,
		board.Icon,
		board.OwnerID,
		board.CreatedAt,
	).Scan(&board.ID)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.BoardStore.GetByID
func (s *PostgresBoardStore) GetByID(ctx context.Context, id int64) (*domain.Board, error) {
	query := `
		SELECT id, name, icon, owner_id, created_at
		FROM boards
		WHERE id = $1
	`

	var board domain.Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID,
		&board.Name,
		&board.Icon,
		&board.OwnerID,
		&board.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrBoardNotFound
		}
		return nil, MapError(err)
	}

	return &board, nil
}

// ListByOwner implements store.BoardStore.ListByOwner
func (s *PostgresBoardStore) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Board, error) {
	query := `
		SELECT id, name, icon, owner_id, created_at
		FROM boards
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`

	return s.queryBoards(ctx, query, ownerID)
}

// ListSharedWith implements store.BoardStore.ListSharedWith
func (s *PostgresBoardStore) ListSharedWith(ctx context.Context, userID int64) ([]*domain.Board, error) {
	query := `
		SELECT b.id, b.name, b.icon, b.owner_id, b.created_at
		FROM boards b
		JOIN board_shares sh ON sh.board_id = b.id
		WHERE sh.shared_with_id = $1
		ORDER BY sh.shared_at ASC, b.id ASC
	`

	return s.queryBoards(ctx, query, userID)
}

// Update implements store.BoardStore.Update
func (s *PostgresBoardStore) Update(ctx context.Context, board *domain.Board) error {
	query := `
		UPDATE boards
		SET name = $1, icon = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, board.Name, board.Icon, board.ID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrBoardNotFound)
}

// Delete implements store.BoardStore.Delete
func (s *PostgresBoardStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrBoardNotFound)
}

// WithTx implements store.BoardStore.WithTx
func (s *PostgresBoardStore) WithTx(tx *sql.Tx) store.BoardStore {
	return &PostgresBoardStore{db: tx, logger: s.logger}
}

func (s *PostgresBoardStore) queryBoards(ctx context.Context, query string, args ...any) ([]*domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var boards []*domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(
			&board.ID,
			&board.Name,
			&board.Icon,
			&board.OwnerID,
			&board.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		boards = append(boards, &board)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return boards, nil
}
