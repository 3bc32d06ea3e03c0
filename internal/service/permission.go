package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/store"
)

// PermissionEvaluator answers "may this user act on this board at this
// level". The owner passes every check; everyone else needs a share whose
// permission grants the required level (EDIT grants VIEW, VIEW does not
// grant EDIT). Share management itself is owner-only and handled by
// RequireOwner, not by the share lattice.
type PermissionEvaluator struct {
	shares store.ShareStore
}

// NewPermissionEvaluator creates an evaluator backed by the given share store.
func NewPermissionEvaluator(shares store.ShareStore) *PermissionEvaluator {
	return &PermissionEvaluator{shares: shares}
}

// WithTx returns an evaluator whose share lookups run inside tx.
func (e *PermissionEvaluator) WithTx(tx *sql.Tx) *PermissionEvaluator {
	return &PermissionEvaluator{shares: e.shares.WithTx(tx)}
}

// Can reports whether userID holds the required permission on board.
func (e *PermissionEvaluator) Can(
	ctx context.Context,
	board *domain.Board,
	userID int64,
	required domain.SharePermission,
) (bool, error) {
	if board.IsOwnedBy(userID) {
		return true, nil
	}

	share, err := e.shares.GetByBoardAndUser(ctx, board.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrShareNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up share: %w", err)
	}

	return share.Permission.Grants(required), nil
}

// Require returns ErrPermissionDenied unless userID holds the required
// permission on board.
func (e *PermissionEvaluator) Require(
	ctx context.Context,
	board *domain.Board,
	userID int64,
	required domain.SharePermission,
) error {
	ok, err := e.Can(ctx, board, userID, required)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// RequireOwner returns ErrNotBoardOwner unless userID owns board. Shares
// never satisfy an owner check, regardless of permission level.
func (e *PermissionEvaluator) RequireOwner(board *domain.Board, userID int64) error {
	if !board.IsOwnedBy(userID) {
		return ErrNotBoardOwner
	}
	return nil
}
