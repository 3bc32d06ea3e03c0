package domain

import (
	"errors"
	"fmt"
	"time"
)

// Share-specific validation errors
var (
	// ErrShareBoardEmpty is returned when a share does not reference a board.
	ErrShareBoardEmpty = fmt.Errorf("%w: share board cannot be empty", ErrValidation)

	// ErrShareUserEmpty is returned when a share is missing either side of the grant.
	ErrShareUserEmpty = fmt.Errorf("%w: share users cannot be empty", ErrValidation)

	// ErrShareSelf is returned when an owner attempts to share a board with themselves.
	ErrShareSelf = errors.New("cannot share a board with its owner")
)

// SharePermission is the capability granted by a share.
type SharePermission string

// Share permission values. EDIT subsumes VIEW.
const (
	PermissionView SharePermission = "VIEW"
	PermissionEdit SharePermission = "EDIT"
)

// IsValid reports whether the permission is one of the recognized values.
func (p SharePermission) IsValid() bool {
	return p == PermissionView || p == PermissionEdit
}

// Grants reports whether this permission satisfies the required capability.
// VIEW is satisfied by either value; EDIT only by EDIT.
func (p SharePermission) Grants(required SharePermission) bool {
	if required == PermissionView {
		return p.IsValid()
	}
	return p == PermissionEdit
}

// Share grants VIEW or EDIT capability on a board to a non-owner user.
// At most one share exists per (board, shared-with) pair; ownership is never
// delegated, the original owner retains all rights regardless of shares.
type Share struct {
	ID           int64           `json:"id"`
	BoardID      int64           `json:"board_id"`
	SharedByID   int64           `json:"shared_by_id"`
	SharedWithID int64           `json:"shared_with_id"`
	Permission   SharePermission `json:"permission"`
	SharedAt     time.Time       `json:"shared_at"`
}

// NewShare creates a new Share of the given board from the owner to another
// user. Returns an error if validation fails.
func NewShare(boardID, sharedByID, sharedWithID int64, permission SharePermission) (*Share, error) {
	share := &Share{
		BoardID:      boardID,
		SharedByID:   sharedByID,
		SharedWithID: sharedWithID,
		Permission:   permission,
		SharedAt:     time.Now().UTC(),
	}

	if err := share.Validate(); err != nil {
		return nil, err
	}

	return share, nil
}

// Validate checks if the Share has valid data.
func (s *Share) Validate() error {
	if s.BoardID == 0 {
		return ErrShareBoardEmpty
	}

	if s.SharedByID == 0 || s.SharedWithID == 0 {
		return ErrShareUserEmpty
	}

	if s.SharedByID == s.SharedWithID {
		return ErrShareSelf
	}

	if !s.Permission.IsValid() {
		return ErrInvalidPermission
	}

	return nil
}
