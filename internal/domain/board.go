package domain

import (
	"fmt"
	"strings"
	"time"
)

// Board-specific validation errors. Each wraps ErrValidation so callers can
// match the whole family with errors.Is.
var (
	// ErrBoardNameEmpty is returned when a board's name is empty or blank.
	ErrBoardNameEmpty = fmt.Errorf("%w: board name cannot be empty", ErrValidation)

	// ErrBoardOwnerEmpty is returned when a board has no owner.
	ErrBoardOwnerEmpty = fmt.Errorf("%w: board owner cannot be empty", ErrValidation)
)

// DefaultColumnTitle is the title of the column seeded when a board is created.
const DefaultColumnTitle = "Geral"

// Board is a top-level collection of columns and tasks owned by exactly
// one user. Non-owners gain access only through a Share.
type Board struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBoard creates a new Board owned by the given user. The icon is optional
// and trimmed of surrounding whitespace. Returns an error if validation fails.
func NewBoard(ownerID int64, name, icon string) (*Board, error) {
	board := &Board{
		Name:      strings.TrimSpace(name),
		Icon:      strings.TrimSpace(icon),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := board.Validate(); err != nil {
		return nil, err
	}

	return board, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrBoardNameEmpty
	}

	if b.OwnerID == 0 {
		return ErrBoardOwnerEmpty
	}

	return nil
}

// IsOwnedBy reports whether the given user owns this board.
func (b *Board) IsOwnedBy(userID int64) bool {
	return b.OwnerID == userID
}
