package domain

import (
	"fmt"
	"strings"
)

// Column-specific validation errors, all wrapping ErrValidation.
var (
	// ErrColumnTitleEmpty is returned when a column's title is empty or blank.
	ErrColumnTitleEmpty = fmt.Errorf("%w: column title cannot be empty", ErrValidation)

	// ErrColumnBoardEmpty is returned when a column does not reference a board.
	ErrColumnBoardEmpty = fmt.Errorf("%w: column board cannot be empty", ErrValidation)

	// ErrColumnOrderInvalid is returned when a column's order is not positive.
	// Column order is a dense 1..N sequence per board.
	ErrColumnOrderInvalid = fmt.Errorf("%w: column order must be positive", ErrValidation)
)

// Column is an ordered bucket of tasks within a board. Order values form a
// dense 1..N sequence per board and are re-densified after deletions.
type Column struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Title   string `json:"title"`
	Order   int    `json:"order"`
}

// NewColumn creates a new Column on the given board at the given order.
// Returns an error if validation fails.
func NewColumn(boardID int64, title string, order int) (*Column, error) {
	column := &Column{
		BoardID: boardID,
		Title:   strings.TrimSpace(title),
		Order:   order,
	}

	if err := column.Validate(); err != nil {
		return nil, err
	}

	return column, nil
}

// Validate checks if the Column has valid data.
func (c *Column) Validate() error {
	if c.BoardID == 0 {
		return ErrColumnBoardEmpty
	}

	if strings.TrimSpace(c.Title) == "" {
		return ErrColumnTitleEmpty
	}

	if c.Order < 1 {
		return ErrColumnOrderInvalid
	}

	return nil
}
