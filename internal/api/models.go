package api

import (
	"time"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID int64 `json:"user_id"`

	// Name is the user's display name
	Name string `json:"name"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateBoardRequest defines the payload for creating a board.
type CreateBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Icon string `json:"icon" validate:"max=50"`
}

// UpdateBoardRequest defines the payload for renaming a board or changing its icon.
type UpdateBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Icon string `json:"icon" validate:"max=50"`
}

// CreateColumnRequest defines the payload for appending a column to a board.
type CreateColumnRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// RenameColumnRequest defines the payload for renaming a column.
type RenameColumnRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// ShareBoardRequest defines the payload for sharing a board by email.
type ShareBoardRequest struct {
	Email      string `json:"email"      validate:"required,email"`
	Permission string `json:"permission" validate:"required,oneof=VIEW EDIT"`
}

// BoardListResponse splits the user's boards into their own and the ones
// shared with them.
type BoardListResponse struct {
	Own    interface{} `json:"own"`
	Shared interface{} `json:"shared"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=3,max=150"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	BoardID     *int64     `json:"board_id"`
	ColumnID    *int64     `json:"column_id"`
}

// UpdateTaskRequest defines the payload for a full task update.
type UpdateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=3,max=150"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"      validate:"required"`
	Priority    string     `json:"priority"    validate:"required"`
	DueDate     *time.Time `json:"due_date"`
}

// SetStatusRequest defines the payload for changing only a task's status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// MoveTaskRequest defines the payload for moving a task to another column.
type MoveTaskRequest struct {
	ColumnID int64 `json:"column_id" validate:"required"`
}

// ReorderTaskItem is one entry of a bulk reorder payload. Omitted fields
// leave the corresponding task field untouched.
type ReorderTaskItem struct {
	ID       int64   `json:"id"       validate:"required"`
	Position *int    `json:"position"`
	Status   *string `json:"status"`
	ColumnID *int64  `json:"column_id"`
	BoardID  *int64  `json:"board_id"`
}

// ReorderRequest defines the payload for the bulk reorder endpoint.
type ReorderRequest struct {
	Items []ReorderTaskItem `json:"items" validate:"required,min=1,dive"`
}

// CreateNoteRequest defines the payload for attaching a note to a task.
type CreateNoteRequest struct {
	Content     string `json:"content"      validate:"required,min=1,max=1000"`
	IsPublic    bool   `json:"is_public"`
	RecipientID *int64 `json:"recipient_id"`
}

// UpdateNoteRequest defines the payload for editing a note.
type UpdateNoteRequest struct {
	Content     string `json:"content"      validate:"required,min=1,max=1000"`
	IsPublic    bool   `json:"is_public"`
	RecipientID *int64 `json:"recipient_id"`
}

// UnreadCountResponse reports how many notes on a task the user has not seen.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
