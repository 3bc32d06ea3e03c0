package api

import (
	"errors"
	"net/http"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
	"github.com/kanbanlab/taskboard/internal/service/auth"
	"github.com/kanbanlab/taskboard/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrNotBoardOwner),
		errors.Is(err, service.ErrNotNoteAuthor):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrShareTargetNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrShareSelf),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidPermission):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrNotBoardOwner):
		return "Only the board owner can do this"

	case errors.Is(err, service.ErrNotNoteAuthor):
		return "Only the note author can do this"

	case errors.Is(err, service.ErrPermissionDenied):
		return "You do not have access to this board"

	case errors.Is(err, service.ErrShareTargetNotFound):
		return "No account with that email"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrBoardNotFound):
		return "Board not found"

	case errors.Is(err, store.ErrColumnNotFound):
		return "Column not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrShareNotFound):
		return "Share not found"

	case errors.Is(err, store.ErrNoteNotFound):
		return "Note not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrShareExists):
		return "Board already shared with this user"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, domain.ErrShareSelf):
		return "You cannot share a board with yourself"

	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid task status"

	case errors.Is(err, domain.ErrInvalidPriority):
		return "Invalid task priority"

	case errors.Is(err, domain.ErrInvalidPermission):
		return "Invalid share permission"

	case errors.Is(err, domain.ErrValidation):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}
