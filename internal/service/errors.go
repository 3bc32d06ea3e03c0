// Package service provides application-level services for managing boards,
// columns, tasks, shares, and notes.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrPermissionDenied indicates the user lacks the permission required
	// for the operation on a board it does not own.
	// API layer should map this to HTTP 403 Forbidden.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotBoardOwner indicates an owner-only operation (share, unshare,
	// board deletion) was attempted by a non-owner.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotBoardOwner = errors.New("operation restricted to the board owner")

	// ErrNotNoteAuthor indicates a note mutation was attempted by someone
	// other than its author.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotNoteAuthor = errors.New("operation restricted to the note author")

	// ErrShareTargetNotFound indicates the user a board should be shared
	// with does not exist.
	ErrShareTargetNotFound = errors.New("share target user not found")
)
