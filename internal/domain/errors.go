// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a task status value is not recognized.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority is returned when a task priority value is not recognized.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidPermission is returned when a share permission is neither VIEW nor EDIT.
	ErrInvalidPermission = errors.New("invalid share permission")
)
