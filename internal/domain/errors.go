package domain

import (
	"errors"
	"fmt"
)

// Domain-specific errors for business logic validation.
var (
	// Issue errors
	ErrIssueNotFound     = errors.New("issue not found")
	ErrDuplicateID       = errors.New("duplicate issue id")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("issue status changed concurrently")

	// Session errors
	ErrAuth             = errors.New("invalid credentials")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidation    = errors.New("validation failed")
	ErrInvalidStatus = errors.New("invalid issue status")
)

// ValidationError names the input field that failed validation.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap exposes ErrValidation to errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
