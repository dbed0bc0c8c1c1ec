// Package apperr defines the error kinds the API distinguishes.
//
// Repositories and services return these (usually wrapped with context via
// fmt.Errorf("...: %w", ...)); controllers translate them into the response
// envelope exactly once, at the boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a write would violate a uniqueness
	// constraint (duplicate email, duplicate slug).
	ErrConflict = errors.New("resource already exists")

	// ErrNotFound is returned when no entity matches the given id or slug.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidToken covers every session-token failure: forged, malformed
	// or signed with the wrong secret. Callers must not distinguish the
	// cause beyond this single kind.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthorizedRole is returned when an authenticated user lacks the
	// role a route requires.
	ErrUnauthorizedRole = errors.New("unauthorized access")

	// ErrCodec is returned when password hashing or token signing itself
	// fails (infrastructure, not bad input).
	ErrCodec = errors.New("credential codec failure")

	// ErrCollaborator is returned when an external service (payment
	// gateway, storage backend) fails mid-request.
	ErrCollaborator = errors.New("collaborator failure")
)

// ValidationError reports the first offending field of a request.
// Validation is fail-fast: one field, one message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for a field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Required is the common "field is missing" validation failure.
func Required(field string) error {
	return Validation(field, "is required")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
