// Package apperr defines the error kinds the core services return. Handlers
// translate each kind into an HTTP status; services never expose raw storage
// errors across that boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed or self-referential input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict marks a duplicate or overlapping state transition.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks a referenced edge, post, user or conversation that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized marks an actor that lacks rights over the target
	// entity.
	ErrNotAuthorized = errors.New("not authorized")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted detail.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a formatted detail.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a formatted detail.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// NotAuthorized wraps ErrNotAuthorized with a formatted detail.
func NotAuthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotAuthorized, fmt.Sprintf(format, args...))
}
