// Package apperror defines the error kinds surfaced by the service layer.
// Handlers map them to HTTP status codes with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced entity id/code does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation or a deletion blocked by existing references.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with a human-readable message.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Conflict wraps ErrConflict with a human-readable message.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Validation wraps ErrValidation with a human-readable message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}
