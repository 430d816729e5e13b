package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized is returned when the acting user lacks the permission
	// or has no pending step on the case
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound is returned when a referenced case or actor is absent
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent mutation won the race
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition is returned when a case status transition is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports malformed or constraint-violating input. It is
// always raised before any mutation and is always caller-fixable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError creates a formatted validation error
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
