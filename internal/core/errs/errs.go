// Package errs defines the error kinds shared by the core services.
// Handlers map these to HTTP statuses; everything else wraps them with %w.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound marks operations whose target does not exist or belongs to
// another tenant. Both cases look identical to the caller.
var ErrNotFound = errors.New("no existe")

// ValidationError reports a request that cannot be processed as given.
// The message is user visible.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError reports a uniqueness violation, e.g. a duplicate folio.
// The message is user visible.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError with a formatted message.
func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
