package roster

import (
	"errors"
	"fmt"
)

// ErrWriteInFlight rejects a mutation issued while the previous write for
// the same session has not finished.
var ErrWriteInFlight = errors.New("roster write already in flight")

// ValidationError means the mutation references something the current
// schema does not license. Nothing was written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError means the targeted roster entry does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// PersistenceError means the store rejected the write. The roster kept its
// previous value; Reason is meant for display only.
type PersistenceError struct {
	Reason string
	Err    error
}

func (e *PersistenceError) Error() string {
	return "save roster: " + e.Reason
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
