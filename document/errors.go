package document

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a reference to an element id that no longer resolves.
// Mutations treat it as a tolerated no-op; lookups return it to callers that
// need to distinguish the case.
var ErrNotFound = errors.New("document: element not found")

// ValidationError is returned when an operation's arguments are invalid.
// The scene is left unchanged.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return "document: " + e.Op + ": " + e.Reason
}

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// SerializationError is returned when a snapshot cannot be encoded or decoded.
// It is fatal to the single operation that produced it.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return "document: " + e.Op + ": " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
