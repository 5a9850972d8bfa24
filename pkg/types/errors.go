package types

import (
	"errors"
	"fmt"
)

// ErrEmptyEdges is returned when a graph build is attempted with no edge records.
var ErrEmptyEdges = errors.New("edge list cannot be empty")

// ValidationError represents a malformed edge record. It is fatal for the
// detection run that produced it: no partial graph is ever returned.
type ValidationError struct {
	Index  int    // Position of the offending record in the input (-1 if not record-specific)
	Field  string // Field that failed validation, if known
	Reason string // Human-readable reason
	Err    error  // Underlying sentinel, if any
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid edge input: %s", e.Reason)
	}

	if e.Field != "" {
		return fmt.Sprintf("edge at index %d has invalid %s: %s", e.Index, e.Field, e.Reason)
	}

	return fmt.Sprintf("edge at index %d is invalid: %s", e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the record at index.
func NewValidationError(index int, field string, reason string) *ValidationError {
	return &ValidationError{
		Index:  index,
		Field:  field,
		Reason: reason,
	}
}

// EmptyEdgesError returns the ValidationError for an empty edge batch.
func EmptyEdgesError() *ValidationError {
	return &ValidationError{
		Index:  -1,
		Reason: ErrEmptyEdges.Error(),
		Err:    ErrEmptyEdges,
	}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
