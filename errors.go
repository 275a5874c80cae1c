package entityp

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. Store failures are classified by sqlp, see
// sqlp.ErrConnection, sqlp.ErrQuery and sqlp.ErrUniqueViolation.
var (
	// ErrInvalidInput means a definition, record or query was rejected before reaching the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResult means a write that must return a row returned none.
	ErrEmptyResult = errors.New("empty result")
)

// ValidationError describes one piece of rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// EmptyResultError is returned when an insert yields no identity, or an update matches
// no row.
type EmptyResultError struct {
	Op     string
	Entity string
	ID     any
}

func (e *EmptyResultError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s %s returned no rows", e.Op, e.Entity)
	}
	return fmt.Sprintf("%s %s with id %v returned no rows", e.Op, e.Entity, e.ID)
}

func (e *EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult
}
