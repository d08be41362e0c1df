package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input
	ErrValidation = errors.New("validation failed")
	// ErrConstraint marks a uniqueness, required-field or foreign-key violation
	ErrConstraint = errors.New("constraint violation")
	// ErrNotFound marks an operation on an identity that does not exist
	ErrNotFound = errors.New("not found")
	// ErrIO marks an inaccessible template or spreadsheet file
	ErrIO = errors.New("file access failed")
)

// ValidationError describes an invalid form field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid returns a ValidationError for field
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
