package errors

import (
	"fmt"
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrDuplicateName   = fmt.Errorf("duplicate name")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrConflict        = fmt.Errorf("conflict")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
)

// FieldError is a single failed check against a named input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field failures in the order they were checked.
// The first one is the error surfaced to the user.
type ValidationError struct {
	Fields []FieldError
}

func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	return v.Fields[0].Message
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Add appends a failure for field.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// First returns the failure that blocks the request.
func (v *ValidationError) First() FieldError {
	if len(v.Fields) == 0 {
		return FieldError{Message: ErrInvalidInput.Error()}
	}
	return v.Fields[0]
}

// Err returns v when it holds failures and nil otherwise.
func (v *ValidationError) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

// NewValidationError builds a ValidationError with a single failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
