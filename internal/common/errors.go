// Package common holds error types and logging setup shared across packages.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for ledger input and lookups.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownKind     = errors.New("unknown kind")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRange    = errors.New("invalid range")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// ValidationError reports malformed user input such as an unparseable date
// filter. It always carries the offending field and value.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a validation failure of field.
func NewValidationError(field, value string, err error) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-facing error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
