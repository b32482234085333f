// Package apperrors defines the coded error types handlers turn into replies.
package apperrors

import (
	"errors"
	"fmt"
)

// Error codes carried by every error in this package.
const (
	CodeUnknown    = "UNKNOWN"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeValidation = "VALIDATION"
	CodeAPI        = "API"
	CodeDatabase   = "DATABASE"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

type base struct {
	code    string
	message string
	err     error
}

func (e *base) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *base) Code() string { return e.code }

func (e *base) Unwrap() error { return e.err }

// Message is the text without the wrapped cause, safe to show to users.
func (e *base) Message() string { return e.message }

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUnknown
}

// UserMessage returns the user-facing message of the first ApplicationError
// in err's chain, or fallback.
func UserMessage(err error, fallback string) string {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		return m.Message()
	}
	return fallback
}

// NotFoundError reports a missing record such as an unknown alarm or emoticon.
type NotFoundError struct{ base }

func NewNotFoundError(message string) error {
	return &NotFoundError{base{code: CodeNotFound, message: message}}
}

// ConflictError reports a record that already exists.
type ConflictError struct{ base }

func NewConflictError(message string) error {
	return &ConflictError{base{code: CodeConflict, message: message}}
}

// ValidationError reports malformed user input.
type ValidationError struct{ base }

func NewValidationError(message string, cause error) error {
	return &ValidationError{base{code: CodeValidation, message: message, err: cause}}
}

// APIError reports a failing upstream service.
type APIError struct{ base }

func NewAPIError(message string, cause error) error {
	return &APIError{base{code: CodeAPI, message: message, err: cause}}
}

// DatabaseError reports a failing store operation.
type DatabaseError struct{ base }

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{base{code: CodeDatabase, message: message, err: cause}}
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return Code(err) == CodeNotFound }

// IsConflict reports whether err carries CodeConflict.
func IsConflict(err error) bool { return Code(err) == CodeConflict }
