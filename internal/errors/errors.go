// Package errors provides typed error definitions for arena.
// Store and engine failures are wrapped into structured errors at the
// service boundary so that the HTTP layer and the CLI can classify them.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique identifier for different error types
type ErrorCode string

const (
	// Configuration errors
	ErrConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Resource errors
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrCreationFailed    ErrorCode = "CREATION_FAILED"
	ErrConflict          ErrorCode = "CONFLICT"
	ErrTransactionFailed ErrorCode = "TRANSACTION_FAILED"

	// Database errors
	ErrDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	ErrDatabaseQuery      ErrorCode = "DATABASE_QUERY"
	ErrDatabaseMigration  ErrorCode = "DATABASE_MIGRATION"

	// Validation errors
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrInvalidPort      ErrorCode = "INVALID_PORT"

	// Internal errors
	ErrInternal       ErrorCode = "INTERNAL_ERROR"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrTimeout        ErrorCode = "TIMEOUT"

	// File/IO errors
	ErrFileRead  ErrorCode = "FILE_READ"
	ErrFileWrite ErrorCode = "FILE_WRITE"
)

// ArenaError represents a structured error with additional context
type ArenaError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *ArenaError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *ArenaError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ArenaError) WithContext(key string, value interface{}) *ArenaError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds the underlying cause error
func (e *ArenaError) WithCause(cause error) *ArenaError {
	e.Cause = cause
	return e
}

// GetHTTPStatus returns the appropriate HTTP status code for this error
func (e *ArenaError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}

	switch e.Code {
	case ErrNotFound, ErrConfigNotFound:
		return http.StatusNotFound
	case ErrCreationFailed:
		return http.StatusUnprocessableEntity
	case ErrValidationFailed, ErrInvalidInput, ErrInvalidPort:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	case ErrNotImplemented:
		return http.StatusNotImplemented
	case ErrTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new ArenaError
func New(code ErrorCode, message string) *ArenaError {
	return &ArenaError{
		Code:    code,
		Message: message,
	}
}

// NewWithDetails creates a new ArenaError with details
func NewWithDetails(code ErrorCode, message, details string) *ArenaError {
	return &ArenaError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Wrap creates a new ArenaError that wraps an existing error
func Wrap(code ErrorCode, message string, cause error) *ArenaError {
	return &ArenaError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetails creates a new ArenaError with details that wraps an existing error
func WrapWithDetails(code ErrorCode, message, details string, cause error) *ArenaError {
	return &ArenaError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// As finds the first ArenaError in err's chain
func As(err error) (*ArenaError, bool) {
	var ae *ArenaError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsArenaError checks if an error is or wraps an ArenaError
func IsArenaError(err error) bool {
	_, ok := As(err)
	return ok
}

// GetCode extracts the error code from an error, if it carries one
func GetCode(err error) ErrorCode {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return ""
}

// HasCode checks if an error has a specific error code
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// Common pre-defined errors for consistency
var (
	ErrEmptyInput       = New(ErrInvalidInput, "input cannot be empty")
	ErrInvalidPortError = New(ErrInvalidPort, "port number is invalid")
)
