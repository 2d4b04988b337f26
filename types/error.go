package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the registry.
type ErrorCode string

// Registry error codes
const (
	ErrDuplicateName        ErrorCode = "DUPLICATE_NAME"
	ErrNotFound             ErrorCode = "NOT_FOUND"
	ErrDirectRebindRejected ErrorCode = "DIRECT_REBIND_REJECTED"
	ErrInvalidExtension     ErrorCode = "INVALID_EXTENSION"
)

// API boundary error codes
const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Forwarding error codes
const (
	ErrOperationUnbound   ErrorCode = "OPERATION_UNBOUND"
	ErrHandlerNotAttached ErrorCode = "HANDLER_NOT_ATTACHED"
)

// Advisory codes, reported by audit queries but never returned by a
// mutation.
const (
	ErrIdentifierCollision ErrorCode = "IDENTIFIER_COLLISION"
)

// Error represents a structured error with code, message, and cause.
// Every mutation failure is synchronous and leaves registry state
// unchanged, so callers may treat any *Error as a no-op and retry
// after correcting the triggering condition.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// GetErrorCode extracts the error code from an error, unwrapping as
// needed. Returns the empty code for non-registry errors.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given registry error code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
