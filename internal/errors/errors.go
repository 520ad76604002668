// Package errors defines the stable error taxonomy of the prioritization
// engine. Validation failures name the offending field so callers can
// surface the exact input that was rejected.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ValidationFailed indicates a malformed request (bad item, weight, or field)
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// PolicyNotFound indicates an unknown policy name
	PolicyNotFound ErrorCode = "POLICY_NOT_FOUND"
	// RunNotFound indicates an unknown prioritization run id
	RunNotFound ErrorCode = "RUN_NOT_FOUND"
	// StoreUnavailable indicates the persistence layer is not reachable
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// Unauthorized indicates a missing or invalid API token
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// EngineError represents an engine error with a stable code, a message,
// and the field that failed validation when applicable.
type EngineError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	cause   error     // Underlying error (not exported to JSON)
}

// New creates a new EngineError
func New(code ErrorCode, message string, cause error) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Validation creates a VALIDATION_FAILED error naming the offending field.
func Validation(field, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Code:    ValidationFailed,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	switch {
	case e.Field != "" && e.cause != nil:
		return fmt.Sprintf("[%s] %s (field %s): %v", e.Code, e.Message, e.Field, e.cause)
	case e.Field != "":
		return fmt.Sprintf("[%s] %s (field %s)", e.Code, e.Message, e.Field)
	case e.cause != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the error code from err, or INTERNAL_ERROR if err is not
// an EngineError.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return InternalError
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return CodeOf(err) == ValidationFailed
}
