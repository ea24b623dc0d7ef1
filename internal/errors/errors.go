// Package errors defines the application error taxonomy: typed errors
// carrying enough structure for callers to log and branch without string
// matching.
package errors

import "fmt"

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeScenario   ErrorType = "SCENARIO"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
)

// AppError is an application error with a type and optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As through the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a typed application error.
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// ValidationError reports a single invalid field with its offending
// value.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (got %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Validation creates a field validation error.
func Validation(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}
