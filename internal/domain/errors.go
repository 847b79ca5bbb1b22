package domain

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrUnavailable       = errors.New("dependency unavailable")
)

// ValidationError indicates invalid input. Fields holds per-field messages
// (field name -> reason) when the failure is attributable to specific inputs.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, reason string) *ValidationError {
	return &ValidationError{
		Message: field + ": " + reason,
		Fields:  map[string]string{field: reason},
	}
}

// ConflictError represents a resource conflict with details about the existing resource.
// On this surface a conflict means the resource already reached a terminal state.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (submission, published_entry)
	ResourceID   string // ID of the conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusBadRequest
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewValidationError converts an ozzo-validation result into a ValidationError.
// Field-level failures are flattened into Fields; any other error is kept as the message.
func NewValidationError(message string, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fieldErr := range fieldErrs {
			fields[name] = fieldErr.Error()
		}
		return &ValidationError{Message: message, Fields: fields}
	}

	return &ValidationError{Message: message + ": " + err.Error()}
}
