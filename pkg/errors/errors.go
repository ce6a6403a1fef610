package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Common application errors
var (
	ErrNotFound   = NewNotFoundError("resource", "")
	ErrBadRequest = NewBadRequestError("bad request")
	ErrInternal   = NewInternalError("internal server error", nil)
)

// BadRequestError represents malformed or absent input
type BadRequestError struct {
	Message string
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

// Error implements the error interface
func (e *BadRequestError) Error() string {
	return e.Message
}

// Is matches any BadRequestError so callers can use errors.Is with ErrBadRequest
func (e *BadRequestError) Is(target error) bool {
	_, ok := target.(*BadRequestError)
	return ok
}

// ValidationError represents one or more field-level rule violations
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// NewValidationErrors creates a validation error carrying every violation
func NewValidationErrors(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Add records a violation for field, keeping the first message for that field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, e.Fields[k])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is matches any NotFoundError so callers can use errors.Is with ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}
