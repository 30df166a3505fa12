package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid UPI ID or PIN")
	ErrTooManyAttempts    = errors.New("too many payment attempts, try again later")
)

// ValidationError reports the first violated field or image rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PermissionError means the acting user may not perform the operation.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// StateConflictError means the target is not in a state that allows the
// operation. Current names that state.
type StateConflictError struct {
	Current string
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func notFound(resource string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}

func forbidden(format string, args ...any) error {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}

func conflict(current string, format string, args ...any) error {
	return &StateConflictError{Current: current, Message: fmt.Sprintf(format, args...)}
}
