// Package services provides the editor session layer and its standardized errors.
package services

import (
	"errors"
	"fmt"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/templates"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrNameRequired   = errors.New("automation name is required")

	// Not Found Errors (404 Not Found).
	ErrSessionNotFound    = errors.New("session not found")
	ErrBlockNotFound      = errors.New("block not found")
	ErrTemplateNotFound   = templates.ErrTemplateNotFound
	ErrAutomationNotFound = persistence.ErrAutomationNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
// Rejected graph edits count as validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, templates.ErrInvalidTemplate) ||
		errors.Is(err, models.ErrUnknownBlockType) ||
		errors.Is(err, canvas.ErrNoOutput) ||
		graph.IsValidationError(err)
}

// IsConflictError checks if an error clashes with the gesture state and should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, canvas.ErrGestureInProgress) ||
		errors.Is(err, canvas.ErrNotPicking)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrBlockNotFound) ||
		errors.Is(err, canvas.ErrUnknownBlock) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrAutomationNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
