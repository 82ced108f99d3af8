// Package service contains the business logic of the workshop planner.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrCsrfMismatch       = errors.New("csrf token mismatch")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWorkshopNotFound   = errors.New("workshop not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrWeakSecret         = errors.New("token secret must be at least 32 bytes")
)

// validationError wraps ErrValidation with the offending field.
func validationError(field, message string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, message)
}
