package models

import "errors"

// Error kinds shared by handlers and middleware.
// Wrap them with fmt.Errorf("%w: detail", ErrX) to add context.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrForbidden         = errors.New("forbidden")
	ErrIneligibleAge     = errors.New("voters must be at least 18 years old")
	ErrIncompleteProfile = errors.New("voter profile is incomplete")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateVote     = errors.New("vote already cast")
	ErrConflict          = errors.New("conflict")
)
