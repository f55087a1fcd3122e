package leave

import "errors"

var (
	ErrNotFound      = errors.New("leave application not found")
	ErrInvalidState  = errors.New("leave application is not in the expected state")
	ErrNotAuthorized = errors.New("actor is not authorized for this step")
	ErrValidation    = errors.New("invalid leave application")

	// ErrConflict means a conditional update matched no row because another
	// actor advanced the chain first. Callers should re-read and retry or fail.
	ErrConflict = errors.New("leave application was modified concurrently")
)
