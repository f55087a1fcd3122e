package attendance

import "errors"

var (
	ErrNotFound     = errors.New("attendance record not found")
	ErrInvalidState = errors.New("attendance record is not in the expected state")
	ErrValidation   = errors.New("invalid attendance input")
	ErrConflict     = errors.New("attendance record was modified concurrently")
)
