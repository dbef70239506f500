package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrOverlap           = errors.New("interval overlaps an active booking")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrActivityInactive  = errors.New("activity is not active")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrForbidden         = errors.New("actor not allowed")
	ErrCodeExhausted     = errors.New("confirmation code attempts exhausted")
)
