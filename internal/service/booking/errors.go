package booking

import (
	"errors"
)

var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrActivityInactive  = errors.New("activity is not open for booking")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidInterval   = errors.New("interval end must be after start")
	ErrInvalidGuests     = errors.New("number of guests must be positive")
	ErrIntervalConflict  = errors.New("interval overlaps an active booking")
	ErrCapacityExceeded  = errors.New("no capacity left for the requested guests")
	ErrNotHost           = errors.New("only the activity host may do this")
	ErrNotAllowed        = errors.New("actor may not modify this booking")
	ErrInvalidTransition = errors.New("booking state does not allow this transition")
	ErrCodeExhausted     = errors.New("could not generate a unique confirmation code")
)
