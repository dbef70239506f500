package commission

import (
	"errors"
)

var (
	ErrCommissionNotFound  = errors.New("commission not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingNotCompleted = errors.New("booking is not completed")
	ErrDuplicateCommission = errors.New("commission already exists for the booking")
	ErrInvalidTransition   = errors.New("commission state does not allow this transition")
	ErrInvalidResolution   = errors.New("unknown dispute resolution")
	ErrNotAllowed          = errors.New("actor may not manage commissions")
)
