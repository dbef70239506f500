package catalog

import (
	"errors"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityConflict = errors.New("activity already exists")
	ErrInvalidActivity  = errors.New("invalid activity")
	ErrNotHost          = errors.New("only hosts may create activities")
)
