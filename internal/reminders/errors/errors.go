package errors

import "errors"

var (
	ErrNoneDue   = errors.New("no reminder due")
	ErrNotFound  = errors.New("reminder not found")
	ErrInvalidID = errors.New("invalid reminder ID format")
	// ErrNotClaimed means the reminder left the sending state before the
	// outcome was recorded.
	ErrNotClaimed = errors.New("reminder is not claimed")
)
