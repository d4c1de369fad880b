package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken means another pending or confirmed booking already holds
	// the same (user, instant) slot.
	ErrSlotTaken = errors.New("booking slot already taken")

	// ErrStatusChanged means a conditional write lost a race with another
	// writer that moved the booking first.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
