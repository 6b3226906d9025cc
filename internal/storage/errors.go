package storage

import "errors"

var (
	// ErrNotFound is returned when a booking is absent or owned by another user.
	ErrNotFound = errors.New("booking not found")
	// ErrAlreadyBooked is returned when a (direction, lecture) slot is taken.
	ErrAlreadyBooked = errors.New("lecture already booked")
)
