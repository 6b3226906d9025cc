package storage

import "context"

// User is a registered bot user. Created on first /start, never mutated.
type User struct {
	ID         int64  `db:"id"`
	TelegramID int64  `db:"telegram_id"`
	Nickname   string `db:"nickname"`
}

// Booking is a live reservation of one lecture in one direction.
// UserID holds the owner's Telegram id.
type Booking struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	Lecture   string `db:"lecture"`
	Direction string `db:"direction"`
}

// DirectionTotal carries the number of live bookings per direction.
type DirectionTotal struct {
	Direction string `db:"direction"`
	Total     int    `db:"total"`
}

// Store persists users and bookings.
//
// At most one live booking may exist per (direction, lecture) pair:
// InsertBooking must detect the conflict atomically even under concurrent
// attempts and report it as ErrAlreadyBooked.
type Store interface {
	// RegisterUser inserts a user row. Repeat registration with the same
	// telegram id is a no-op: the first-seen nickname is kept.
	RegisterUser(ctx context.Context, telegramID int64, nickname string) error

	// BookedLectures lists the lecture names with a live booking in direction.
	BookedLectures(ctx context.Context, direction string) ([]string, error)

	// IsBooked reports whether the (direction, lecture) slot is taken.
	IsBooked(ctx context.Context, direction, lecture string) (bool, error)

	// InsertBooking reserves the slot for userID and returns the booking id,
	// or ErrAlreadyBooked when the slot is taken.
	InsertBooking(ctx context.Context, userID int64, lecture, direction string) (int64, error)

	// UserBookings lists the user's bookings ordered by creation (id ascending).
	UserBookings(ctx context.Context, userID int64) ([]Booking, error)

	// Booking fetches one booking scoped to its owner. An absent id or one
	// owned by another user yields ErrNotFound.
	Booking(ctx context.Context, id, userID int64) (Booking, error)

	// DeleteBooking removes the booking with the same owner scoping as
	// Booking; a missing or foreign row yields ErrNotFound.
	DeleteBooking(ctx context.Context, id, userID int64) error

	// DirectionTotals reports live booking counts per direction, sorted by
	// direction name.
	DirectionTotals(ctx context.Context) ([]DirectionTotal, error)
}
