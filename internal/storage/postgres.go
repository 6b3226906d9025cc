package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore implements Store on a PostgreSQL database via sqlx.
// The (direction, lecture) uniqueness invariant is enforced by the
// bookings_direction_lecture_key unique index.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RegisterUser(ctx context.Context, telegramID int64, nickname string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, nickname)
		 VALUES ($1, $2)
		 ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID, nickname,
	)
	if err != nil {
		return fmt.Errorf("storage: register user %d: %w", telegramID, err)
	}
	return nil
}

func (s *PostgresStore) BookedLectures(ctx context.Context, direction string) ([]string, error) {
	var lectures []string
	err := s.db.SelectContext(ctx, &lectures,
		`SELECT lecture FROM bookings WHERE direction = $1`,
		direction,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: booked lectures for %q: %w", direction, err)
	}
	return lectures, nil
}

func (s *PostgresStore) IsBooked(ctx context.Context, direction, lecture string) (bool, error) {
	var booked bool
	err := s.db.GetContext(ctx, &booked,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE direction = $1 AND lecture = $2)`,
		direction, lecture,
	)
	if err != nil {
		return false, fmt.Errorf("storage: check booking %q/%q: %w", direction, lecture, err)
	}
	return booked, nil
}

// InsertBooking relies on ON CONFLICT DO NOTHING over the unique index, so
// two racing inserts for the same slot resolve atomically: one row wins and
// the loser gets no RETURNING row.
func (s *PostgresStore) InsertBooking(ctx context.Context, userID int64, lecture, direction string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO bookings (user_id, lecture, direction)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (direction, lecture) DO NOTHING
		 RETURNING id`,
		userID, lecture, direction,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAlreadyBooked
	}
	if err != nil {
		return 0, fmt.Errorf("storage: insert booking %q/%q: %w", direction, lecture, err)
	}
	return id, nil
}

func (s *PostgresStore) UserBookings(ctx context.Context, userID int64) ([]Booking, error) {
	var bookings []Booking
	err := s.db.SelectContext(ctx, &bookings,
		`SELECT id, user_id, lecture, direction
		 FROM bookings
		 WHERE user_id = $1
		 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: bookings of user %d: %w", userID, err)
	}
	return bookings, nil
}

func (s *PostgresStore) Booking(ctx context.Context, id, userID int64) (Booking, error) {
	var b Booking
	err := s.db.GetContext(ctx, &b,
		`SELECT id, user_id, lecture, direction
		 FROM bookings
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("storage: booking %d: %w", id, err)
	}
	return b, nil
}

func (s *PostgresStore) DeleteBooking(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("storage: delete booking %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: delete booking %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DirectionTotals(ctx context.Context) ([]DirectionTotal, error) {
	var totals []DirectionTotal
	err := s.db.SelectContext(ctx, &totals,
		`SELECT direction, COUNT(*) AS total
		 FROM bookings
		 GROUP BY direction
		 ORDER BY direction ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: direction totals: %w", err)
	}
	return totals, nil
}
