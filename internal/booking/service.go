package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lectobot/core/logger"
	"lectobot/core/telegram/state"
	"lectobot/internal/content"
	"lectobot/internal/storage"
)

// Conversation states of the booking flow.
const (
	// StateDirection means the user is choosing a lecture direction.
	StateDirection state.State = "booking_direction"
	// StateLecture means the user is typing a 1-based lecture number.
	StateLecture state.State = "booking_lecture"
)

const dataDirection = "direction"

// ErrInvalidSelection is returned for an out-of-range lecture number.
var ErrInvalidSelection = errors.New("invalid lecture selection")

// Action tags the two ways a booking leaves the store.
type Action string

const (
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Result describes a finished Manage call for rendering.
type Result struct {
	Action    Action
	Lecture   string
	Direction string
}

// LectureView is one roster entry annotated with its booking status.
// The annotation is presentation only and never stored.
type LectureView struct {
	Title  string
	Booked bool
}

// Sessions is the slice of the FSM manager the service mutates.
type Sessions interface {
	SetState(userID int64, st state.State)
	GetState(userID int64) state.State
	SetData(userID int64, key, value string)
	GetData(userID int64, key string) (string, bool)
	Reset(userID int64)
}

// Content is the slice of the content repository the service reads.
type Content interface {
	Categories(kind content.Kind) ([]string, error)
	LectureRoster(direction string) ([]string, error)
	RemoveLectureLine(direction, lecture string) error
}

// Service owns the booking conversation transitions, keyed by Telegram user
// id. Callers serialize invocations per user through the session manager's
// lock (state.Manager.Dispatch or Do); the service itself does not lock.
type Service struct {
	sessions Sessions
	store    storage.Store
	content  Content
}

func NewService(sessions Sessions, store storage.Store, cont Content) *Service {
	return &Service{
		sessions: sessions,
		store:    store,
		content:  cont,
	}
}

// Open starts the booking flow: the user moves to the direction step and the
// current direction list is returned for rendering.
func (s *Service) Open(userID int64) ([]string, error) {
	directions, err := s.content.Categories(content.KindLectures)
	if err != nil {
		return nil, err
	}
	s.sessions.SetState(userID, StateDirection)
	sample, _ := logger.SummarizeStrings(directions, 5)
	logger.Debug(nil, "booking", "booking.open",
		slog.Int64("user_id", userID),
		slog.Int("directions", len(directions)),
		slog.String("sample", sample),
	)
	return directions, nil
}

// SelectDirection advances the user to the lecture step and returns the
// direction's roster annotated booked/available. A missing direction file
// keeps the user on the direction step.
func (s *Service) SelectDirection(ctx context.Context, userID int64, direction string) ([]LectureView, error) {
	view, err := s.AvailableView(ctx, direction)
	if err != nil {
		return nil, err
	}
	s.sessions.SetData(userID, dataDirection, direction)
	s.sessions.SetState(userID, StateLecture)
	return view, nil
}

// AvailableView builds the annotated roster for a direction.
func (s *Service) AvailableView(ctx context.Context, direction string) ([]LectureView, error) {
	roster, err := s.content.LectureRoster(direction)
	if err != nil {
		return nil, err
	}
	booked, err := s.store.BookedLectures(ctx, direction)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(booked))
	for _, lecture := range booked {
		taken[lecture] = struct{}{}
	}
	view := make([]LectureView, len(roster))
	for i, title := range roster {
		_, isTaken := taken[title]
		view[i] = LectureView{Title: title, Booked: isTaken}
	}
	return view, nil
}

// BookByNumber resolves the pending direction's roster entry n (1-based) and
// reserves it. The roster is re-read at selection time, so the index always
// resolves against the file's current content. On success the conversation
// returns to idle and the lecture title is returned; every failure leaves
// the state unchanged so the user can retry. On storage.ErrAlreadyBooked the
// resolved title is still returned so callers can name the taken lecture.
func (s *Service) BookByNumber(ctx context.Context, userID int64, n int) (string, error) {
	direction, ok := s.sessions.GetData(userID, dataDirection)
	if !ok {
		return "", fmt.Errorf("no pending direction: %w", ErrInvalidSelection)
	}
	roster, err := s.content.LectureRoster(direction)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(roster) {
		return "", fmt.Errorf("lecture %d of %d: %w", n, len(roster), ErrInvalidSelection)
	}
	selected := roster[n-1]

	id, err := s.store.InsertBooking(ctx, userID, selected, direction)
	if err != nil {
		return selected, err
	}

	s.sessions.Reset(userID)
	logger.Info(ctx, "booking", "booking.created",
		slog.Int64("user_id", userID),
		slog.Int64("booking_id", id),
		slog.String("direction", direction),
		slog.String("lecture", selected),
	)
	return selected, nil
}

// Abort unconditionally returns the user to idle, discarding any pending
// direction.
func (s *Service) Abort(userID int64) {
	s.sessions.Reset(userID)
}

// Manage completes or cancels an existing booking. It operates on committed
// bookings regardless of conversation state. The booking row deletion is
// authoritative; a roster-file cleanup failure afterwards is logged only and
// never rolls the deletion back.
func (s *Service) Manage(ctx context.Context, userID, bookingID int64, action Action) (Result, error) {
	if action != ActionComplete && action != ActionCancel {
		return Result{}, fmt.Errorf("booking: unknown action %q", action)
	}
	b, err := s.store.Booking(ctx, bookingID, userID)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.DeleteBooking(ctx, bookingID, userID); err != nil {
		return Result{}, err
	}
	if err := s.content.RemoveLectureLine(b.Direction, b.Lecture); err != nil {
		logger.Error(ctx, "booking", "booking.roster_cleanup",
			slog.Int64("user_id", userID),
			slog.Int64("booking_id", bookingID),
			slog.String("direction", b.Direction),
			slog.String("lecture", b.Lecture),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "booking", "booking.closed",
		slog.Int64("user_id", userID),
		slog.Int64("booking_id", bookingID),
		slog.String("action", string(action)),
		slog.String("direction", b.Direction),
		slog.String("lecture", b.Lecture),
	)
	return Result{Action: action, Lecture: b.Lecture, Direction: b.Direction}, nil
}
