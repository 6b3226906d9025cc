package stubs

import (
	"context"
	"sort"
	"sync"

	"lectobot/internal/storage"
)

// MemoryStore is an in-memory implementation of storage.Store for tests.
// The mutex covers the whole check-and-insert in InsertBooking, closing the
// booking race the same way the unique index does in postgres.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[int64]storage.User
	bookings []storage.Booking
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[int64]storage.User),
		nextID: 1,
	}
}

func (m *MemoryStore) RegisterUser(_ context.Context, telegramID int64, nickname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[telegramID]; exists {
		return nil
	}
	m.users[telegramID] = storage.User{
		ID:         int64(len(m.users) + 1),
		TelegramID: telegramID,
		Nickname:   nickname,
	}
	return nil
}

// User returns the stored user row. Test helper, not part of storage.Store.
func (m *MemoryStore) User(telegramID int64) (storage.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	return u, ok
}

func (m *MemoryStore) BookedLectures(_ context.Context, direction string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lectures []string
	for _, b := range m.bookings {
		if b.Direction == direction {
			lectures = append(lectures, b.Lecture)
		}
	}
	return lectures, nil
}

func (m *MemoryStore) IsBooked(_ context.Context, direction, lecture string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isBookedLocked(direction, lecture), nil
}

func (m *MemoryStore) isBookedLocked(direction, lecture string) bool {
	for _, b := range m.bookings {
		if b.Direction == direction && b.Lecture == lecture {
			return true
		}
	}
	return false
}

func (m *MemoryStore) InsertBooking(_ context.Context, userID int64, lecture, direction string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isBookedLocked(direction, lecture) {
		return 0, storage.ErrAlreadyBooked
	}
	id := m.nextID
	m.nextID++
	m.bookings = append(m.bookings, storage.Booking{
		ID:        id,
		UserID:    userID,
		Lecture:   lecture,
		Direction: direction,
	})
	return id, nil
}

func (m *MemoryStore) UserBookings(_ context.Context, userID int64) ([]storage.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryStore) Booking(_ context.Context, id, userID int64) (storage.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return storage.Booking{}, storage.ErrNotFound
}

func (m *MemoryStore) DeleteBooking(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.bookings {
		if b.ID == id && b.UserID == userID {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *MemoryStore) DirectionTotals(_ context.Context) ([]storage.DirectionTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, b := range m.bookings {
		counts[b.Direction]++
	}
	totals := make([]storage.DirectionTotal, 0, len(counts))
	for direction, total := range counts {
		totals = append(totals, storage.DirectionTotal{Direction: direction, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Direction < totals[j].Direction
	})
	return totals, nil
}
