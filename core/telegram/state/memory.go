package state

import (
	"log/slog"
	"sync"

	"lectobot/core/logger"

	tele "gopkg.in/telebot.v4"
)

type session struct {
	// runMu serializes whole transitions for a single user; it is held for
	// the full duration of a dispatched handler. Handlers for two different
	// users interleave freely.
	runMu sync.Mutex
	// mu guards the state and data fields only, so handlers running under
	// runMu may still call the setters.
	mu    sync.Mutex
	state State
	data  map[string]string
}

func (s *session) get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type memoryManager struct {
	mu       sync.Mutex
	sessions map[int64]*session
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs the in-memory Manager implementation.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

func (m *memoryManager) session(userID int64) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &session{state: StateIdle, data: make(map[string]string)}
		m.sessions[userID] = s
	}
	return s
}

// Handle associates a state with its handler. A nil handler is ignored.
func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlers[st] = h
}

// Dispatch executes the handler registered for the user's current state, if
// any. The user's transition lock is held for the duration of the handler.
func (m *memoryManager) Dispatch(c tele.Context) error {
	userID := c.Sender().ID
	s := m.session(userID)

	s.runMu.Lock()
	defer s.runMu.Unlock()

	current := s.get()
	logger.Debug(nil, "tg", "fsm.dispatch",
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)
	if handler, ok := m.handlers[current]; ok {
		return handler(c)
	}
	return nil
}

// Do runs fn under the user's transition lock.
func (m *memoryManager) Do(userID int64, fn func() error) error {
	s := m.session(userID)
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return fn()
}

// SetState sets the FSM state for the given user.
func (m *memoryManager) SetState(userID int64, st State) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return StateIdle
	}
	return s.get()
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// SetData stores a key/value pair in the user's session.
func (m *memoryManager) SetData(userID int64, key, value string) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// GetData retrieves a session value by key.
func (m *memoryManager) GetData(userID int64, key string) (string, bool) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Reset returns the user to idle and discards any pending session data.
func (m *memoryManager) Reset(userID int64) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.data = make(map[string]string)
}
