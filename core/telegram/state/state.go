// Package state provides a keyed FSM/session manager for conversational
// Telegram flows. Sessions live in process memory only; a restart resets
// every user to the idle state.
package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step within a conversation.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Manager orchestrates user sessions and FSM state transitions.
// Implementations must serialize transitions per user: Dispatch and Do never
// run concurrently for the same user id.
type Manager interface {
	// Handle associates a state with the handler invoked for updates
	// arriving while a user is in that state.
	Handle(st State, h tele.HandlerFunc)

	// Dispatch runs the handler registered for the sender's current state
	// under the sender's session lock.
	Dispatch(c tele.Context) error

	// Do runs fn under the user's session lock.
	Do(userID int64, fn func() error) error

	SetState(userID int64, st State)
	GetState(userID int64) State
	InProgress(userID int64) bool

	SetData(userID int64, key, value string)
	GetData(userID int64, key string) (string, bool)

	// Reset returns the user to idle and discards all session data.
	Reset(userID int64)
}
