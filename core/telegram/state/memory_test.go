package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryManagerDefaults(t *testing.T) {
	m := NewMemoryManager()

	require.Equal(t, StateIdle, m.GetState(1))
	require.False(t, m.InProgress(1))

	_, ok := m.GetData(1, "direction")
	require.False(t, ok)
}

func TestMemoryManagerTransitions(t *testing.T) {
	m := NewMemoryManager()

	m.SetState(7, State("booking_direction"))
	require.True(t, m.InProgress(7))
	require.Equal(t, State("booking_direction"), m.GetState(7))

	m.SetData(7, "direction", "Math")
	v, ok := m.GetData(7, "direction")
	require.True(t, ok)
	require.Equal(t, "Math", v)

	// Another user is unaffected.
	require.Equal(t, StateIdle, m.GetState(8))

	m.Reset(7)
	require.Equal(t, StateIdle, m.GetState(7))
	_, ok = m.GetData(7, "direction")
	require.False(t, ok)
}

func TestMemoryManagerDoSerializesPerUser(t *testing.T) {
	m := NewMemoryManager()

	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = m.Do(42, func() error {
				// Not atomic on purpose; Do must serialize access.
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, workers, counter)
}

func TestMemoryManagerDoAllowsStateMutation(t *testing.T) {
	m := NewMemoryManager()

	err := m.Do(3, func() error {
		m.SetState(3, State("booking_lecture"))
		m.SetData(3, "direction", "Physics")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, State("booking_lecture"), m.GetState(3))
}
