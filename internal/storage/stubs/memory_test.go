package stubs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lectobot/internal/storage"
)

func TestMemoryStoreRegisterUserKeepsFirstNickname(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.RegisterUser(ctx, 42, "alice"))
	require.NoError(t, store.RegisterUser(ctx, 42, "bob"))

	u, ok := store.User(42)
	require.True(t, ok)
	require.Equal(t, "alice", u.Nickname)
}

func TestMemoryStoreInsertBookingConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.InsertBooking(ctx, 1, "Calculus", "Math")
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = store.InsertBooking(ctx, 2, "Calculus", "Math")
	require.ErrorIs(t, err, storage.ErrAlreadyBooked)

	// same lecture name in another direction is a distinct slot
	_, err = store.InsertBooking(ctx, 2, "Calculus", "Physics")
	require.NoError(t, err)
}

func TestMemoryStoreInsertBookingConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := store.InsertBooking(ctx, userID, "Calculus", "Math")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == storage.ErrAlreadyBooked:
				conflicts++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, attempts-1, conflicts)
}

func TestMemoryStoreOwnerScoping(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.InsertBooking(ctx, 1, "Calculus", "Math")
	require.NoError(t, err)

	_, err = store.Booking(ctx, id, 2)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, store.DeleteBooking(ctx, id, 2), storage.ErrNotFound)

	b, err := store.Booking(ctx, id, 1)
	require.NoError(t, err)
	require.Equal(t, "Calculus", b.Lecture)
	require.NoError(t, store.DeleteBooking(ctx, id, 1))
	require.ErrorIs(t, store.DeleteBooking(ctx, id, 1), storage.ErrNotFound)
}

func TestMemoryStoreUserBookingsOrdered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, lecture := range []string{"Calculus", "Algebra", "Geometry"} {
		_, err := store.InsertBooking(ctx, 7, lecture, "Math")
		require.NoError(t, err)
	}
	_, err := store.InsertBooking(ctx, 8, "Optics", "Physics")
	require.NoError(t, err)

	bookings, err := store.UserBookings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	require.Equal(t, "Calculus", bookings[0].Lecture)
	require.Equal(t, "Algebra", bookings[1].Lecture)
	require.Equal(t, "Geometry", bookings[2].Lecture)
}

func TestMemoryStoreDirectionTotals(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _ = store.InsertBooking(ctx, 1, "Calculus", "Math")
	_, _ = store.InsertBooking(ctx, 1, "Algebra", "Math")
	_, _ = store.InsertBooking(ctx, 2, "Optics", "Physics")

	totals, err := store.DirectionTotals(ctx)
	require.NoError(t, err)
	require.Equal(t, []storage.DirectionTotal{
		{Direction: "Math", Total: 2},
		{Direction: "Physics", Total: 1},
	}, totals)
}
