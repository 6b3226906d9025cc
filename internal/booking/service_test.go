package booking

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lectobot/core/telegram/state"
	"lectobot/internal/content"
	"lectobot/internal/storage"
	"lectobot/internal/storage/stubs"
)

type fixture struct {
	svc      *Service
	sessions state.Manager
	store    *stubs.MemoryStore
	repo     *content.Repository
	baseDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	sessions := state.NewMemoryManager()
	store := stubs.NewMemoryStore()
	repo := content.NewRepository(content.Config{BaseDir: base})
	return &fixture{
		svc:      NewService(sessions, store, repo),
		sessions: sessions,
		store:    store,
		repo:     repo,
		baseDir:  base,
	}
}

func (f *fixture) writeRoster(t *testing.T, direction string, lectures ...string) {
	t.Helper()
	dir := filepath.Join(f.baseDir, string(content.KindLectures))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := ""
	for _, l := range lectures {
		body += l + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, direction+".txt"), []byte(body), 0o644))
}

func TestOpenListsDirectionsAndAdvances(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus")
	f.writeRoster(t, "Physics", "Optics")

	directions, err := f.svc.Open(7)
	require.NoError(t, err)
	require.Equal(t, []string{"Math", "Physics"}, directions)
	require.Equal(t, StateDirection, f.sessions.GetState(7))
}

func TestSelectDirectionAnnotatesRoster(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus", "Algebra")
	ctx := context.Background()

	_, err := f.svc.Open(7)
	require.NoError(t, err)

	view, err := f.svc.SelectDirection(ctx, 7, "Math")
	require.NoError(t, err)
	require.Equal(t, []LectureView{
		{Title: "Calculus"},
		{Title: "Algebra"},
	}, view)
	require.Equal(t, StateLecture, f.sessions.GetState(7))
}

func TestSelectDirectionMissingKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Open(7)
	require.NoError(t, err)

	_, err = f.svc.SelectDirection(ctx, 7, "History")
	require.ErrorIs(t, err, content.ErrNotFound)
	require.Equal(t, StateDirection, f.sessions.GetState(7))
}

func TestBookingScenario(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus", "Algebra")
	ctx := context.Background()

	view, err := f.svc.AvailableView(ctx, "Math")
	require.NoError(t, err)
	require.False(t, view[0].Booked)
	require.False(t, view[1].Booked)

	_, err = f.svc.Open(7)
	require.NoError(t, err)
	_, err = f.svc.SelectDirection(ctx, 7, "Math")
	require.NoError(t, err)

	lecture, err := f.svc.BookByNumber(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, "Calculus", lecture)
	require.Equal(t, state.StateIdle, f.sessions.GetState(7))

	view, err = f.svc.AvailableView(ctx, "Math")
	require.NoError(t, err)
	require.True(t, view[0].Booked)
	require.False(t, view[1].Booked)

	// a second user hitting the same slot conflicts and stays on the step
	_, err = f.svc.Open(8)
	require.NoError(t, err)
	_, err = f.svc.SelectDirection(ctx, 8, "Math")
	require.NoError(t, err)
	_, err = f.svc.BookByNumber(ctx, 8, 1)
	require.ErrorIs(t, err, storage.ErrAlreadyBooked)
	require.Equal(t, StateLecture, f.sessions.GetState(8))

	_, err = f.svc.BookByNumber(ctx, 8, 5)
	require.ErrorIs(t, err, ErrInvalidSelection)
	require.Equal(t, StateLecture, f.sessions.GetState(8))

	_, err = f.svc.BookByNumber(ctx, 8, 0)
	require.ErrorIs(t, err, ErrInvalidSelection)
}

func TestBookByNumberRosterVanished(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus")
	ctx := context.Background()

	_, err := f.svc.Open(7)
	require.NoError(t, err)
	_, err = f.svc.SelectDirection(ctx, 7, "Math")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.baseDir, string(content.KindLectures), "Math.txt")))

	_, err = f.svc.BookByNumber(ctx, 7, 1)
	require.ErrorIs(t, err, content.ErrNotFound)
	require.Equal(t, StateLecture, f.sessions.GetState(7))
}

func TestBookByNumberReReadsRoster(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus", "Algebra")
	ctx := context.Background()

	_, err := f.svc.Open(7)
	require.NoError(t, err)
	_, err = f.svc.SelectDirection(ctx, 7, "Math")
	require.NoError(t, err)

	// the file changes mid-conversation; the index resolves freshly
	f.writeRoster(t, "Math", "Geometry", "Calculus")

	lecture, err := f.svc.BookByNumber(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, "Geometry", lecture)
}

func TestAbortDiscardsPendingDirection(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus")
	ctx := context.Background()

	_, err := f.svc.Open(7)
	require.NoError(t, err)
	_, err = f.svc.SelectDirection(ctx, 7, "Math")
	require.NoError(t, err)

	f.svc.Abort(7)
	require.Equal(t, state.StateIdle, f.sessions.GetState(7))

	_, err = f.svc.BookByNumber(ctx, 7, 1)
	require.ErrorIs(t, err, ErrInvalidSelection)
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus")
	ctx := context.Background()
	const users = 16

	for i := 1; i <= users; i++ {
		userID := int64(i)
		_, err := f.svc.Open(userID)
		require.NoError(t, err)
		_, err = f.svc.SelectDirection(ctx, userID, "Math")
		require.NoError(t, err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := f.svc.BookByNumber(ctx, userID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, storage.ErrAlreadyBooked):
				conflicts++
			}
		}(int64(i))
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, users-1, conflicts)
}

func TestManageCompleteRemovesRosterLine(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus", "Algebra")
	ctx := context.Background()

	id, err := f.store.InsertBooking(ctx, 7, "Calculus", "Math")
	require.NoError(t, err)

	res, err := f.svc.Manage(ctx, 7, id, ActionComplete)
	require.NoError(t, err)
	require.Equal(t, ActionComplete, res.Action)
	require.Equal(t, "Calculus", res.Lecture)
	require.Equal(t, "Math", res.Direction)

	_, err = f.store.Booking(ctx, id, 7)
	require.ErrorIs(t, err, storage.ErrNotFound)

	roster, err := f.repo.LectureRoster("Math")
	require.NoError(t, err)
	require.Equal(t, []string{"Algebra"}, roster)
}

func TestManageForeignBookingNotFound(t *testing.T) {
	f := newFixture(t)
	f.writeRoster(t, "Math", "Calculus")
	ctx := context.Background()

	id, err := f.store.InsertBooking(ctx, 7, "Calculus", "Math")
	require.NoError(t, err)

	_, err = f.svc.Manage(ctx, 8, id, ActionCancel)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// the booking is untouched
	_, err = f.store.Booking(ctx, id, 7)
	require.NoError(t, err)
}

func TestManageRejectsUnknownAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Manage(ctx, 7, 1, Action("archive"))
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestManageSurvivesMissingRosterFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.store.InsertBooking(ctx, 7, "Calculus", "Math")
	require.NoError(t, err)

	// no lections/Math.txt on disk; the deletion still wins
	res, err := f.svc.Manage(ctx, 7, id, ActionCancel)
	require.NoError(t, err)
	require.Equal(t, ActionCancel, res.Action)
}
