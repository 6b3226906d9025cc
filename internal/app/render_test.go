package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lectobot/internal/booking"
	"lectobot/internal/storage"
)

func TestRenderRosterViewMarksBookedAndFree(t *testing.T) {
	text := renderRosterView("Math", []booking.LectureView{
		{Title: "Calculus", Booked: true},
		{Title: "Algebra", Booked: false},
	})

	require.Contains(t, text, "_Math_")
	require.Contains(t, text, "🔴 1. Calculus")
	require.Contains(t, text, "🟢 2. Algebra")
	require.Contains(t, text, "Введите номер лекции")
}

func TestRenderBookingsBuildsInlineRows(t *testing.T) {
	text, markup := renderBookings([]storage.Booking{
		{ID: 7, Direction: "Math", Lecture: "Calculus"},
		{ID: 9, Direction: "Physics", Lecture: "Optics"},
	})

	require.Contains(t, text, "*1. Calculus* (Math)")
	require.Contains(t, text, "*2. Optics* (Physics)")

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	require.Equal(t, "✔ Завершить 1", markup.InlineKeyboard[0][0].Text)
	require.Equal(t, "❌ Отменить 1", markup.InlineKeyboard[0][1].Text)
	require.Equal(t, "7", markup.InlineKeyboard[0][0].Data)
	require.Equal(t, "9", markup.InlineKeyboard[1][1].Data)
}

func TestRenderManaged(t *testing.T) {
	done := renderManaged(booking.Result{Action: booking.ActionComplete, Lecture: "Calculus"})
	require.Contains(t, done, "✅")
	require.Contains(t, done, "завершена")

	dropped := renderManaged(booking.Result{Action: booking.ActionCancel, Lecture: "Calculus"})
	require.Contains(t, dropped, "🔄")
	require.Contains(t, dropped, "отменена")
}

func TestRenderDirectionTotals(t *testing.T) {
	require.Equal(t, "Бронирований нет.", renderDirectionTotals(nil))

	text := renderDirectionTotals([]storage.DirectionTotal{
		{Direction: "Math", Total: 3},
		{Direction: "Physics", Total: 1},
	})
	require.Contains(t, text, "Math: 3")
	require.Contains(t, text, "Physics: 1")
}
