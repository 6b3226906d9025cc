package app

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"lectobot/core/telegram/format"
	"lectobot/core/telegram/keyboard"
	"lectobot/internal/booking"
	"lectobot/internal/storage"
)

func renderRosterView(direction string, view []booking.LectureView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 *Доступные лекции в направлении* _%s_:\n\n", format.EscapeMarkdown(direction))
	for i, lv := range view {
		status := "🟢"
		if lv.Booked {
			status = "🔴"
		}
		fmt.Fprintf(&b, "%s %d. %s\n\n", status, i+1, format.EscapeMarkdown(lv.Title))
	}
	b.WriteString("Введите номер лекции, чтобы забронировать.")
	return b.String()
}

func renderBookings(bookings []storage.Booking) (string, *tele.ReplyMarkup) {
	var b strings.Builder
	b.WriteString("📖 *Ваши лекции:*\n\n")
	rows := make([][]keyboard.InlineBtn, 0, len(bookings))
	for i, bk := range bookings {
		fmt.Fprintf(&b, "📌 *%d. %s* (%s)\n\n",
			i+1, format.EscapeMarkdown(bk.Lecture), format.EscapeMarkdown(bk.Direction))
		id := strconv.FormatInt(bk.ID, 10)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: fmt.Sprintf("✔ Завершить %d", i+1), Unique: cbComplete, Data: id},
			{Text: fmt.Sprintf("❌ Отменить %d", i+1), Unique: cbCancel, Data: id},
		})
	}
	return b.String(), keyboard.InlineButtonsRows(rows...)
}

func renderManaged(res booking.Result) string {
	lecture := format.EscapeMarkdown(res.Lecture)
	if res.Action == booking.ActionComplete {
		return fmt.Sprintf("✅ Лекция *'%s'* завершена!", lecture)
	}
	return fmt.Sprintf("🔄 Лекция *'%s'* отменена.", lecture)
}

func renderDirectionTotals(totals []storage.DirectionTotal) string {
	if len(totals) == 0 {
		return "Бронирований нет."
	}
	var b strings.Builder
	b.WriteString("*Бронирования по направлениям:*\n\n")
	for _, t := range totals {
		fmt.Fprintf(&b, "%s: %d\n", format.EscapeMarkdown(t.Direction), t.Total)
	}
	return b.String()
}
