package app

import (
	tele "gopkg.in/telebot.v4"

	"lectobot/core/telegram/keyboard"
	"lectobot/core/telegram/state"
)

// Main menu and universal control labels. Button text is the routing key for
// these, so the labels double as endpoint identifiers.
const (
	btnBooks      = "📚 Ссылки на книги"
	btnInfo       = "ℹ️ Полезная информация"
	btnLectures   = "📅 Доступные лекции"
	btnMyBookings = "📖 Мои лекции"
	btnBackToMenu = "🔙 Возврат в меню"
)

// Browse states: while set, plain text is interpreted as a category name.
const (
	stateBooksMenu state.State = "books_menu"
	stateInfoMenu  state.State = "info_menu"
)

const (
	cbComplete = "complete"
	cbCancel   = "cancel"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyColumn(btnBooks, btnInfo, btnLectures, btnMyBookings)
}

// categoryMenu renders one button per category name plus the universal
// back-to-menu control.
func categoryMenu(names []string) *tele.ReplyMarkup {
	labels := make([]string, 0, len(names)+1)
	labels = append(labels, names...)
	labels = append(labels, btnBackToMenu)
	return keyboard.ReplyColumn(labels...)
}
