package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"lectobot/core/logger"
	"lectobot/core/telegram/callbacks"
	"lectobot/core/telegram/format"
	tghelpers "lectobot/core/telegram/helpers"
	"lectobot/internal/booking"
	"lectobot/internal/content"
	"lectobot/internal/storage"
)

const (
	msgInternalError   = "Что-то пошло не так. Попробуйте позже."
	msgInvalidNumber   = "⚠️ Некорректный номер лекции. Попробуйте снова."
	msgBookingNotFound = "⚠ Лекция не найдена."
)

func nickname(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	user := c.Sender()
	nick := nickname(user)
	if err := a.store.RegisterUser(ctx, user.ID, nick); err != nil {
		logger.Error(ctx, "app", "user.register",
			slog.Int64("user_id", user.ID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	a.sessions.Reset(user.ID)
	greeting := fmt.Sprintf("Привет, @%s! Добро пожаловать в бот контент-отдела!", nick)
	return tghelpers.SendText(c, greeting, &tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (a *App) handleBooksMenu(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	return a.sessions.Do(userID, func() error {
		names, err := a.content.Categories(content.KindBooks)
		if err != nil {
			logger.Error(ctx, "app", "content.categories",
				slog.Int64("user_id", userID),
				slog.String("kind", string(content.KindBooks)),
				slog.String("err", err.Error()),
			)
			return tghelpers.SendText(c, msgInternalError)
		}
		a.sessions.SetState(userID, stateBooksMenu)
		return tghelpers.SendText(c, "Выбери направление:",
			&tele.SendOptions{ReplyMarkup: categoryMenu(names)})
	})
}

func (a *App) handleInfoMenu(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	return a.sessions.Do(userID, func() error {
		names, err := a.content.Categories(content.KindInfo)
		if err != nil {
			logger.Error(ctx, "app", "content.categories",
				slog.Int64("user_id", userID),
				slog.String("kind", string(content.KindInfo)),
				slog.String("err", err.Error()),
			)
			return tghelpers.SendText(c, msgInternalError)
		}
		a.sessions.SetState(userID, stateInfoMenu)
		return tghelpers.SendText(c, "Нажми на кнопку, чтобы получить полезную информацию:",
			&tele.SendOptions{ReplyMarkup: categoryMenu(names)})
	})
}

func (a *App) handleLecturesMenu(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	return a.sessions.Do(userID, func() error {
		directions, err := a.booking.Open(userID)
		if err != nil {
			logger.Error(ctx, "app", "content.categories",
				slog.Int64("user_id", userID),
				slog.String("kind", string(content.KindLectures)),
				slog.String("err", err.Error()),
			)
			return tghelpers.SendText(c, msgInternalError)
		}
		return tghelpers.SendText(c, "Выбери направление лекций:",
			&tele.SendOptions{ReplyMarkup: categoryMenu(directions)})
	})
}

func (a *App) handleMyBookings(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	bookings, err := a.store.UserBookings(ctx, userID)
	if err != nil {
		logger.Error(ctx, "app", "bookings.list",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	if len(bookings) == 0 {
		return tghelpers.SendText(c, "📭 У вас нет забронированных лекций.")
	}
	text, markup := renderBookings(bookings)
	return tghelpers.SendMD(c, text, markup)
}

func (a *App) handleBackToMenu(c tele.Context) error {
	userID := c.Sender().ID
	return a.sessions.Do(userID, func() error {
		a.booking.Abort(userID)
		return tghelpers.SendText(c, "Возвращаюсь в главное меню...",
			&tele.SendOptions{ReplyMarkup: mainMenu()})
	})
}

func (a *App) onBookName(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	name := strings.TrimSpace(c.Text())
	link, err := a.content.BookLink(name)
	if errors.Is(err, content.ErrNotFound) {
		return tghelpers.SendText(c, fmt.Sprintf("❌ Направление '%s' не найдено.", name))
	}
	if err != nil {
		logger.Error(ctx, "app", "content.book",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("name", name),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	return tghelpers.SendText(c, "Вот ссылка на литературу: "+link)
}

func (a *App) onInfoName(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	name := strings.TrimSpace(c.Text())
	info, err := a.content.Info(name)
	if errors.Is(err, content.ErrNotFound) {
		return tghelpers.SendText(c, fmt.Sprintf("❌ Направление '%s' не найдено.", name))
	}
	if err != nil {
		logger.Error(ctx, "app", "content.info",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("name", name),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	if info.Text != "" {
		return tghelpers.SendText(c, info.Text)
	}
	return tghelpers.SendDocument(c, info.PDFPath, name+".pdf")
}

func (a *App) onDirection(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	direction := strings.TrimSpace(c.Text())
	view, err := a.booking.SelectDirection(ctx, userID, direction)
	if errors.Is(err, content.ErrNotFound) {
		return tghelpers.SendText(c, fmt.Sprintf("❌ Направление '%s' не найдено.", direction))
	}
	if err != nil {
		logger.Error(ctx, "app", "booking.direction",
			slog.Int64("user_id", userID),
			slog.String("direction", direction),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	return tghelpers.SendMD(c, renderRosterView(direction, view))
}

func (a *App) onLectureNumber(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	n, convErr := strconv.Atoi(strings.TrimSpace(c.Text()))
	if convErr != nil {
		return tghelpers.SendText(c, msgInvalidNumber)
	}

	lecture, err := a.booking.BookByNumber(ctx, userID, n)
	switch {
	case errors.Is(err, content.ErrNotFound):
		return tghelpers.SendText(c, "❌ Ошибка: направление не найдено.")
	case errors.Is(err, booking.ErrInvalidSelection):
		return tghelpers.SendText(c, msgInvalidNumber)
	case errors.Is(err, storage.ErrAlreadyBooked):
		return tghelpers.SendMD(c, fmt.Sprintf("⚠️ Лекция *'%s'* уже забронирована.",
			format.EscapeMarkdown(lecture)))
	case err != nil:
		logger.Error(ctx, "app", "booking.create",
			slog.Int64("user_id", userID),
			slog.Int("number", n),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	return tghelpers.SendMD(c, fmt.Sprintf("✅ Лекция *'%s'* успешно забронирована!",
		format.EscapeMarkdown(lecture)))
}

func (a *App) manageHandler(action booking.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		userID := c.Sender().ID
		id, err := callbacks.PayloadInt64(c)
		if err != nil {
			return tghelpers.SendText(c, msgBookingNotFound)
		}
		res, err := a.booking.Manage(ctx, userID, id, action)
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.SendText(c, msgBookingNotFound)
		}
		if err != nil {
			logger.Error(ctx, "app", "booking.manage",
				slog.Int64("user_id", userID),
				slog.Int64("booking_id", id),
				slog.String("action", string(action)),
				slog.String("err", err.Error()),
			)
			return tghelpers.SendText(c, msgInternalError)
		}
		return tghelpers.EditMD(c, renderManaged(res))
	}
}

func (a *App) handleDirectionTotals(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	totals, err := a.store.DirectionTotals(ctx)
	if err != nil {
		logger.Error(ctx, "app", "bookings.totals",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgInternalError)
	}
	return tghelpers.SendMD(c, renderDirectionTotals(totals))
}
