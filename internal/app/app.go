package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	corebootstrap "lectobot/core/bootstrap"
	corecmd "lectobot/core/cmd"
	coretelegram "lectobot/core/telegram"
	"lectobot/core/telegram/commands"
	"lectobot/core/telegram/router"
	"lectobot/core/telegram/state"
	"lectobot/internal/booking"
	"lectobot/internal/content"
	"lectobot/internal/storage"
)

// App is the content-department bot: static content menus plus the lecture
// booking flow.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    storage.Store
	content  *content.Repository
	sessions state.Manager
	booking  *booking.Service
}

// Bootstrap initializes logging, the database, and the domain services.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		db:       res.DB,
		store:    storage.NewPostgresStore(res.DB),
		content:  content.NewRepository(cfg.Content),
		sessions: state.NewMemoryManager(),
	}
	a.booking = booking.NewService(a.sessions, a.store, a.content)
	return a, nil
}

// TelegramRunOptions wires registry endpoints, routes, and middleware.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerEndpoints(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

func (a *App) registerEndpoints(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/bookings", commands.Command{
		Handler:     a.handleDirectionTotals,
		Description: "Бронирования по направлениям",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.RegisterButton(btnBooks, a.handleBooksMenu)
	reg.RegisterButton(btnInfo, a.handleInfoMenu)
	reg.RegisterButton(btnLectures, a.handleLecturesMenu)
	reg.RegisterButton(btnMyBookings, a.handleMyBookings)
	reg.RegisterButton(btnBackToMenu, a.handleBackToMenu)

	_ = reg.RegisterCallback(cbComplete, a.manageHandler(booking.ActionComplete))
	_ = reg.RegisterCallback(cbCancel, a.manageHandler(booking.ActionCancel))

	a.sessions.Handle(stateBooksMenu, a.onBookName)
	a.sessions.Handle(stateInfoMenu, a.onInfoName)
	a.sessions.Handle(booking.StateDirection, a.onDirection)
	a.sessions.Handle(booking.StateLecture, a.onLectureNumber)
}
