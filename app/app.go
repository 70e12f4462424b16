// Package app wires the session, navigation and API client together and
// hands out screens bound to them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rocket-food-delivery/client"
	"rocket-food-delivery/config"
	"rocket-food-delivery/navigation"
	"rocket-food-delivery/screens"
	"rocket-food-delivery/session"
)

// ErrRedirected is wrapped by Enter when the guard sends the user elsewhere.
var ErrRedirected = errors.New("app: redirected")

type App struct {
	Sessions  *session.Manager
	Navigator *navigation.Navigator
	API       *client.Client

	logger  *slog.Logger
	unsub   func()
	closers []func() error
}

// New assembles an app on store and api. The API token follows the session.
func New(store session.Store, api *client.Client, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	sessions := session.NewManager(store, logger)
	a := &App{
		Sessions: sessions,
		API:      api,
		logger:   logger,
	}
	a.unsub = sessions.Subscribe(func(st session.State) {
		api.SetToken(st.Session.Token)
	})
	a.Navigator = navigation.NewNavigator(sessions, logger)
	return a
}

// Open builds an app from configuration, persisting the session in the
// sqlite file at cfg.SessionDB.
func Open(cfg config.Config, logger *slog.Logger) (*App, error) {
	store, err := session.OpenSQLStore(cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	api := client.New(cfg.APIURL, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(logger))
	a := New(store, api, logger)
	a.closers = append(a.closers, store.Close)
	return a, nil
}

// Start restores the persisted session and shows the entry screen, which
// redirects a restored session to its home.
func (a *App) Start(ctx context.Context) (navigation.Screen, error) {
	st := a.Sessions.Bootstrap(ctx)
	a.logger.Debug("session restored", "logged_in", st.LoggedIn, "mode", st.Mode)
	return a.Navigator.Navigate(navigation.Authentication)
}

// Enter navigates to s and fails with ErrRedirected if another screen is
// shown instead.
func (a *App) Enter(s navigation.Screen) error {
	shown, err := a.Navigator.Navigate(s)
	if err != nil {
		return err
	}
	if shown != s {
		return fmt.Errorf("%w: %s is not available, showing %s", ErrRedirected, s, shown)
	}
	return nil
}

func (a *App) Close() error {
	a.Navigator.Close()
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) Authentication() *screens.Authentication {
	return screens.NewAuthentication(a.API, a.Sessions, a.logger)
}

func (a *App) RoleSelection() *screens.RoleSelection { return screens.NewRoleSelection(a.Sessions) }
func (a *App) Unauthorized() *screens.Unauthorized   { return screens.NewUnauthorized(a.Sessions) }

func (a *App) Restaurants() *screens.Restaurants {
	return screens.NewRestaurants(a.API, a.logger)
}

func (a *App) Menu(r client.Restaurant) *screens.Menu {
	return screens.NewMenu(a.API, a.Sessions, r, a.logger)
}

func (a *App) OrderHistory() *screens.OrderHistory {
	return screens.NewOrderHistory(a.API, a.Sessions, a.logger)
}

func (a *App) Deliveries() *screens.Deliveries {
	return screens.NewDeliveries(a.API, a.Sessions, a.logger)
}

func (a *App) CustomerAccount() *screens.Account {
	return screens.NewCustomerAccount(a.API, a.Sessions, a.logger)
}

func (a *App) CourierAccount() *screens.Account {
	return screens.NewCourierAccount(a.API, a.Sessions, a.logger)
}
