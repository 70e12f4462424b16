package screens

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"rocket-food-delivery/client"
	"rocket-food-delivery/session"
)

const (
	InvalidCredentials = "Invalid email or password"
	Unreachable        = "Unable to reach the server"
)

// ErrNotMounted is returned by actions on a screen that is not mounted.
var ErrNotMounted = errors.New("screens: screen is not mounted")

// Authentication is the login screen. A successful login replaces the
// session; navigation follows from the session change.
type Authentication struct {
	lifetime
	api      API
	sessions *session.Manager
	logger   *slog.Logger

	errorMessage string
	busy         bool
}

func NewAuthentication(api API, sessions *session.Manager, logger *slog.Logger) *Authentication {
	return &Authentication{api: api, sessions: sessions, logger: orDefault(logger)}
}

// Login submits the credentials. On rejection ErrorMessage is set and the
// session is left untouched.
func (a *Authentication) Login(ctx context.Context, email, password string) error {
	gen, ok := a.generation()
	if !ok {
		return ErrNotMounted
	}
	a.apply(gen, func() {
		a.busy = true
		a.errorMessage = ""
	})

	s, err := a.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		msg := Unreachable
		if errors.Is(err, client.ErrInvalidCredentials) {
			msg = InvalidCredentials
		} else {
			a.logger.Warn("login failed", "error", err)
		}
		a.apply(gen, func() {
			a.busy = false
			a.errorMessage = msg
		})
		return err
	}

	// The session is process-wide, so it is kept even if the screen went
	// away while the request was in flight.
	a.apply(gen, func() { a.busy = false })
	return a.sessions.SetSession(ctx, s)
}

func (a *Authentication) ErrorMessage() string {
	var msg string
	a.locked(func() { msg = a.errorMessage })
	return msg
}

func (a *Authentication) Busy() bool {
	var busy bool
	a.locked(func() { busy = a.busy })
	return busy
}

// RoleSelection lets a user holding both roles pick one for this run.
type RoleSelection struct {
	sessions *session.Manager
}

func NewRoleSelection(sessions *session.Manager) *RoleSelection {
	return &RoleSelection{sessions: sessions}
}

func (r *RoleSelection) Choose(mode session.RoleMode) error {
	return r.sessions.ChooseRole(mode)
}

// Unauthorized is shown to a logged-in user without a role.
type Unauthorized struct {
	sessions *session.Manager
}

func NewUnauthorized(sessions *session.Manager) *Unauthorized {
	return &Unauthorized{sessions: sessions}
}

// Acknowledge logs out, returning the user to the login screen.
func (u *Unauthorized) Acknowledge(ctx context.Context) error {
	return u.sessions.Logout(ctx)
}
