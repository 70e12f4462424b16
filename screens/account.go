package screens

import (
	"context"
	"log/slog"
	"strings"

	"rocket-food-delivery/client"
	"rocket-food-delivery/models"
	"rocket-food-delivery/session"
)

// Account shows and edits the contact details of one role. The same
// screen serves the customer and the courier account tabs.
type Account struct {
	lifetime
	api      API
	sessions *session.Manager
	role     models.UserRole
	logger   *slog.Logger

	saved client.Account
	email string
	phone string
	dirty bool
}

func NewCustomerAccount(api API, sessions *session.Manager, logger *slog.Logger) *Account {
	return newAccount(api, sessions, models.RoleCustomer, logger)
}

func NewCourierAccount(api API, sessions *session.Manager, logger *slog.Logger) *Account {
	return newAccount(api, sessions, models.RoleCourier, logger)
}

func newAccount(api API, sessions *session.Manager, role models.UserRole, logger *slog.Logger) *Account {
	return &Account{api: api, sessions: sessions, role: role, logger: orDefault(logger)}
}

func (a *Account) Role() models.UserRole { return a.role }

// LoggedInAs is the role label shown on the screen, e.g. "Customer".
func (a *Account) LoggedInAs() string {
	r := string(a.role)
	return strings.ToUpper(r[:1]) + r[1:]
}

func (a *Account) roleID() session.ID {
	mode := session.ModeCustomer
	if a.role == models.RoleCourier {
		mode = session.ModeCourier
	}
	return a.sessions.State().Session.RoleID(mode)
}

// Load fetches the account and discards unsaved edits.
func (a *Account) Load(ctx context.Context) error {
	gen, ok := a.generation()
	if !ok {
		return ErrNotMounted
	}
	acc, err := a.api.Account(ctx, a.roleID(), a.role)
	if err != nil {
		a.logger.Warn("account: fetch failed", "role", a.role, "error", err)
		return err
	}
	a.apply(gen, func() { a.reset(acc) })
	return nil
}

func (a *Account) reset(acc client.Account) {
	a.saved = acc
	a.email = acc.AccountEmail
	a.phone = acc.AccountPhone
	a.dirty = false
}

// View returns the account as currently edited.
func (a *Account) View() client.Account {
	var v client.Account
	a.locked(func() {
		v = client.Account{PrimaryEmail: a.saved.PrimaryEmail, AccountEmail: a.email, AccountPhone: a.phone}
	})
	return v
}

func (a *Account) SetEmail(email string) {
	a.locked(func() {
		a.email = email
		a.dirty = true
	})
}

func (a *Account) SetPhone(phone string) {
	a.locked(func() {
		a.phone = phone
		a.dirty = true
	})
}

// Dirty reports unsaved edits; saving is only offered while it is true.
func (a *Account) Dirty() bool {
	var d bool
	a.locked(func() { d = a.dirty })
	return d
}

// Save sends the edits. Without edits it does nothing. On failure the
// edits are kept so the user can retry.
func (a *Account) Save(ctx context.Context) error {
	gen, ok := a.generation()
	if !ok {
		return ErrNotMounted
	}
	var (
		email, phone string
		dirty        bool
	)
	a.locked(func() { email, phone, dirty = a.email, a.phone, a.dirty })
	if !dirty {
		return nil
	}

	acc, err := a.api.UpdateAccount(ctx, a.roleID(), a.role, email, phone)
	if err != nil {
		a.logger.Warn("account: save failed", "role", a.role, "error", err)
		return err
	}
	a.apply(gen, func() {
		// Keep edits made while the save was in flight.
		if a.email == email && a.phone == phone {
			a.reset(acc)
			return
		}
		a.saved = acc
	})
	return nil
}
