package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrNoDualRole is returned when a role choice is made for a session
	// that does not hold both roles.
	ErrNoDualRole = errors.New("session: role choice requires both roles")
	// ErrInvalidRole is returned for a role choice other than customer or
	// courier.
	ErrInvalidRole = errors.New("session: role must be customer or courier")
)

// State is a snapshot of the shared session state.
type State struct {
	Session      Session
	LoggedIn     bool
	Mode         RoleMode
	HasBothRoles bool
}

// loggedOut is the state before login and after logout.
var loggedOut = State{Mode: ModeUnauthorized}

type observer struct {
	id int
	fn func(State)
}

// Manager is the single source of truth for the current session. Screens
// read it through State and learn about changes through Subscribe; it is
// mutated only by SetSession, Logout, Bootstrap and the role choice.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	observers []observer
	nextID    int
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger, state: loggedOut}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to run after every change, in registration order,
// on the goroutine that made the change. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, observer{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// SetSession makes s the current session and persists it. The in-memory
// state changes even if persisting fails; the error is returned so the
// caller can report it.
func (m *Manager) SetSession(ctx context.Context, s Session) error {
	m.apply(s)

	data, err := Encode(s)
	if err == nil {
		err = m.store.Set(ctx, SessionKey, data)
	}
	if err != nil {
		m.logger.Warn("persist session failed", "error", err)
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Logout clears the session from memory and from storage. Memory is always
// cleared; a storage failure is logged and returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.set(loggedOut)

	if err := m.store.Remove(ctx, SessionKey); err != nil {
		m.logger.Warn("clear persisted session failed", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Bootstrap restores a persisted session. A missing, unreadable or
// malformed record leaves the manager logged out; it never fails.
func (m *Manager) Bootstrap(ctx context.Context) State {
	data, ok, err := m.store.Get(ctx, SessionKey)
	switch {
	case err != nil:
		m.logger.Warn("restore session failed", "error", err)
		m.set(loggedOut)
	case !ok:
		m.set(loggedOut)
	default:
		s, err := Decode(data)
		if err != nil {
			m.logger.Warn("discarding persisted session", "error", err)
			m.set(loggedOut)
			break
		}
		m.apply(s)
	}
	return m.State()
}

// ChooseRole narrows a dual-role session to one role for the rest of the
// process lifetime. The choice is not persisted.
func (m *Manager) ChooseRole(mode RoleMode) error {
	if mode != ModeCustomer && mode != ModeCourier {
		return ErrInvalidRole
	}
	m.mu.Lock()
	if !m.state.HasBothRoles {
		m.mu.Unlock()
		return ErrNoDualRole
	}
	m.state.Mode = mode
	st := m.state
	obs := m.snapshotObservers()
	m.mu.Unlock()

	notify(obs, st)
	return nil
}

// ResetRoleChoice returns a dual-role session to the role selection.
func (m *Manager) ResetRoleChoice() error {
	m.mu.Lock()
	if !m.state.HasBothRoles {
		m.mu.Unlock()
		return ErrNoDualRole
	}
	m.state.Mode = ModeBoth
	st := m.state
	obs := m.snapshotObservers()
	m.mu.Unlock()

	notify(obs, st)
	return nil
}

func (m *Manager) apply(s Session) {
	r := Resolve(s)
	m.set(State{
		Session:      s,
		LoggedIn:     true,
		Mode:         r.Mode,
		HasBothRoles: r.HasBothRoles,
	})
}

func (m *Manager) set(st State) {
	m.mu.Lock()
	m.state = st
	obs := m.snapshotObservers()
	m.mu.Unlock()

	notify(obs, st)
}

func (m *Manager) snapshotObservers() []observer {
	return append([]observer(nil), m.observers...)
}

func notify(obs []observer, st State) {
	for _, o := range obs {
		o.fn(st)
	}
}
