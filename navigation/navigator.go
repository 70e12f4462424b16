package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"rocket-food-delivery/session"
)

// maxRedirects bounds a redirect chain. The guard table needs at most two
// hops (e.g. courier screen → Authentication → RoleSelection).
const maxRedirects = 4

// ErrRedirectLoop is returned when a redirect chain does not settle.
var ErrRedirectLoop = errors.New("navigation: redirect loop")

// Listener is told about every screen change.
type Listener func(from, to Screen)

// Navigator tracks the current screen and keeps it consistent with the
// session: it re-evaluates the current screen's guard whenever the session
// changes.
type Navigator struct {
	sessions *session.Manager
	logger   *slog.Logger
	unsub    func()

	mu        sync.Mutex
	current   Screen
	listeners []Listener
}

// NewNavigator starts on Authentication and subscribes to sessions. Call
// Close to unsubscribe.
func NewNavigator(sessions *session.Manager, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Navigator{sessions: sessions, logger: logger, current: Authentication}
	n.unsub = sessions.Subscribe(n.sessionChanged)
	return n
}

// Close stops following session changes.
func (n *Navigator) Close() {
	if n.unsub != nil {
		n.unsub()
		n.unsub = nil
	}
}

// Current returns the screen on display.
func (n *Navigator) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// OnChange registers l for screen changes.
func (n *Navigator) OnChange(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Navigate requests screen to, following guard redirects. It returns the
// screen actually shown. On ErrRedirectLoop the current screen is kept.
func (n *Navigator) Navigate(to Screen) (Screen, error) {
	return n.settle(to, n.sessions.State())
}

// Resolve reports where a navigation to s would land without changing the
// current screen.
func Resolve(s Screen, st session.State) (Screen, error) {
	seen := s
	for i := 0; i <= maxRedirects; i++ {
		d := Guard(seen, st)
		if d.Proceed {
			return seen, nil
		}
		seen = d.Redirect
	}
	return "", fmt.Errorf("%w starting at %s", ErrRedirectLoop, s)
}

func (n *Navigator) sessionChanged(st session.State) {
	if _, err := n.settle(n.Current(), st); err != nil {
		n.logger.Error("re-evaluating screen failed", "screen", n.Current(), "error", err)
	}
}

func (n *Navigator) settle(to Screen, st session.State) (Screen, error) {
	target, err := Resolve(to, st)
	if err != nil {
		return n.Current(), err
	}

	n.mu.Lock()
	from := n.current
	n.current = target
	listeners := append([]Listener(nil), n.listeners...)
	n.mu.Unlock()

	if target != to {
		n.logger.Debug("redirected", "requested", to, "shown", target, "mode", st.Mode)
	}
	if from != target {
		for _, l := range listeners {
			l(from, target)
		}
	}
	return target, nil
}
