// Package screens holds the state and actions behind each app screen.
//
// Screens are driven from a single caller but may have their network
// calls finish after the user has moved on. Each screen is mounted for a
// lifetime; results that arrive after Unmount, or after a later Mount,
// are discarded instead of applied.
package screens

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"rocket-food-delivery/client"
	"rocket-food-delivery/models"
	"rocket-food-delivery/session"
)

// API is the part of the REST client the screens use.
type API interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	Restaurants(ctx context.Context, f client.RestaurantFilter) ([]client.Restaurant, error)
	Products(ctx context.Context, restaurantID int64) ([]client.Product, error)
	CreateOrder(ctx context.Context, o client.NewOrder) (client.Order, error)
	Orders(ctx context.Context, roleID session.ID, role models.UserRole) ([]client.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (client.Order, error)
	Account(ctx context.Context, roleID session.ID, role models.UserRole) (client.Account, error)
	UpdateAccount(ctx context.Context, roleID session.ID, role models.UserRole, email, phone string) (client.Account, error)
}

var _ API = (*client.Client)(nil)

// lifetime ties in-flight work to a mounted screen. Its mutex also guards
// the state of the screen that embeds it.
type lifetime struct {
	mu      sync.Mutex
	mounted bool
	gen     int
	cancel  context.CancelFunc
}

// Mount starts a new lifetime and returns its context, cancelled on Unmount.
func (l *lifetime) Mount(parent context.Context) context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.mounted = true
	l.gen++
	l.cancel = cancel
	return ctx
}

// Unmount ends the lifetime; pending results will be dropped.
func (l *lifetime) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mounted = false
}

func (l *lifetime) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}

// generation returns the current mount generation, or ok=false when the
// screen is not mounted.
func (l *lifetime) generation() (gen int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen, l.mounted
}

// apply runs fn under the screen lock if the lifetime that started the
// work is still current.
func (l *lifetime) apply(gen int, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted || l.gen != gen {
		return false
	}
	fn()
	return true
}

func (l *lifetime) locked(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// FormatCents renders an amount in cents as dollars, e.g. "$1,234.50".
func FormatCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", float64(cents)/100)
}

// PriceTier renders a price range as dollar signs.
func PriceTier(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("$", n)
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
