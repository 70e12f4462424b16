package screens

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"rocket-food-delivery/client"
	"rocket-food-delivery/models"
	"rocket-food-delivery/session"
	"rocket-food-delivery/statemachine"
)

var (
	ErrUnknownOrder = errors.New("screens: order is not in the list")
	ErrInFlight     = errors.New("screens: status update already in flight")
)

// OrderHistory lists the customer's orders.
type OrderHistory struct {
	lifetime
	api      API
	sessions *session.Manager
	logger   *slog.Logger

	orders []client.Order
}

func NewOrderHistory(api API, sessions *session.Manager, logger *slog.Logger) *OrderHistory {
	return &OrderHistory{api: api, sessions: sessions, logger: orDefault(logger)}
}

// Load fetches the history; it also serves as pull-to-refresh. A failed
// fetch shows an empty list.
func (h *OrderHistory) Load(ctx context.Context) error {
	gen, ok := h.generation()
	if !ok {
		return ErrNotMounted
	}
	id := h.sessions.State().Session.RoleID(session.ModeCustomer)
	orders, err := h.api.Orders(ctx, id, models.RoleCustomer)
	if err != nil {
		h.logger.Warn("order history: fetch failed", "customer_id", id, "error", err)
		orders = nil
	}
	h.apply(gen, func() { h.orders = orders })
	return err
}

func (h *OrderHistory) Orders() []client.Order {
	var out []client.Order
	h.locked(func() { out = slices.Clone(h.orders) })
	return out
}

// Order returns one order for the detail view.
func (h *OrderHistory) Order(id int64) (client.Order, bool) {
	var (
		o  client.Order
		ok bool
	)
	h.locked(func() {
		i := slices.IndexFunc(h.orders, func(o client.Order) bool { return o.ID == id })
		if i >= 0 {
			o, ok = h.orders[i], true
		}
	})
	return o, ok
}

// Deliveries is the courier home: assigned orders with a status toggle.
//
// Every applied change bumps a revision. A list fetch that started before
// the latest change is discarded when it lands, so a stale list never
// overwrites a status the courier just set.
type Deliveries struct {
	lifetime
	api      API
	sessions *session.Manager
	logger   *slog.Logger

	orders   []client.Order
	revision int
	inFlight map[int64]bool
}

func NewDeliveries(api API, sessions *session.Manager, logger *slog.Logger) *Deliveries {
	return &Deliveries{
		api:      api,
		sessions: sessions,
		logger:   orDefault(logger),
		inFlight: make(map[int64]bool),
	}
}

// Load fetches the courier's orders. A failed fetch shows an empty list.
func (d *Deliveries) Load(ctx context.Context) error {
	gen, ok := d.generation()
	if !ok {
		return ErrNotMounted
	}
	var rev int
	d.locked(func() { rev = d.revision })

	id := d.sessions.State().Session.RoleID(session.ModeCourier)
	orders, err := d.api.Orders(ctx, id, models.RoleCourier)
	if err != nil {
		d.logger.Warn("deliveries: fetch failed", "courier_id", id, "error", err)
		orders = nil
	}
	d.apply(gen, func() {
		if d.revision != rev {
			d.logger.Debug("deliveries: dropped stale list", "revision", rev, "current", d.revision)
			return
		}
		d.orders = orders
		d.revision++
	})
	return err
}

func (d *Deliveries) Orders() []client.Order {
	var out []client.Order
	d.locked(func() { out = slices.Clone(d.orders) })
	return out
}

func (d *Deliveries) Revision() int {
	var rev int
	d.locked(func() { rev = d.revision })
	return rev
}

// Advance moves an order one step forward. Advancing a delivered order
// does nothing. On success the list entry is replaced in place; on
// failure the list is left as it was.
func (d *Deliveries) Advance(ctx context.Context, orderID int64) (client.Order, error) {
	gen, ok := d.generation()
	if !ok {
		return client.Order{}, ErrNotMounted
	}

	var (
		current client.Order
		next    models.OrderStatus
		noop    bool
		err     error
	)
	d.locked(func() {
		i := slices.IndexFunc(d.orders, func(o client.Order) bool { return o.ID == orderID })
		if i < 0 {
			err = ErrUnknownOrder
			return
		}
		current = d.orders[i]
		var more bool
		if next, more = statemachine.Next(current.Status); !more {
			noop = true
			return
		}
		if d.inFlight[orderID] {
			err = ErrInFlight
			return
		}
		d.inFlight[orderID] = true
	})
	if err != nil || noop {
		return current, err
	}
	defer d.locked(func() { delete(d.inFlight, orderID) })

	updated, err := d.api.UpdateOrderStatus(ctx, orderID, next)
	if err != nil {
		d.logger.Warn("deliveries: status update failed",
			"order_id", orderID, "from", current.Status, "to", next, "error", err)
		return current, err
	}

	d.apply(gen, func() {
		i := slices.IndexFunc(d.orders, func(o client.Order) bool { return o.ID == orderID })
		if i < 0 {
			return
		}
		d.orders[i] = updated
		d.revision++
	})
	return updated, nil
}
