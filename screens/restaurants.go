package screens

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"rocket-food-delivery/client"
	"rocket-food-delivery/session"
)

// Restaurants is the customer home: the filterable restaurant list.
type Restaurants struct {
	lifetime
	api    API
	logger *slog.Logger

	filter client.RestaurantFilter
	list   []client.Restaurant
}

func NewRestaurants(api API, logger *slog.Logger) *Restaurants {
	return &Restaurants{api: api, logger: orDefault(logger)}
}

// Load fetches the list for the current filter. A failed fetch shows an
// empty list.
func (r *Restaurants) Load(ctx context.Context) error {
	gen, ok := r.generation()
	if !ok {
		return ErrNotMounted
	}
	var f client.RestaurantFilter
	r.locked(func() { f = r.filter })

	list, err := r.api.Restaurants(ctx, f)
	if err != nil {
		r.logger.Warn("restaurants: fetch failed", "error", err)
		list = nil
	}
	r.apply(gen, func() {
		if r.filter == f {
			r.list = list
		}
	})
	return err
}

// SetFilter replaces the filter and reloads.
func (r *Restaurants) SetFilter(ctx context.Context, f client.RestaurantFilter) error {
	r.locked(func() { r.filter = f })
	return r.Load(ctx)
}

func (r *Restaurants) Filter() client.RestaurantFilter {
	var f client.RestaurantFilter
	r.locked(func() { f = r.filter })
	return f
}

func (r *Restaurants) List() []client.Restaurant {
	var out []client.Restaurant
	r.locked(func() { out = slices.Clone(r.list) })
	return out
}

// SubmitStatus tracks an order submission.
type SubmitStatus string

const (
	SubmitIdle       SubmitStatus = "idle"
	SubmitProcessing SubmitStatus = "processing"
	SubmitSuccess    SubmitStatus = "success"
	SubmitFailure    SubmitStatus = "failure"
)

var (
	ErrEmptyOrder = errors.New("screens: no products selected")
	ErrSubmitted  = errors.New("screens: order already submitted")
)

// SummaryLine is one selected product in the order summary.
type SummaryLine struct {
	Product  client.Product
	Quantity int
	Total    int // cents
}

// Menu shows a restaurant's products and builds an order from them.
type Menu struct {
	lifetime
	api      API
	sessions *session.Manager
	logger   *slog.Logger

	restaurant client.Restaurant
	products   []client.Product
	quantities map[int64]int
	status     SubmitStatus
	order      client.Order
}

func NewMenu(api API, sessions *session.Manager, restaurant client.Restaurant, logger *slog.Logger) *Menu {
	return &Menu{
		api:        api,
		sessions:   sessions,
		logger:     orDefault(logger),
		restaurant: restaurant,
		quantities: make(map[int64]int),
		status:     SubmitIdle,
	}
}

func (m *Menu) Restaurant() client.Restaurant { return m.restaurant }

// Load fetches the menu. A failed fetch shows no products.
func (m *Menu) Load(ctx context.Context) error {
	gen, ok := m.generation()
	if !ok {
		return ErrNotMounted
	}
	products, err := m.api.Products(ctx, m.restaurant.ID)
	if err != nil {
		m.logger.Warn("menu: fetch failed", "restaurant_id", m.restaurant.ID, "error", err)
		products = nil
	}
	m.apply(gen, func() {
		m.products = products
		for id := range m.quantities {
			if m.product(id) == nil {
				delete(m.quantities, id)
			}
		}
	})
	return err
}

func (m *Menu) Products() []client.Product {
	var out []client.Product
	m.locked(func() { out = slices.Clone(m.products) })
	return out
}

func (m *Menu) product(id int64) *client.Product {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i]
		}
	}
	return nil
}

// SetQuantity sets how many of a product to order. Negative quantities
// are clamped to zero; unknown products are ignored.
func (m *Menu) SetQuantity(productID int64, q int) {
	m.locked(func() {
		if m.product(productID) == nil {
			return
		}
		m.quantities[productID] = max(q, 0)
	})
}

func (m *Menu) Increment(productID int64) { m.SetQuantity(productID, m.Quantity(productID)+1) }
func (m *Menu) Decrement(productID int64) { m.SetQuantity(productID, m.Quantity(productID)-1) }

func (m *Menu) Quantity(productID int64) int {
	var q int
	m.locked(func() { q = m.quantities[productID] })
	return q
}

// CanOrder reports whether at least one product has a positive quantity.
func (m *Menu) CanOrder() bool {
	var ok bool
	m.locked(func() { ok = len(m.summary()) > 0 })
	return ok
}

// Summary lists the selected products in menu order.
func (m *Menu) Summary() []SummaryLine {
	var out []SummaryLine
	m.locked(func() { out = m.summary() })
	return out
}

func (m *Menu) summary() []SummaryLine {
	var out []SummaryLine
	for _, p := range m.products {
		if q := m.quantities[p.ID]; q > 0 {
			out = append(out, SummaryLine{Product: p, Quantity: q, Total: p.Cost * q})
		}
	}
	return out
}

// Total is the order total in cents.
func (m *Menu) Total() int {
	total := 0
	for _, l := range m.Summary() {
		total += l.Total
	}
	return total
}

func (m *Menu) Status() SubmitStatus {
	var s SubmitStatus
	m.locked(func() { s = m.status })
	return s
}

// Order returns the order created by a successful Submit.
func (m *Menu) Order() client.Order {
	var o client.Order
	m.locked(func() { o = m.order })
	return o
}

// Submit places the order for the logged-in customer. A failed submission
// can be retried; a successful one cannot.
func (m *Menu) Submit(ctx context.Context) (client.Order, error) {
	gen, ok := m.generation()
	if !ok {
		return client.Order{}, ErrNotMounted
	}

	var (
		lines []SummaryLine
		err   error
	)
	m.locked(func() {
		switch m.status {
		case SubmitProcessing, SubmitSuccess:
			err = ErrSubmitted
			return
		}
		lines = m.summary()
		if len(lines) == 0 {
			err = ErrEmptyOrder
			return
		}
		m.status = SubmitProcessing
	})
	if err != nil {
		return client.Order{}, err
	}

	req := client.NewOrder{
		RestaurantID: m.restaurant.ID,
		CustomerID:   m.sessions.State().Session.RoleID(session.ModeCustomer),
	}
	for _, l := range lines {
		req.Products = append(req.Products, client.OrderLine{ID: l.Product.ID, Quantity: l.Quantity})
	}

	order, err := m.api.CreateOrder(ctx, req)
	if err != nil {
		m.logger.Warn("menu: order failed", "restaurant_id", m.restaurant.ID, "error", err)
		if !m.apply(gen, func() { m.status = SubmitFailure }) {
			m.locked(func() { m.status = SubmitIdle })
		}
		return client.Order{}, err
	}
	if !m.apply(gen, func() {
		m.status = SubmitSuccess
		m.order = order
	}) {
		m.locked(func() { m.status = SubmitIdle })
	}
	return order, nil
}

// Reset clears the selection and the submission result.
func (m *Menu) Reset() {
	m.locked(func() {
		clear(m.quantities)
		m.status = SubmitIdle
		m.order = client.Order{}
	})
}
