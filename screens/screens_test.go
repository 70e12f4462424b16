package screens

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket-food-delivery/client"
	"rocket-food-delivery/models"
	"rocket-food-delivery/session"
)

var errBoom = errors.New("boom")

// fakeAPI records calls and delegates to the configured funcs.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	login         func(email, password string) (session.Session, error)
	restaurants   func(client.RestaurantFilter) ([]client.Restaurant, error)
	products      func(int64) ([]client.Product, error)
	createOrder   func(client.NewOrder) (client.Order, error)
	orders        func(session.ID, models.UserRole) ([]client.Order, error)
	updateStatus  func(int64, models.OrderStatus) (client.Order, error)
	account       func(session.ID, models.UserRole) (client.Account, error)
	updateAccount func(id session.ID, role models.UserRole, email, phone string) (client.Account, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (session.Session, error) {
	f.record("login")
	return f.login(email, password)
}

func (f *fakeAPI) Restaurants(_ context.Context, flt client.RestaurantFilter) ([]client.Restaurant, error) {
	f.record("restaurants")
	return f.restaurants(flt)
}

func (f *fakeAPI) Products(_ context.Context, id int64) ([]client.Product, error) {
	f.record("products")
	return f.products(id)
}

func (f *fakeAPI) CreateOrder(_ context.Context, o client.NewOrder) (client.Order, error) {
	f.record("create_order")
	return f.createOrder(o)
}

func (f *fakeAPI) Orders(_ context.Context, id session.ID, role models.UserRole) ([]client.Order, error) {
	f.record("orders")
	return f.orders(id, role)
}

func (f *fakeAPI) UpdateOrderStatus(_ context.Context, id int64, s models.OrderStatus) (client.Order, error) {
	f.record("update_status")
	return f.updateStatus(id, s)
}

func (f *fakeAPI) Account(_ context.Context, id session.ID, role models.UserRole) (client.Account, error) {
	f.record("account")
	return f.account(id, role)
}

func (f *fakeAPI) UpdateAccount(_ context.Context, id session.ID, role models.UserRole, email, phone string) (client.Account, error) {
	f.record("update_account")
	return f.updateAccount(id, role, email, phone)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(t *testing.T, s *session.Session) *session.Manager {
	t.Helper()
	m := session.NewManager(session.NewMemoryStore(), quietLogger())
	if s != nil {
		require.NoError(t, m.SetSession(context.Background(), *s))
	}
	return m
}

func mount(t *testing.T, s interface {
	Mount(context.Context) context.Context
	Unmount()
}) context.Context {
	t.Helper()
	ctx := s.Mount(context.Background())
	t.Cleanup(s.Unmount)
	return ctx
}

func TestFormatCents(t *testing.T) {
	tests := map[int]string{
		0:      "$0.00",
		399:    "$3.99",
		1250:   "$12.50",
		123456: "$1,234.56",
		-150:   "-$1.50",
	}
	for cents, want := range tests {
		assert.Equal(t, want, FormatCents(cents), "cents=%d", cents)
	}
}

func TestPriceTier(t *testing.T) {
	assert.Equal(t, "", PriceTier(0))
	assert.Equal(t, "$", PriceTier(1))
	assert.Equal(t, "$$$", PriceTier(3))
}

func TestActionsRequireMount(t *testing.T) {
	api := &fakeAPI{}
	r := NewRestaurants(api, quietLogger())
	assert.ErrorIs(t, r.Load(context.Background()), ErrNotMounted)
	assert.Zero(t, api.count("restaurants"))
}

func TestResultsAfterUnmountAreDropped(t *testing.T) {
	var r *Restaurants
	api := &fakeAPI{restaurants: func(client.RestaurantFilter) ([]client.Restaurant, error) {
		r.Unmount()
		return []client.Restaurant{{ID: 1, Name: "Sushi"}}, nil
	}}
	r = NewRestaurants(api, quietLogger())
	ctx := r.Mount(context.Background())

	require.NoError(t, r.Load(ctx))
	assert.Empty(t, r.List())
	assert.False(t, r.Mounted())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestResultsFromEarlierMountAreDropped(t *testing.T) {
	var r *Restaurants
	calls := 0
	api := &fakeAPI{restaurants: func(client.RestaurantFilter) ([]client.Restaurant, error) {
		calls++
		if calls == 1 {
			r.Mount(context.Background())
		}
		return []client.Restaurant{{ID: int64(calls)}}, nil
	}}
	r = NewRestaurants(api, quietLogger())
	ctx := mount(t, r)

	require.NoError(t, r.Load(ctx))
	assert.Empty(t, r.List())
	require.NoError(t, r.Load(ctx))
	assert.Equal(t, []client.Restaurant{{ID: 2}}, r.List())
}

func TestAuthenticationLogin(t *testing.T) {
	api := &fakeAPI{login: func(email, password string) (session.Session, error) {
		if email == "erica@example.com" && password == "password" {
			return session.Session{UserID: "2", CustomerID: "5", CourierID: "9"}, nil
		}
		return session.Session{}, client.ErrInvalidCredentials
	}}
	sessions := newManager(t, nil)
	a := NewAuthentication(api, sessions, quietLogger())
	ctx := mount(t, a)

	err := a.Login(ctx, "erica@example.com", "wrong")
	assert.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, InvalidCredentials, a.ErrorMessage())
	assert.False(t, sessions.State().LoggedIn)
	assert.False(t, a.Busy())

	require.NoError(t, a.Login(ctx, " erica@example.com ", "password"))
	assert.Empty(t, a.ErrorMessage())
	st := sessions.State()
	assert.True(t, st.LoggedIn)
	assert.Equal(t, session.ModeBoth, st.Mode)
	assert.True(t, st.HasBothRoles)
}

func TestAuthenticationRejectedInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"customer_id":null,"courier_id":null,"error":"invalid email"}`))
	}))
	t.Cleanup(srv.Close)

	sessions := newManager(t, nil)
	a := NewAuthentication(client.New(srv.URL, client.WithLogger(quietLogger())), sessions, quietLogger())
	ctx := mount(t, a)

	assert.ErrorIs(t, a.Login(ctx, "not-an-email", "pw"), client.ErrInvalidCredentials)
	assert.Equal(t, InvalidCredentials, a.ErrorMessage())
	assert.False(t, sessions.State().LoggedIn)
}

func TestAuthenticationUnreachable(t *testing.T) {
	api := &fakeAPI{login: func(string, string) (session.Session, error) {
		return session.Session{}, errBoom
	}}
	a := NewAuthentication(api, newManager(t, nil), quietLogger())
	ctx := mount(t, a)

	assert.ErrorIs(t, a.Login(ctx, "a@b.c", "x"), errBoom)
	assert.Equal(t, Unreachable, a.ErrorMessage())
}

func TestRoleSelectionAndUnauthorized(t *testing.T) {
	sessions := newManager(t, &session.Session{UserID: "1", CustomerID: "1", CourierID: "1"})

	require.NoError(t, NewRoleSelection(sessions).Choose(session.ModeCourier))
	assert.Equal(t, session.ModeCourier, sessions.State().Mode)

	require.NoError(t, NewUnauthorized(sessions).Acknowledge(context.Background()))
	st := sessions.State()
	assert.False(t, st.LoggedIn)
	assert.Equal(t, session.ModeUnauthorized, st.Mode)
}

func TestRestaurantsFilter(t *testing.T) {
	var got client.RestaurantFilter
	fail := false
	api := &fakeAPI{restaurants: func(f client.RestaurantFilter) ([]client.Restaurant, error) {
		got = f
		if fail {
			return nil, errBoom
		}
		return []client.Restaurant{{ID: 1, Name: "Sushi", Rating: 4, PriceRange: 2}}, nil
	}}
	r := NewRestaurants(api, quietLogger())
	ctx := mount(t, r)

	require.NoError(t, r.Load(ctx))
	assert.Len(t, r.List(), 1)

	f := client.RestaurantFilter{Rating: 4, PriceRange: 2}
	require.NoError(t, r.SetFilter(ctx, f))
	assert.Equal(t, f, got)
	assert.Equal(t, f, r.Filter())

	fail = true
	assert.ErrorIs(t, r.Load(ctx), errBoom)
	assert.Empty(t, r.List())
}

func menuProducts() []client.Product {
	return []client.Product{
		{ID: 1, Name: "Maki", Cost: 1250},
		{ID: 2, Name: "Miso", Cost: 399},
	}
}

func TestMenuSelection(t *testing.T) {
	api := &fakeAPI{products: func(id int64) ([]client.Product, error) {
		assert.Equal(t, int64(7), id)
		return menuProducts(), nil
	}}
	m := NewMenu(api, newManager(t, nil), client.Restaurant{ID: 7, Name: "Sushi"}, quietLogger())
	ctx := mount(t, m)
	require.NoError(t, m.Load(ctx))

	assert.False(t, m.CanOrder())
	m.Decrement(1)
	assert.Equal(t, 0, m.Quantity(1))

	m.SetQuantity(2, 3)
	m.Increment(1)
	m.Increment(1)
	m.SetQuantity(99, 4)

	assert.True(t, m.CanOrder())
	assert.Equal(t, []SummaryLine{
		{Product: menuProducts()[0], Quantity: 2, Total: 2500},
		{Product: menuProducts()[1], Quantity: 3, Total: 1197},
	}, m.Summary())
	assert.Equal(t, 3697, m.Total())

	m.SetQuantity(1, 0)
	m.SetQuantity(2, 0)
	assert.False(t, m.CanOrder())
	assert.Zero(t, m.Total())
}

func TestMenuSubmit(t *testing.T) {
	var sent client.NewOrder
	fail := true
	api := &fakeAPI{
		products: func(int64) ([]client.Product, error) { return menuProducts(), nil },
		createOrder: func(o client.NewOrder) (client.Order, error) {
			sent = o
			if fail {
				return client.Order{}, errBoom
			}
			return client.Order{ID: 11, Status: models.StatusPending, TotalCost: 2500}, nil
		},
	}
	sessions := newManager(t, &session.Session{UserID: "1", CustomerID: "3"})
	m := NewMenu(api, sessions, client.Restaurant{ID: 7}, quietLogger())
	ctx := mount(t, m)
	require.NoError(t, m.Load(ctx))

	_, err := m.Submit(ctx)
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Equal(t, SubmitIdle, m.Status())
	assert.Zero(t, api.count("create_order"))

	m.SetQuantity(1, 2)
	m.SetQuantity(2, 0)
	_, err = m.Submit(ctx)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, SubmitFailure, m.Status())

	fail = false
	order, err := m.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, SubmitSuccess, m.Status())
	assert.Equal(t, int64(11), order.ID)
	assert.Equal(t, order, m.Order())
	assert.Equal(t, client.NewOrder{
		RestaurantID: 7,
		CustomerID:   "3",
		Products:     []client.OrderLine{{ID: 1, Quantity: 2}},
	}, sent)

	_, err = m.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmitted)
	assert.Equal(t, 2, api.count("create_order"))

	m.Reset()
	assert.Equal(t, SubmitIdle, m.Status())
	assert.False(t, m.CanOrder())
}

func TestOrderHistory(t *testing.T) {
	api := &fakeAPI{orders: func(id session.ID, role models.UserRole) ([]client.Order, error) {
		assert.Equal(t, session.ID("3"), id)
		assert.Equal(t, models.RoleCustomer, role)
		return []client.Order{{ID: 2, RestaurantName: "Pasta"}, {ID: 1, RestaurantName: "Sushi"}}, nil
	}}
	h := NewOrderHistory(api, newManager(t, &session.Session{UserID: "1", CustomerID: "3"}), quietLogger())
	ctx := mount(t, h)

	require.NoError(t, h.Load(ctx))
	assert.Len(t, h.Orders(), 2)
	o, ok := h.Order(1)
	require.True(t, ok)
	assert.Equal(t, "Sushi", o.RestaurantName)
	_, ok = h.Order(42)
	assert.False(t, ok)
}

func courierOrders() []client.Order {
	return []client.Order{
		{ID: 3, Status: models.StatusPending},
		{ID: 2, Status: models.StatusInProgress},
		{ID: 1, Status: models.StatusDelivered},
	}
}

func newDeliveries(t *testing.T, api *fakeAPI) (*Deliveries, context.Context) {
	t.Helper()
	if api.orders == nil {
		api.orders = func(id session.ID, role models.UserRole) ([]client.Order, error) {
			assert.Equal(t, session.ID("9"), id)
			assert.Equal(t, models.RoleCourier, role)
			return courierOrders(), nil
		}
	}
	d := NewDeliveries(api, newManager(t, &session.Session{UserID: "2", CourierID: "9"}), quietLogger())
	ctx := mount(t, d)
	require.NoError(t, d.Load(ctx))
	return d, ctx
}

func TestDeliveriesAdvance(t *testing.T) {
	api := &fakeAPI{updateStatus: func(id int64, s models.OrderStatus) (client.Order, error) {
		return client.Order{ID: id, Status: s, CourierName: "Georgy"}, nil
	}}
	d, ctx := newDeliveries(t, api)

	o, err := d.Advance(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, o.Status)

	o, err = d.Advance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)

	list := d.Orders()
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, models.StatusInProgress, list[0].Status)
	assert.Equal(t, "Georgy", list[0].CourierName)
	assert.Equal(t, models.StatusDelivered, list[1].Status)
}

func TestDeliveriesAdvanceDeliveredIsNoop(t *testing.T) {
	api := &fakeAPI{}
	d, ctx := newDeliveries(t, api)
	rev := d.Revision()

	o, err := d.Advance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)
	assert.Zero(t, api.count("update_status"))
	assert.Equal(t, rev, d.Revision())
}

func TestDeliveriesAdvanceFailureKeepsState(t *testing.T) {
	api := &fakeAPI{updateStatus: func(int64, models.OrderStatus) (client.Order, error) {
		return client.Order{}, errBoom
	}}
	d, ctx := newDeliveries(t, api)
	before := d.Orders()

	_, err := d.Advance(ctx, 3)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, d.Orders())

	_, err = d.Advance(ctx, 42)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestDeliveriesRejectsConcurrentAdvance(t *testing.T) {
	var d *Deliveries
	var inner error
	api := &fakeAPI{updateStatus: func(id int64, s models.OrderStatus) (client.Order, error) {
		_, inner = d.Advance(context.Background(), id)
		return client.Order{ID: id, Status: s}, nil
	}}
	d, ctx := newDeliveries(t, api)

	_, err := d.Advance(ctx, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrInFlight)
	assert.Equal(t, 1, api.count("update_status"))
}

func TestDeliveriesDropsStaleList(t *testing.T) {
	var d *Deliveries
	calls := 0
	api := &fakeAPI{
		updateStatus: func(id int64, s models.OrderStatus) (client.Order, error) {
			return client.Order{ID: id, Status: s}, nil
		},
	}
	api.orders = func(session.ID, models.UserRole) ([]client.Order, error) {
		calls++
		if calls == 2 {
			// The courier toggles a status while the refresh is in flight.
			_, err := d.Advance(context.Background(), 3)
			require.NoError(t, err)
		}
		return courierOrders(), nil
	}
	d, ctx := newDeliveries(t, api)

	require.NoError(t, d.Load(ctx))
	assert.Equal(t, models.StatusInProgress, d.Orders()[0].Status)

	require.NoError(t, d.Load(ctx))
	assert.Equal(t, models.StatusPending, d.Orders()[0].Status)
}

func TestAccount(t *testing.T) {
	var saved []string
	failSave := false
	api := &fakeAPI{
		account: func(id session.ID, role models.UserRole) (client.Account, error) {
			assert.Equal(t, session.ID("9"), id)
			assert.Equal(t, models.RoleCourier, role)
			return client.Account{PrimaryEmail: "georgy@example.com", AccountEmail: "g@courier.com", AccountPhone: "555"}, nil
		},
		updateAccount: func(id session.ID, role models.UserRole, email, phone string) (client.Account, error) {
			if failSave {
				return client.Account{}, errBoom
			}
			saved = []string{string(id), string(role), email, phone}
			return client.Account{PrimaryEmail: "georgy@example.com", AccountEmail: email, AccountPhone: phone}, nil
		},
	}
	a := NewCourierAccount(api, newManager(t, &session.Session{UserID: "3", CourierID: "9"}), quietLogger())
	ctx := mount(t, a)
	assert.Equal(t, "Courier", a.LoggedInAs())

	require.NoError(t, a.Load(ctx))
	assert.False(t, a.Dirty())
	require.NoError(t, a.Save(ctx))
	assert.Zero(t, api.count("update_account"))

	a.SetEmail("new@courier.com")
	a.SetPhone("556")
	assert.True(t, a.Dirty())

	failSave = true
	assert.ErrorIs(t, a.Save(ctx), errBoom)
	assert.True(t, a.Dirty())
	assert.Equal(t, "new@courier.com", a.View().AccountEmail)

	failSave = false
	require.NoError(t, a.Save(ctx))
	assert.False(t, a.Dirty())
	assert.Equal(t, []string{"9", "courier", "new@courier.com", "556"}, saved)
	assert.Equal(t, client.Account{PrimaryEmail: "georgy@example.com", AccountEmail: "new@courier.com", AccountPhone: "556"}, a.View())
}
