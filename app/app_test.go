package app

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket-food-delivery/client"
	"rocket-food-delivery/config"
	"rocket-food-delivery/handlers"
	"rocket-food-delivery/models"
	"rocket-food-delivery/navigation"
	"rocket-food-delivery/routes"
	"rocket-food-delivery/session"
)

// newBackend serves the real API over a seeded database with tokens
// required:
//
//	erica   customer 1 and courier 1 (busy)
//	georgy  courier 2 (free)
//	nobody  no roles
func newBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, config.InitDB(filepath.Join(t.TempDir(), "api.db")))
	config.RequireToken = true
	t.Cleanup(func() { config.RequireToken = false })
	db := config.DB

	hash, err := handlers.HashPassword("password")
	require.NoError(t, err)
	addr := models.Address{StreetAddress: "1 Main St", City: "Montreal", PostalCode: "H4G5Z2"}
	require.NoError(t, db.Create(&addr).Error)

	users := []models.User{
		{Name: "Erica Ger", Email: "erica@example.com", PasswordHash: hash},
		{Name: "Georgy Ger", Email: "georgy@example.com", PasswordHash: hash},
		{Name: "No Body", Email: "nobody@example.com", PasswordHash: hash},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Create(&models.Customer{UserID: users[0].ID, AddressID: addr.ID, Email: "erica@hotmail.com", Active: true}).Error)
	require.NoError(t, db.Create(&[]models.Courier{
		{UserID: users[0].ID, AddressID: addr.ID, Status: models.CourierBusy, Active: true},
		{UserID: users[1].ID, AddressID: addr.ID, Status: models.CourierFree, Active: true},
	}).Error)

	sushi := models.Restaurant{Name: "Sushi", AddressID: addr.ID, Rating: 4, PriceRange: 2, Active: true}
	require.NoError(t, db.Create(&sushi).Error)
	require.NoError(t, db.Create(&[]models.Product{
		{RestaurantID: sushi.ID, Name: "Maki", Cost: 1250},
		{RestaurantID: sushi.ID, Name: "Miso", Cost: 399},
	}).Error)

	r := gin.New()
	routes.SetupRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func newApp(t *testing.T, url string, store session.Store) *App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(store, client.New(url, client.WithLogger(logger)), logger)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func login(t *testing.T, a *App, email string) {
	t.Helper()
	auth := a.Authentication()
	ctx := auth.Mount(context.Background())
	defer auth.Unmount()
	require.NoError(t, auth.Login(ctx, email, "password"))
}

func TestCustomerFlow(t *testing.T) {
	url := newBackend(t)
	store := session.NewMemoryStore()
	a := newApp(t, url, store)
	ctx := context.Background()

	shown, err := a.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, navigation.Authentication, shown)

	auth := a.Authentication()
	actx := auth.Mount(ctx)
	assert.Error(t, auth.Login(actx, "erica@example.com", "wrong"))
	assert.Equal(t, "Invalid email or password", auth.ErrorMessage())
	auth.Unmount()

	login(t, a, "erica@example.com")
	assert.Equal(t, navigation.RoleSelection, a.Navigator.Current())

	require.NoError(t, a.RoleSelection().Choose(session.ModeCustomer))
	assert.Equal(t, navigation.Restaurants, a.Navigator.Current())

	rs := a.Restaurants()
	rctx := rs.Mount(ctx)
	require.NoError(t, rs.Load(rctx))
	list := rs.List()
	require.Len(t, list, 1)
	rs.Unmount()

	require.NoError(t, a.Enter(navigation.RestaurantMenu))
	menu := a.Menu(list[0])
	mctx := menu.Mount(ctx)
	require.NoError(t, menu.Load(mctx))
	menu.SetQuantity(menu.Products()[0].ID, 2)
	order, err := menu.Submit(mctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 2500, order.TotalCost)
	assert.Equal(t, "Georgy Ger", order.CourierName)
	menu.Unmount()

	require.NoError(t, a.Enter(navigation.OrderHistory))
	h := a.OrderHistory()
	hctx := h.Mount(ctx)
	require.NoError(t, h.Load(hctx))
	assert.Len(t, h.Orders(), 1)
	h.Unmount()

	err = a.Enter(navigation.CourierDeliveries)
	assert.ErrorIs(t, err, ErrRedirected)
	assert.Equal(t, navigation.Restaurants, a.Navigator.Current())

	// A restart restores the session and asks for the role again.
	restarted := newApp(t, url, store)
	shown, err = restarted.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, navigation.RoleSelection, shown)
	require.NoError(t, restarted.RoleSelection().Choose(session.ModeCustomer))

	acc := restarted.CustomerAccount()
	actx = acc.Mount(ctx)
	require.NoError(t, acc.Load(actx))
	assert.Equal(t, "erica@example.com", acc.View().PrimaryEmail)
	acc.SetPhone("5551234")
	require.NoError(t, acc.Save(actx))
	assert.Equal(t, "5551234", acc.View().AccountPhone)
	acc.Unmount()

	require.NoError(t, restarted.Sessions.Logout(ctx))
	assert.Equal(t, navigation.Authentication, restarted.Navigator.Current())
	_, ok, err := store.Get(ctx, session.SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCourierFlow(t *testing.T) {
	url := newBackend(t)
	ctx := context.Background()

	customer := newApp(t, url, session.NewMemoryStore())
	_, err := customer.Start(ctx)
	require.NoError(t, err)
	login(t, customer, "erica@example.com")
	require.NoError(t, customer.RoleSelection().Choose(session.ModeCustomer))
	menu := customer.Menu(client.Restaurant{ID: 1})
	mctx := menu.Mount(ctx)
	require.NoError(t, menu.Load(mctx))
	menu.SetQuantity(2, 1)
	_, err = menu.Submit(mctx)
	require.NoError(t, err)
	menu.Unmount()

	courier := newApp(t, url, session.NewMemoryStore())
	_, err = courier.Start(ctx)
	require.NoError(t, err)
	login(t, courier, "georgy@example.com")
	assert.Equal(t, navigation.CourierDeliveries, courier.Navigator.Current())

	d := courier.Deliveries()
	dctx := d.Mount(ctx)
	defer d.Unmount()
	require.NoError(t, d.Load(dctx))
	orders := d.Orders()
	require.Len(t, orders, 1)
	id := orders[0].ID

	o, err := d.Advance(dctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, o.Status)
	o, err = d.Advance(dctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)
	o, err = d.Advance(dctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)

	err = courier.Enter(navigation.Restaurants)
	assert.ErrorIs(t, err, ErrRedirected)
	assert.Equal(t, navigation.CourierDeliveries, courier.Navigator.Current())
}

func TestNoRoleUser(t *testing.T) {
	url := newBackend(t)
	ctx := context.Background()
	a := newApp(t, url, session.NewMemoryStore())
	_, err := a.Start(ctx)
	require.NoError(t, err)

	login(t, a, "nobody@example.com")
	assert.Equal(t, navigation.Unauthorized, a.Navigator.Current())

	require.NoError(t, a.Unauthorized().Acknowledge(ctx))
	assert.Equal(t, navigation.Authentication, a.Navigator.Current())
	assert.False(t, a.Sessions.State().LoggedIn)
}
