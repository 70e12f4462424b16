package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/agnivade/levenshtein"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"rocket-food-delivery/app"
	"rocket-food-delivery/client"
	"rocket-food-delivery/navigation"
	"rocket-food-delivery/screens"
	"rocket-food-delivery/session"
)

type env struct {
	app   *app.App
	flags *pflag.FlagSet
	stdin *bufio.Reader
	out   io.Writer
}

type command struct {
	name    string
	usage   string
	summary string
	flags   func(*pflag.FlagSet)
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{
		name: "login", usage: "login [email] [--password p]", summary: "log in and show the landing screen",
		flags: func(f *pflag.FlagSet) { f.String("password", "", "password (prompted when omitted)") },
		run:   runLogin,
	},
	{name: "logout", usage: "logout", summary: "forget the session", run: runLogout},
	{name: "whoami", usage: "whoami", summary: "show the session and current screen", run: runWhoami},
	{
		name: "restaurants", usage: "restaurants [--rating n] [--price n]", summary: "list restaurants",
		flags: func(f *pflag.FlagSet) {
			f.Int("rating", 0, "minimum rating, 1-5")
			f.Int("price", 0, "price range, 1-3")
		},
		run: runRestaurants,
	},
	{name: "menu", usage: "menu <restaurant-id>", summary: "show a restaurant's menu", run: runMenu},
	{name: "order", usage: "order <restaurant-id> <product-id>=<qty>...", summary: "place an order", run: runOrder},
	{name: "history", usage: "history [order-id]", summary: "list your orders or show one", run: runHistory},
	{name: "deliveries", usage: "deliveries", summary: "list your deliveries", run: runDeliveries},
	{name: "advance", usage: "advance <order-id>", summary: "move a delivery to its next status", run: runAdvance},
	{
		name: "account", usage: "account [--email e] [--phone p]", summary: "show or update your account",
		flags: func(f *pflag.FlagSet) {
			f.String("email", "", "new account email")
			f.String("phone", "", "new account phone")
		},
		run: runAccount,
	},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// suggest returns the command closest to an unknown name, or "" when
// nothing is within three edits.
func suggest(unknown string) string {
	best, bestDist := "", 4
	for _, c := range commands {
		if d := levenshtein.ComputeDistance(unknown, c.name); d < bestDist {
			best, bestDist = c.name, d
		}
	}
	return best
}

// enter shows s or explains why the session cannot see it.
func (e *env) enter(s navigation.Screen) error {
	err := e.app.Enter(s)
	if !errors.Is(err, app.ErrRedirected) {
		return err
	}
	switch e.app.Navigator.Current() {
	case navigation.RoleSelection:
		return errors.New("this account is both customer and courier; pick one with --as")
	case navigation.Authentication:
		return errors.New("not logged in; run 'foodapp login'")
	case navigation.Unauthorized:
		return errors.New("this account has no customer or courier role")
	}
	return err
}

func (e *env) prompt(label string) (string, error) {
	fmt.Fprint(e.out, label)
	line, err := e.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimSpace(line), nil
}

func (e *env) table() *tabwriter.Writer {
	return tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

// parseLines reads product-id=quantity pairs.
func parseLines(args []string) (map[int64]int, error) {
	lines := make(map[int64]int, len(args))
	for _, a := range args {
		idStr, qtyStr, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("invalid line %q, want <product-id>=<qty>", a)
		}
		id, err := parseID(idStr, "product id")
		if err != nil {
			return nil, err
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("invalid quantity %q", qtyStr)
		}
		lines[id] += qty
	}
	return lines, nil
}

func runLogin(ctx context.Context, e *env, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = e.prompt("Email: "); err != nil {
			return err
		}
	}
	password, _ := e.flags.GetString("password")
	if password == "" {
		var err error
		if password, err = e.prompt("Password: "); err != nil {
			return err
		}
	}

	auth := e.app.Authentication()
	ctx = auth.Mount(ctx)
	defer auth.Unmount()
	if err := auth.Login(ctx, email, password); err != nil {
		if msg := auth.ErrorMessage(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	fmt.Fprintf(e.out, "Logged in. Showing %s.\n", e.app.Navigator.Current())
	return nil
}

func runLogout(ctx context.Context, e *env, _ []string) error {
	if err := e.app.Sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Logged out.")
	return nil
}

func runWhoami(_ context.Context, e *env, _ []string) error {
	st := e.app.Sessions.State()
	if !st.LoggedIn {
		fmt.Fprintln(e.out, "Not logged in.")
		return nil
	}
	tw := e.table()
	fmt.Fprintf(tw, "user\t%s\n", st.Session.UserID)
	fmt.Fprintf(tw, "customer\t%s\n", orNone(st.Session.CustomerID))
	fmt.Fprintf(tw, "courier\t%s\n", orNone(st.Session.CourierID))
	fmt.Fprintf(tw, "mode\t%s\n", st.Mode)
	fmt.Fprintf(tw, "screen\t%s\n", e.app.Navigator.Current())
	return tw.Flush()
}

func orNone(id session.ID) string {
	if !id.Present() {
		return "-"
	}
	return id.String()
}

func runRestaurants(ctx context.Context, e *env, _ []string) error {
	if err := e.enter(navigation.Restaurants); err != nil {
		return err
	}
	rating, _ := e.flags.GetInt("rating")
	price, _ := e.flags.GetInt("price")

	rs := e.app.Restaurants()
	ctx = rs.Mount(ctx)
	defer rs.Unmount()
	if err := rs.SetFilter(ctx, client.RestaurantFilter{Rating: rating, PriceRange: price}); err != nil {
		return err
	}

	tw := e.table()
	fmt.Fprintln(tw, "ID\tNAME\tRATING\tPRICE")
	for _, r := range rs.List() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, strings.Repeat("*", r.Rating), screens.PriceTier(r.PriceRange))
	}
	return tw.Flush()
}

// openMenu loads the menu screen of an active restaurant.
func (e *env) openMenu(ctx context.Context, arg string) (*screens.Menu, context.Context, error) {
	id, err := parseID(arg, "restaurant id")
	if err != nil {
		return nil, nil, err
	}
	if err := e.enter(navigation.RestaurantMenu); err != nil {
		return nil, nil, err
	}
	list, err := e.app.API.Restaurants(ctx, client.RestaurantFilter{})
	if err != nil {
		return nil, nil, err
	}
	var restaurant *client.Restaurant
	for i := range list {
		if list[i].ID == id {
			restaurant = &list[i]
		}
	}
	if restaurant == nil {
		return nil, nil, fmt.Errorf("restaurant %d not found", id)
	}

	m := e.app.Menu(*restaurant)
	mctx := m.Mount(ctx)
	if err := m.Load(mctx); err != nil {
		m.Unmount()
		return nil, nil, err
	}
	return m, mctx, nil
}

func runMenu(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: foodapp menu <restaurant-id>")
	}
	m, _, err := e.openMenu(ctx, args[0])
	if err != nil {
		return err
	}
	defer m.Unmount()

	r := m.Restaurant()
	fmt.Fprintf(e.out, "%s  %s  %s\n\n", r.Name, strings.Repeat("*", r.Rating), screens.PriceTier(r.PriceRange))
	tw := e.table()
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tDESCRIPTION")
	for _, p := range m.Products() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, screens.FormatCents(p.Cost), p.Description)
	}
	return tw.Flush()
}

func runOrder(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: foodapp order <restaurant-id> <product-id>=<qty>...")
	}
	lines, err := parseLines(args[1:])
	if err != nil {
		return err
	}
	m, mctx, err := e.openMenu(ctx, args[0])
	if err != nil {
		return err
	}
	defer m.Unmount()

	known := make(map[int64]bool)
	for _, p := range m.Products() {
		known[p.ID] = true
	}
	for id, qty := range lines {
		if !known[id] {
			return fmt.Errorf("product %d is not on this menu", id)
		}
		m.SetQuantity(id, qty)
	}
	if !m.CanOrder() {
		return errors.New("select at least one product")
	}

	tw := e.table()
	for _, l := range m.Summary() {
		fmt.Fprintf(tw, "%s\tx%d\t%s\n", l.Product.Name, l.Quantity, screens.FormatCents(l.Total))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\n", screens.FormatCents(m.Total()))
	if err := tw.Flush(); err != nil {
		return err
	}

	order, err := m.Submit(mctx)
	if err != nil {
		return fmt.Errorf("your order was not processed successfully: %w", err)
	}
	fmt.Fprintf(e.out, "\nYour order has been received (order %d, %s).\n", order.ID, order.Status)
	return nil
}

func runHistory(ctx context.Context, e *env, args []string) error {
	if err := e.enter(navigation.OrderHistory); err != nil {
		return err
	}
	h := e.app.OrderHistory()
	ctx = h.Mount(ctx)
	defer h.Unmount()
	if err := h.Load(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		tw := e.table()
		fmt.Fprintln(tw, "ID\tRESTAURANT\tSTATUS\tTOTAL\tPLACED")
		for _, o := range h.Orders() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.RestaurantName, strings.ToUpper(string(o.Status)),
				screens.FormatCents(o.TotalCost), humanize.Time(o.CreatedAt))
		}
		return tw.Flush()
	}

	id, err := parseID(args[0], "order id")
	if err != nil {
		return err
	}
	o, ok := h.Order(id)
	if !ok {
		return fmt.Errorf("order %d not found", id)
	}
	printOrder(e.out, o)
	return nil
}

func printOrder(w io.Writer, o client.Order) {
	fmt.Fprintf(w, "%s\n", o.RestaurantName)
	fmt.Fprintf(w, "Order Date: %s\n", o.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Status: %s\n", strings.ToUpper(string(o.Status)))
	fmt.Fprintf(w, "Courier: %s\n\n", o.CourierName)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range o.Products {
		fmt.Fprintf(tw, "%s\tx%d\t%s\n", p.ProductName, p.Quantity, screens.FormatCents(p.UnitCost*p.Quantity))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\n", screens.FormatCents(o.TotalCost))
	_ = tw.Flush()
}

func runDeliveries(ctx context.Context, e *env, _ []string) error {
	if err := e.enter(navigation.CourierDeliveries); err != nil {
		return err
	}
	d := e.app.Deliveries()
	ctx = d.Mount(ctx)
	defer d.Unmount()
	if err := d.Load(ctx); err != nil {
		return err
	}

	tw := e.table()
	fmt.Fprintln(tw, "ID\tADDRESS\tSTATUS\tRESTAURANT\tCUSTOMER")
	for _, o := range d.Orders() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.CustomerAddress, strings.ToUpper(string(o.Status)),
			o.RestaurantName, o.CustomerName)
	}
	return tw.Flush()
}

func runAdvance(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: foodapp advance <order-id>")
	}
	id, err := parseID(args[0], "order id")
	if err != nil {
		return err
	}
	if err := e.enter(navigation.CourierDeliveries); err != nil {
		return err
	}
	d := e.app.Deliveries()
	ctx = d.Mount(ctx)
	defer d.Unmount()
	if err := d.Load(ctx); err != nil {
		return err
	}

	var before client.Order
	for _, o := range d.Orders() {
		if o.ID == id {
			before = o
		}
	}
	after, err := d.Advance(ctx, id)
	if err != nil {
		return err
	}
	if after.Status == before.Status {
		fmt.Fprintf(e.out, "Order %d is already %s.\n", id, after.Status)
		return nil
	}
	fmt.Fprintf(e.out, "Order %d: %s -> %s\n", id, before.Status, after.Status)
	return nil
}

func runAccount(ctx context.Context, e *env, _ []string) error {
	var acc *screens.Account
	switch e.app.Sessions.State().Mode {
	case session.ModeCourier:
		if err := e.enter(navigation.CourierAccount); err != nil {
			return err
		}
		acc = e.app.CourierAccount()
	default:
		if err := e.enter(navigation.CustomerAccount); err != nil {
			return err
		}
		acc = e.app.CustomerAccount()
	}
	ctx = acc.Mount(ctx)
	defer acc.Unmount()
	if err := acc.Load(ctx); err != nil {
		return err
	}

	if e.flags.Changed("email") {
		v, _ := e.flags.GetString("email")
		acc.SetEmail(v)
	}
	if e.flags.Changed("phone") {
		v, _ := e.flags.GetString("phone")
		acc.SetPhone(v)
	}
	if acc.Dirty() {
		if err := acc.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "Account updated.")
	}

	v := acc.View()
	tw := e.table()
	fmt.Fprintf(tw, "logged in as\t%s\n", acc.LoggedInAs())
	fmt.Fprintf(tw, "primary email\t%s\n", v.PrimaryEmail)
	fmt.Fprintf(tw, "%s email\t%s\n", acc.Role(), v.AccountEmail)
	fmt.Fprintf(tw, "%s phone\t%s\n", acc.Role(), v.AccountPhone)
	return tw.Flush()
}
