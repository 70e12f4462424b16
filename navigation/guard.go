// Package navigation decides which screen the app may show for the current
// session. Guards are plain functions of the session state; the Navigator
// applies them on every navigation and on every session change.
package navigation

import "rocket-food-delivery/session"

// Screen names a destination in the app.
type Screen string

const (
	Authentication    Screen = "Authentication"
	RoleSelection     Screen = "AccountSelection"
	Unauthorized      Screen = "Unauthorized"
	Restaurants       Screen = "Restaurants"
	RestaurantMenu    Screen = "RestaurantMenuOrder"
	OrderHistory      Screen = "OrderHistory"
	CustomerAccount   Screen = "CustomerAccount"
	CourierDeliveries Screen = "CourierDeliveries"
	CourierAccount    Screen = "CourierAccount"
)

const (
	CustomerHome = Restaurants
	CourierHome  = CourierDeliveries
)

// Category groups screens that share a guard rule.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryAuthentication
	CategoryRoleSelection
	CategoryUnauthorized
	CategoryCustomer
	CategoryCourier
)

var categories = map[Screen]Category{
	Authentication:    CategoryAuthentication,
	RoleSelection:     CategoryRoleSelection,
	Unauthorized:      CategoryUnauthorized,
	Restaurants:       CategoryCustomer,
	RestaurantMenu:    CategoryCustomer,
	OrderHistory:      CategoryCustomer,
	CustomerAccount:   CategoryCustomer,
	CourierDeliveries: CategoryCourier,
	CourierAccount:    CategoryCourier,
}

// Category returns the guard category of s.
func (s Screen) Category() Category {
	return categories[s]
}

// Screens lists every known screen.
func Screens() []Screen {
	return []Screen{
		Authentication, RoleSelection, Unauthorized,
		Restaurants, RestaurantMenu, OrderHistory, CustomerAccount,
		CourierDeliveries, CourierAccount,
	}
}

// Decision is the outcome of a guard: either proceed, or go to Redirect.
type Decision struct {
	Proceed  bool
	Redirect Screen
}

func proceed() Decision           { return Decision{Proceed: true} }
func redirect(to Screen) Decision { return Decision{Redirect: to} }
func (d Decision) Target(s Screen) Screen {
	if d.Proceed {
		return s
	}
	return d.Redirect
}

// Dispatch is where a logged-in session lands after authentication.
func Dispatch(st session.State) Screen {
	switch st.Mode {
	case session.ModeBoth:
		return RoleSelection
	case session.ModeCustomer:
		return CustomerHome
	case session.ModeCourier:
		return CourierHome
	default:
		return Unauthorized
	}
}

// Guard decides whether s may render under st.
func Guard(s Screen, st session.State) Decision {
	switch s.Category() {
	case CategoryAuthentication:
		if !st.LoggedIn {
			return proceed()
		}
		return redirect(Dispatch(st))

	case CategoryRoleSelection:
		switch st.Mode {
		case session.ModeBoth:
			return proceed()
		case session.ModeCustomer:
			return redirect(CustomerHome)
		case session.ModeCourier:
			return redirect(CourierHome)
		}
		return redirect(Authentication)

	case CategoryUnauthorized:
		if st.LoggedIn {
			return proceed()
		}
		return redirect(Authentication)

	case CategoryCustomer:
		switch st.Mode {
		case session.ModeCustomer:
			return proceed()
		case session.ModeCourier:
			return redirect(CourierHome)
		}
		return redirect(Authentication)

	case CategoryCourier:
		switch st.Mode {
		case session.ModeCourier:
			return proceed()
		case session.ModeCustomer:
			return redirect(CustomerHome)
		}
		return redirect(Authentication)
	}
	return redirect(Authentication)
}
