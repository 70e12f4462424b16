// Package session holds the app's notion of who is logged in: the session
// record, the role mode derived from it, its persistence and the shared
// state container screens observe.
package session

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// RoleMode classifies a session by the roles it holds.
type RoleMode string

const (
	ModeUnauthorized RoleMode = "unauthorized"
	ModeCustomer     RoleMode = "customer"
	ModeCourier      RoleMode = "courier"
	ModeBoth         RoleMode = "both"
)

// ErrMalformed is returned by Decode for records that are not a session.
var ErrMalformed = errors.New("session: malformed record")

// Session is the authenticated principal, as stored under SessionKey.
type Session struct {
	UserID     ID     `json:"user_id"`
	CustomerID ID     `json:"customer_id"`
	CourierID  ID     `json:"courier_id"`
	Token      string `json:"token,omitempty"`
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Mode         RoleMode
	HasBothRoles bool
}

// Resolve derives the role mode of s. Both roles are checked first so a
// dual-role session is never classified as single-role.
func Resolve(s Session) Resolution {
	switch {
	case s.CustomerID.Present() && s.CourierID.Present():
		return Resolution{Mode: ModeBoth, HasBothRoles: true}
	case s.CustomerID.Present():
		return Resolution{Mode: ModeCustomer}
	case s.CourierID.Present():
		return Resolution{Mode: ModeCourier}
	default:
		return Resolution{Mode: ModeUnauthorized}
	}
}

// RoleID returns the identifier s holds for a single-role mode.
func (s Session) RoleID(mode RoleMode) ID {
	switch mode {
	case ModeCustomer:
		return s.CustomerID
	case ModeCourier:
		return s.CourierID
	}
	return ""
}

// Decode parses a persisted session record. A record must be a JSON object
// with a user id.
func Decode(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !s.UserID.Present() {
		return Session{}, fmt.Errorf("%w: missing user_id", ErrMalformed)
	}
	return s, nil
}

// Encode serializes s for persistence.
func Encode(s Session) ([]byte, error) {
	return json.Marshal(s)
}
