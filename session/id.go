package session

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ID is a user or role identifier as the backend sends it. The zero value
// means the identifier is absent.
//
// Decoding follows truthiness, not key presence: null, false, 0 and "" all
// decode to the zero ID.
type ID string

// Present reports whether the identifier is set.
func (id ID) Present() bool { return id != "" }

func (id ID) String() string { return string(id) }

// Uint returns the numeric value of id, or false when it is absent or not
// a decimal integer.
func (id ID) Uint() (uint64, bool) {
	v, err := strconv.ParseUint(string(id), 10, 64)
	return v, err == nil
}

// IDFromUint converts a numeric identifier; 0 yields the absent ID.
func IDFromUint(v uint64) ID {
	if v == 0 {
		return ""
	}
	return ID(strconv.FormatUint(v, 10))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("session: empty identifier")
	}
	switch b[0] {
	case 'n', 'f':
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v != nil && v != false {
			return fmt.Errorf("session: invalid identifier %s", b)
		}
		*id = ""
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("session: invalid identifier %s", b)
	}
	switch {
	case f == 0:
		*id = ""
	case f == float64(int64(f)):
		*id = ID(strconv.FormatInt(int64(f), 10))
	default:
		*id = ID(b)
	}
	return nil
}

// MarshalJSON writes absent ids as null and decimal ids as numbers, which
// is what the backend binds.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, ok := id.Uint(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}
