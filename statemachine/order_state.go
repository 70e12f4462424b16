package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"rocket-food-delivery/models"
)

// ErrTerminal is returned when advancing an order that is already delivered.
var ErrTerminal = errors.New("order is delivered; no further transition")

// Transition is one forward step of the delivery lifecycle.
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// validTransitions is the authoritative state machine definition. Orders
// only ever move forward.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusInProgress},
	{From: models.StatusInProgress, To: models.StatusDelivered},
}

var next = func() map[models.OrderStatus]models.OrderStatus {
	m := make(map[models.OrderStatus]models.OrderStatus, len(validTransitions))
	for _, t := range validTransitions {
		m[t.From] = t.To
	}
	return m
}()

// Known reports whether s is one of the lifecycle states.
func Known(s models.OrderStatus) bool {
	switch s {
	case models.StatusPending, models.StatusInProgress, models.StatusDelivered:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.OrderStatus) bool {
	_, ok := next[s]
	return Known(s) && !ok
}

// Next returns the status that follows s. ok is false for delivered and for
// unknown statuses.
func Next(s models.OrderStatus) (models.OrderStatus, bool) {
	to, ok := next[s]
	return to, ok
}

// Advance returns the next status or ErrTerminal for a delivered order.
func Advance(s models.OrderStatus) (models.OrderStatus, error) {
	if to, ok := next[s]; ok {
		return to, nil
	}
	if IsTerminal(s) {
		return s, ErrTerminal
	}
	return s, fmt.Errorf("unknown order status %q", s)
}

// CanTransition checks a requested move from one status to another.
func CanTransition(from, to models.OrderStatus) error {
	if n, ok := next[from]; ok && n == to {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed. Valid transitions from %s are: %s",
		from, to, from, describeValidFrom(from))
}

func describeValidFrom(s models.OrderStatus) string {
	n, ok := next[s]
	if !ok {
		return "none (terminal state)"
	}
	return string(n)
}

// GetAllTransitions returns the full state machine for documentation.
func GetAllTransitions() []Transition {
	return append([]Transition(nil), validTransitions...)
}

// Describe renders the lifecycle as "a → b → c".
func Describe() string {
	parts := []string{string(validTransitions[0].From)}
	for _, t := range validTransitions {
		parts = append(parts, string(t.To))
	}
	return strings.Join(parts, " → ")
}
