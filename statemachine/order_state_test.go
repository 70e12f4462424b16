package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket-food-delivery/models"
)

func TestAdvanceWalksForward(t *testing.T) {
	s := models.StatusPending

	s, err := Advance(s)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, s)

	s, err = Advance(s)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, s)

	s, err = Advance(s)
	require.ErrorIs(t, err, ErrTerminal)
	assert.Equal(t, models.StatusDelivered, s)
}

func TestAdvanceUnknown(t *testing.T) {
	_, err := Advance("lost")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTerminal)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		ok       bool
	}{
		{models.StatusPending, models.StatusInProgress, true},
		{models.StatusInProgress, models.StatusDelivered, true},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusInProgress, models.StatusPending, false},
		{models.StatusDelivered, models.StatusPending, false},
		{models.StatusDelivered, models.StatusInProgress, false},
		{models.StatusDelivered, models.StatusDelivered, false},
	}
	for _, c := range cases {
		err := CanTransition(c.from, c.to)
		if c.ok {
			assert.NoError(t, err, "%s → %s", c.from, c.to)
		} else {
			assert.Error(t, err, "%s → %s", c.from, c.to)
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal("bogus"))

	_, ok := Next(models.StatusDelivered)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "pending → in progress → delivered", Describe())
	assert.Len(t, GetAllTransitions(), 2)
}
