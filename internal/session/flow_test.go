package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

const maxRadius = 100000

func TestAuthoringFlow_HappyPath(t *testing.T) {
	sess := &Session{UserID: 42, Step: StepAwaitingName}

	res := ApplyNameInput(sess, "Home")
	require.True(t, res.Advanced)
	assert.Equal(t, StepAwaitingLocation, sess.Step)
	assert.Equal(t, "Home", sess.Name)

	res = ApplyLocationInput(sess, domain.Point{Lat: 40.0, Lon: -75.0})
	require.True(t, res.Advanced)
	assert.Equal(t, StepAwaitingRadius, sess.Step)

	res = ApplyRadiusInput(sess, "150", maxRadius)
	require.True(t, res.Completed)
	require.NotNil(t, res.Trigger)

	assert.Equal(t, int64(42), res.Trigger.OwnerID)
	assert.Equal(t, "Home", res.Trigger.Name)
	assert.Equal(t, domain.Point{Lat: 40.0, Lon: -75.0}, res.Trigger.Center)
	assert.Equal(t, 150, res.Trigger.RadiusMeters)
	assert.Equal(t, domain.StateOutside, res.Trigger.LastState)
}

func TestApplyNameInput_EmptyReprompts(t *testing.T) {
	testCases := []string{"", "   ", "\t\n"}

	for _, input := range testCases {
		sess := &Session{UserID: 1, Step: StepAwaitingName}

		res := ApplyNameInput(sess, input)

		assert.False(t, res.Advanced)
		assert.Equal(t, StepAwaitingName, sess.Step)
		assert.NotEmpty(t, res.Reply)
	}
}

func TestApplyRadiusInput_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-150"},
		{"fractional", "150.5"},
		{"over the ceiling", "100001"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sess := &Session{
				UserID: 42,
				Step:   StepAwaitingRadius,
				Name:   "Home",
				Center: domain.Point{Lat: 40.0, Lon: -75.0},
			}

			res := ApplyRadiusInput(sess, tc.input, maxRadius)

			assert.False(t, res.Advanced)
			assert.False(t, res.Completed)
			assert.Nil(t, res.Trigger)
			assert.Equal(t, StepAwaitingRadius, sess.Step)
			assert.NotEmpty(t, res.Reply)
		})
	}
}

func TestApplyRadiusInput_TrimsWhitespace(t *testing.T) {
	sess := &Session{UserID: 42, Step: StepAwaitingRadius, Name: "Home"}

	res := ApplyRadiusInput(sess, " 150 ", maxRadius)

	require.True(t, res.Completed)
	assert.Equal(t, 150, res.Trigger.RadiusMeters)
}

func TestAddressNotFoundReply(t *testing.T) {
	res := AddressNotFoundReply()
	assert.False(t, res.Advanced)
	assert.NotEmpty(t, res.Reply)
}
