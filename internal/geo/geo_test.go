package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

func TestDistance_KnownPairs(t *testing.T) {
	testCases := []struct {
		name      string
		a, b      domain.Point
		expected  float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         domain.Point{Lat: 40.0, Lon: -75.0},
			b:         domain.Point{Lat: 40.0, Lon: -75.0},
			expected:  0,
			tolerance: 0.001,
		},
		{
			name: "one degree of latitude at the equator",
			a:    domain.Point{Lat: 0, Lon: 0},
			b:    domain.Point{Lat: 1, Lon: 0},
			// One degree of arc on the mean-radius sphere.
			expected:  111195,
			tolerance: 10,
		},
		{
			name:      "paris to london",
			a:         domain.Point{Lat: 48.8566, Lon: 2.3522},
			b:         domain.Point{Lat: 51.5074, Lon: -0.1278},
			expected:  343500,
			tolerance: 1500,
		},
		{
			name: "short hop at high latitude",
			a:    domain.Point{Lat: 78.2232, Lon: 15.6267},
			b:    domain.Point{Lat: 78.2232, Lon: 15.6367},
			// Longitude degrees shrink near the pole; a planar formula
			// would be off by a factor of ~5 here.
			expected:  227,
			tolerance: 5,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.a, tc.b)
			assert.InDelta(t, tc.expected, got, tc.tolerance)

			// Distance is symmetric.
			assert.InDelta(t, got, Distance(tc.b, tc.a), 0.001)
		})
	}
}

func TestIsInside(t *testing.T) {
	center := domain.Point{Lat: 0, Lon: 0}

	// ~50m and ~200m east of the center along the equator.
	near := domain.Point{Lat: 0, Lon: 50.0 / 111195}
	far := domain.Point{Lat: 0, Lon: 200.0 / 111195}

	assert.True(t, IsInside(near, center, 100))
	assert.False(t, IsInside(far, center, 100))
}

func TestIsInside_BoundaryIsInside(t *testing.T) {
	center := domain.Point{Lat: 40.0, Lon: -75.0}
	p := domain.Point{Lat: 40.001, Lon: -75.0}

	d := Distance(p, center)
	radius := int(math.Ceil(d))

	assert.True(t, IsInside(p, center, radius))
	assert.False(t, IsInside(p, center, radius-5))
}

func TestPointValid(t *testing.T) {
	assert.True(t, domain.Point{Lat: 40, Lon: -75}.Valid())
	assert.True(t, domain.Point{Lat: -90, Lon: 180}.Valid())
	assert.False(t, domain.Point{Lat: 91, Lon: 0}.Valid())
	assert.False(t, domain.Point{Lat: 0, Lon: -181}.Valid())
	assert.False(t, domain.Point{Lat: math.NaN(), Lon: 0}.Valid())
	assert.False(t, domain.Point{Lat: 0, Lon: math.Inf(1)}.Valid())
}
