package junction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picketfence/pkg/geometry"
)

func TestDeduplicatePiecewiseJunctions(t *testing.T) {
	short := geometry.Vec{X: 1}
	centroids := []geometry.Vec{
		{X: 20, Y: 5},
		{X: -20, Y: 0},
		{X: 21, Y: -40}, // second piece of the junction at 20
		{X: 0, Y: 3},
		{X: -18, Y: 60}, // second piece of the junction at -20
		{X: 40, Y: 0},
	}

	got := Deduplicate(centroids, short, DefaultMinimumSeparation)
	require.Len(t, got, 4)
	assert.Equal(t, geometry.Vec{X: -20, Y: 0}, got[0])
	assert.Equal(t, geometry.Vec{X: 0, Y: 3}, got[1])
	assert.Equal(t, geometry.Vec{X: 20, Y: 5}, got[2])
	assert.Equal(t, geometry.Vec{X: 40, Y: 0}, got[3])

	for i := 1; i < len(got); i++ {
		d := got[i].Sub(got[i-1]).Dot(short)
		assert.GreaterOrEqual(t, d, 0.5*DefaultMinimumSeparation)
	}

	// The caller's slice keeps its order.
	assert.Equal(t, 20.0, centroids[0].X)
}

// A chain of closely spaced pieces collapses onto its first member.
func TestDeduplicateChain(t *testing.T) {
	short := geometry.Vec{Y: 1}
	var centroids []geometry.Vec
	for i := 0; i < 10; i++ {
		centroids = append(centroids, geometry.Vec{Y: float64(i)})
	}
	got := Deduplicate(centroids, short, 10)
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[0].Y)
	assert.Equal(t, 5.0, got[1].Y)
}

func TestMeasure(t *testing.T) {
	short := geometry.Vec{X: 1}
	js := []geometry.Vec{{X: -30}, {X: -10}, {X: 5}, {X: 40}}
	s := Measure(js, short)

	assert.Equal(t, []float64{-30, -10, 5, 40}, s.CAX)
	assert.Equal(t, []float64{20, 15, 35}, s.Adjacent)
	assert.Equal(t, 15.0, s.Min)

	single := Measure(js[:1], short)
	assert.True(t, math.IsNaN(single.Min))
	assert.Empty(t, single.Adjacent)
}
