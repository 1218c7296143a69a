package peaks

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picketfence/pkg/profile"
)

// gapProfile builds a profile with narrow Gaussian bumps at the given centres.
func gapProfile(centres []float64, from, to, step float64) *profile.Profile {
	var samples []profile.Sample
	for x := from; x <= to; x += step {
		v := 0.0
		for _, c := range centres {
			d := x - c
			v += math.Exp(-0.5 * d * d / 1.5)
		}
		samples = append(samples, profile.Sample{Position: x, Value: v, Weight: 1})
	}
	return profile.NewProfile(samples)
}

func TestFindLocatesBumps(t *testing.T) {
	centres := []float64{-40, -30, -20, -10, 0, 10, 20, 30, 40}
	p := gapProfile(centres, -50, 50, 0.5)

	got := Find(p)
	require.Len(t, got, len(centres))
	for i, pk := range got {
		assert.InDelta(t, centres[i], pk.Position, 0.1)
		assert.InDelta(t, 1.0, pk.Value, 0.05)
	}
}

func TestFindPlateau(t *testing.T) {
	p := profile.NewProfile([]profile.Sample{
		{Position: 0, Value: 0}, {Position: 1, Value: 1}, {Position: 2, Value: 2},
		{Position: 3, Value: 2}, {Position: 4, Value: 2}, {Position: 5, Value: 1},
	})
	got := Find(p)
	require.Len(t, got, 1)
	assert.InDelta(t, 3.0, got[0].Position, 1e-12)
	assert.InDelta(t, 2.0, got[0].Value, 1e-12)
}

func TestMergeSeparatesAdjacentPeaks(t *testing.T) {
	in := []Peak{
		{Position: 0, Value: 1}, {Position: 1.5, Value: 3},
		{Position: 10, Value: 1},
		{Position: 20, Value: 1}, {Position: 21, Value: 1}, {Position: 22.5, Value: 1},
		{Position: 23.9, Value: 1},
	}
	out := Merge(in, 2.0)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i].Position-out[i-1].Position, 2.0)
	}
	require.Len(t, out, 3)
	assert.InDelta(t, 0.75, out[0].Position, 1e-12)
	assert.InDelta(t, 2.0, out[0].Value, 1e-12)
	assert.InDelta(t, 10.0, out[1].Position, 1e-12)

	// Input is not modified.
	assert.Equal(t, 1.5, in[1].Position)
}

// Runs chain: each peak only needs to be close to its predecessor.
func TestMergeChainsRuns(t *testing.T) {
	in := []Peak{{Position: 0}, {Position: 1.9}, {Position: 3.5}}
	out := Merge(in, 2.0)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.8, out[0].Position, 1e-12)

	assert.Len(t, Merge(in, 0), 3)
}

func TestDetectTooFewPeaks(t *testing.T) {
	p := gapProfile([]float64{-20, 0, 20}, -40, 40, 0.5)
	got, err := Detect(p, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPeakDetectionFailure))
	assert.Len(t, got, 3)
}

func TestDetectMergesNoiseDoubles(t *testing.T) {
	// Each physical gap is split into a close double peak.
	var centres []float64
	for c := -40.0; c <= 40; c += 10 {
		centres = append(centres, c-0.6, c+0.6)
	}
	var samples []profile.Sample
	for x := -50.0; x <= 50; x += 0.1 {
		v := 0.0
		for _, c := range centres {
			d := x - c
			v += math.Exp(-0.5 * d * d / 0.05)
		}
		samples = append(samples, profile.Sample{Position: x, Value: v, Weight: 1})
	}
	got, err := Detect(profile.NewProfile(samples), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 9)
	for i, pk := range got {
		assert.InDelta(t, -40+10*float64(i), pk.Position, 0.05)
	}
}

func TestFilterSharp(t *testing.T) {
	var samples []profile.Sample
	for x := 0.0; x <= 100; x += 1 {
		// Sharp spike at 25, broad hump at 75.
		v := math.Exp(-0.5*(x-25)*(x-25)/1.0)*10 + math.Exp(-0.5*(x-75)*(x-75)/400.0)
		samples = append(samples, profile.Sample{Position: x, Value: v, Weight: 1})
	}
	p := profile.NewProfile(samples)
	found := Find(p)
	require.Len(t, found, 2)

	kept := FilterSharp(p, found, 3, 90)
	require.Len(t, kept, 1)
	assert.InDelta(t, 25.0, kept[0].Position, 0.5)
}

func TestSeparations(t *testing.T) {
	assert.Nil(t, Separations([]Peak{{Position: 1}}))
	assert.Equal(t, []float64{2, 3}, Separations([]Peak{{Position: 1}, {Position: 3}, {Position: 6}}))
}

func TestDetectDropsPeaksBelowBaseline(t *testing.T) {
	centres := []float64{-40, -30, -20, -10, 0, 10, 20, 30, 40}
	p := gapProfile(centres, -60, 50, 0.5)
	// A ripple that never rises above zero, like the high-pass residue at
	// the end of a profile with a trend.
	var samples []profile.Sample
	for _, s := range p.Samples() {
		if s.Position < -50 {
			d := s.Position - (-55)
			s.Value = -0.05 + 0.02*math.Exp(-0.5*d*d)
		}
		samples = append(samples, s)
	}
	p = profile.NewProfile(samples)

	require.Len(t, Find(p), 10)

	got, err := Detect(p, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 9)
	assert.InDelta(t, -40.0, got[0].Position, 0.05)

	opts := DefaultOptions()
	opts.MinValue = math.Inf(-1)
	got, err = Detect(p, opts)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}
