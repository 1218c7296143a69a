package leaflines

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
	"picketfence/pkg/orientation"
)

var xyFrame = orientation.Frame{Long: geometry.Vec{X: 1}, Short: geometry.Vec{Y: 1}}

func testImage() *models.Image {
	// 101x101 grid at 1 mm spanning [-50, 50] in X and Y.
	img := models.NewImage(101, 101, 1.0, 1.0, geometry.Vec{X: -50, Y: -50})
	img.Metadata[models.KeyStationName] = "FVAREA4TB"
	return img
}

func TestFromOffsets(t *testing.T) {
	lines := FromOffsets([]float64{-15, -5, 5, 15}, xyFrame)
	require.Len(t, lines, 4)
	for i, want := range []float64{-15, -5, 5, 15} {
		assert.InDelta(t, want, lines[i].R0.X, 1e-12)
		assert.Equal(t, xyFrame.Short, lines[i].Dir)
	}
}

func TestFromPeaks(t *testing.T) {
	corner := geometry.Vec{X: -50, Y: -50}
	anchor := geometry.Vec{X: 3, Y: 20}
	// Peak at 55 mm from the corner lies at X = 5.
	lines := FromPeaks([]float64{55, 65}, anchor, corner, xyFrame)
	require.Len(t, lines, 2)
	assert.InDelta(t, 5.0, lines[0].R0.X, 1e-12)
	assert.InDelta(t, 20.0, lines[0].R0.Y, 1e-12)
	assert.InDelta(t, 15.0, lines[1].R0.X, 1e-12)
}

func TestInjectClipsToGrid(t *testing.T) {
	img := testImage()
	c, err := Inject(img, geometry.Line{R0: geometry.Vec{X: 10}, Dir: geometry.Vec{Y: 1}}, "Leaf")
	require.NoError(t, err)
	require.Len(t, c.Points, 4)

	var minY, maxY = math.Inf(1), math.Inf(-1)
	for _, p := range c.Points {
		assert.InDelta(t, 10.0, p.X, 0.25+1e-9)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	assert.InDelta(t, -50.5, minY, 1e-9)
	assert.InDelta(t, 50.5, maxY, 1e-9)
	assert.Equal(t, "Leaf", c.ROIName())
	assert.Equal(t, "FVAREA4TB", c.Metadata[models.KeyStationName])
}

// Lines anchored off the image plane are projected onto it.
func TestInjectProjectsOntoPlane(t *testing.T) {
	img := testImage()
	c, err := Inject(img, geometry.Line{R0: geometry.Vec{X: 10, Z: 25}, Dir: geometry.Vec{Y: 1}}, "Leaf")
	require.NoError(t, err)
	for _, p := range c.Points {
		assert.InDelta(t, 0.0, p.Z, 1e-12)
	}
}

func TestInjectFailures(t *testing.T) {
	img := testImage()
	cases := map[string]geometry.Line{
		"outside":       {R0: geometry.Vec{X: 80}, Dir: geometry.Vec{Y: 1}},
		"perpendicular": {R0: geometry.Vec{}, Dir: geometry.Vec{Z: 1}},
	}
	for name, l := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Inject(img, l, "Leaf")
			assert.True(t, errors.Is(err, ErrLineInjection), "got %v", err)
		})
	}
}

func TestInjectAllSkipsBadLines(t *testing.T) {
	img := testImage()
	lines := FromOffsets([]float64{-195, -45, -5, 5, 45, 195}, xyFrame)
	cc, skipped := InjectAll(img, lines, "Leaf-pair lines")
	assert.Len(t, cc.Contours, 4)
	require.Len(t, skipped, 2)
	for _, err := range skipped {
		assert.ErrorIs(t, err, ErrLineInjection)
	}
	assert.Equal(t, "Leaf-pair lines", cc.Name)
}

func TestSummarise(t *testing.T) {
	s := Summarise([]float64{10, 9, 11, 30})
	assert.InDelta(t, 15.0, s.Mean, 1e-12)
	assert.InDelta(t, 10.5, s.Median, 1e-12)

	odd := Summarise([]float64{3, 1, 2})
	assert.InDelta(t, 2.0, odd.Median, 1e-12)

	for _, tc := range []struct {
		in   []float64
		want float64
	}{
		{[]float64{7}, 7},
		{[]float64{8, 2}, 5},
		{[]float64{5, 1, 4, 2, 3}, 3},
		{[]float64{6, 1, 5, 2, 4, 3}, 3.5},
	} {
		assert.InDelta(t, tc.want, median(tc.in), 1e-12, "median of %v", tc.in)
	}
	in := []float64{3, 1, 2}
	median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)

	empty := Summarise(nil)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Median))
}
