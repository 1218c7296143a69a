// Package leaflines turns detected peaks or nominal MLC offsets into physical
// leaf-pair boundary lines and draws them as thin overlay contours.
package leaflines

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"picketfence/pkg/geometry"
	"picketfence/pkg/orientation"
)

// FromPeaks places one line per peak. Each peak position is a long-axis
// distance measured from corner; the line is anchored on the long-axis line
// through anchor (normally the first junction) and runs along the short axis.
func FromPeaks(positions []float64, anchor, corner geometry.Vec, frame orientation.Frame) []geometry.Line {
	offset := anchor.Sub(corner).Dot(frame.Long)
	lines := make([]geometry.Line, 0, len(positions))
	for _, d := range positions {
		r := anchor.Add(frame.Long.Mul(d - offset))
		lines = append(lines, geometry.Line{R0: r, Dir: frame.Short})
	}
	return lines
}

// FromOffsets places one line per nominal leaf-pair offset, measured along the
// long axis from the coordinate origin (the central axis).
func FromOffsets(offsets []float64, frame orientation.Frame) []geometry.Line {
	lines := make([]geometry.Line, 0, len(offsets))
	for _, x := range offsets {
		r := geometry.Origin.Add(frame.Long.Mul(x))
		lines = append(lines, geometry.Line{R0: r, Dir: frame.Short})
	}
	return lines
}

// PeakStats summarises the spacing of detected peaks.
type PeakStats struct {
	Separations []float64
	Mean        float64
	Median      float64
}

// Summarise computes mean and median of peak separations. Both are NaN when
// there are no separations.
func Summarise(separations []float64) PeakStats {
	s := PeakStats{Separations: separations, Mean: math.NaN(), Median: math.NaN()}
	if len(separations) == 0 {
		return s
	}
	s.Mean = stat.Mean(separations, nil)
	s.Median = median(separations)
	return s
}

// median averages the empirical quantiles either side of the middle of the
// sorted values; they coincide for odd lengths.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	lo := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.5+0.25/n, stat.Empirical, sorted, nil)
	return 0.5 * (lo + hi)
}
