// Package junction collapses piecewise-contoured junctions into one logical
// junction per leaf-pair boundary and reports their spacing.
package junction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"picketfence/pkg/geometry"
)

// DefaultMinimumSeparation is the default minimum junction spacing in DICOM units.
const DefaultMinimumSeparation = 10.0

// Deduplicate orders centroids by their short-axis projection and drops any
// centroid closer than half of minSeparation to the last one kept. The first
// centroid of each cluster represents it. The input is not modified.
func Deduplicate(centroids []geometry.Vec, short geometry.Vec, minSeparation float64) []geometry.Vec {
	sorted := append([]geometry.Vec(nil), centroids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Dot(short) < sorted[j].Dot(short)
	})

	out := make([]geometry.Vec, 0, len(sorted))
	for _, c := range sorted {
		if len(out) > 0 {
			last := out[len(out)-1]
			if math.Abs(c.Sub(last).Dot(short)) < 0.5*minSeparation {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Separations summarises junction spacing along the short axis.
type Separations struct {
	// CAX holds each junction's signed short-axis offset from the origin, sorted
	CAX []float64

	// Adjacent holds distances between consecutive junctions
	Adjacent []float64

	// Min is the smallest adjacent distance, NaN with fewer than two junctions
	Min float64
}

// Measure computes separations for junctions already ordered along short.
func Measure(junctions []geometry.Vec, short geometry.Vec) Separations {
	s := Separations{Min: math.NaN()}
	for _, j := range junctions {
		s.CAX = append(s.CAX, j.Sub(geometry.Origin).Dot(short))
	}
	sort.Float64s(s.CAX)

	for i := 1; i < len(junctions); i++ {
		s.Adjacent = append(s.Adjacent, math.Abs(junctions[i].Sub(junctions[i-1]).Dot(short)))
	}
	if len(s.Adjacent) > 0 {
		s.Min = floats.Min(s.Adjacent)
	}
	return s
}
