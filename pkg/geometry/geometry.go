// Package geometry provides the point, line and contour primitives used by the
// picket fence analysis. Points and directions are r3 vectors in physical
// (DICOM patient) units.
package geometry

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
)

// Vec is a point or direction in physical space.
type Vec = r3.Vector

// Origin is the coordinate origin, which doubles as the nominal beam central axis.
var Origin = Vec{}

// ErrEmptyContour is returned when a centroid is requested for a contour with no points.
var ErrEmptyContour = errors.New("contour has no points")

// degenerateArea is the vector-area magnitude below which a polygon is
// treated as a line or point and the vertex mean is used instead.
const degenerateArea = 1e-12

// Line is an infinite line through R0 along Dir. Dir is kept unit length.
type Line struct {
	R0  Vec
	Dir Vec
}

// NewLine builds the line passing through a and b.
func NewLine(a, b Vec) Line {
	return Line{R0: a, Dir: b.Sub(a).Normalize()}
}

// At returns the point a signed distance t along the line from R0.
func (l Line) At(t float64) Vec {
	return l.R0.Add(l.Dir.Mul(t))
}

// Project returns the signed distance of the foot of the perpendicular from p.
func (l Line) Project(p Vec) float64 {
	return p.Sub(l.R0).Dot(l.Dir)
}

// Distance returns the perpendicular distance from p to the line.
func (l Line) Distance(p Vec) float64 {
	return l.At(l.Project(p)).Distance(p)
}

// Unit returns v scaled to unit length, or the zero vector if v is zero.
func Unit(v Vec) Vec {
	return v.Normalize()
}

// ProjectOnto returns the scalar projection of p-from onto the unit axis.
func ProjectOnto(p, from, axis Vec) float64 {
	return p.Sub(from).Dot(axis)
}

// Mean returns the arithmetic mean of the points.
func Mean(points []Vec) (Vec, error) {
	if len(points) == 0 {
		return Vec{}, ErrEmptyContour
	}
	var sum Vec
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points))), nil
}

// Centroid computes the area-weighted centroid of a closed planar polygon.
//
// The polygon is fan-triangulated from its first vertex and each triangle's
// centroid is weighted by its signed area along the polygon's overall vector
// area, so concave outlines are handled. Polygons without area (collinear or
// repeated vertices) fall back to the vertex mean.
func Centroid(points []Vec) (Vec, error) {
	if len(points) == 0 {
		return Vec{}, ErrEmptyContour
	}
	if len(points) < 3 {
		return Mean(points)
	}

	normal := VectorArea(points)
	if normal.Norm() < degenerateArea {
		return Mean(points)
	}
	n := normal.Normalize()

	p0 := points[0]
	var weighted Vec
	var total float64
	for i := 1; i+1 < len(points); i++ {
		a := points[i].Sub(p0)
		b := points[i+1].Sub(p0)
		area := 0.5 * a.Cross(b).Dot(n)
		c := p0.Add(points[i]).Add(points[i+1]).Mul(1.0 / 3.0)
		weighted = weighted.Add(c.Mul(area))
		total += area
	}
	if math.Abs(total) < degenerateArea {
		return Mean(points)
	}
	return weighted.Mul(1.0 / total), nil
}

// VectorArea returns the polygon's vector area: its direction is the plane
// normal and its magnitude is the enclosed area.
func VectorArea(points []Vec) Vec {
	var sum Vec
	for i := range points {
		j := (i + 1) % len(points)
		sum = sum.Add(points[i].Cross(points[j]))
	}
	return sum.Mul(0.5)
}
