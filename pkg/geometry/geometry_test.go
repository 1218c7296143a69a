package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestCentroidSquare(t *testing.T) {
	square := []Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	c, err := Centroid(square)
	if err != nil {
		t.Fatalf("Centroid failed: %v", err)
	}
	if math.Abs(c.X-1) > 1e-12 || math.Abs(c.Y-1) > 1e-12 || c.Z != 0 {
		t.Errorf("Expected centroid (1,1,0), got %v", c)
	}
}

// Vertex clustering on one side must not drag the area centroid.
func TestCentroidUnevenVertices(t *testing.T) {
	poly := []Vec{
		{X: 0, Y: 0}, {X: 0.1, Y: 0}, {X: 0.2, Y: 0}, {X: 0.3, Y: 0},
		{X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2},
	}
	c, err := Centroid(poly)
	if err != nil {
		t.Fatalf("Centroid failed: %v", err)
	}
	if math.Abs(c.X-2) > 1e-9 || math.Abs(c.Y-1) > 1e-9 {
		t.Errorf("Expected centroid (2,1), got %v", c)
	}
}

func TestCentroidDegenerate(t *testing.T) {
	line := []Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	c, err := Centroid(line)
	if err != nil {
		t.Fatalf("Centroid failed: %v", err)
	}
	if math.Abs(c.X-1.5) > 1e-12 {
		t.Errorf("Expected vertex mean 1.5, got %v", c.X)
	}

	if _, err := Centroid(nil); !errors.Is(err, ErrEmptyContour) {
		t.Errorf("Expected ErrEmptyContour, got %v", err)
	}
}

func TestLineDistanceAndProject(t *testing.T) {
	l := NewLine(Vec{X: 1, Y: 1}, Vec{X: 1, Y: 5})
	if d := l.Distance(Vec{X: 4, Y: 3}); math.Abs(d-3) > 1e-12 {
		t.Errorf("Expected distance 3, got %f", d)
	}
	if p := l.Project(Vec{X: 4, Y: 3}); math.Abs(p-2) > 1e-12 {
		t.Errorf("Expected projection 2, got %f", p)
	}
	if got := l.At(2); got.Distance(Vec{X: 1, Y: 3}) > 1e-12 {
		t.Errorf("Expected At(2) = (1,3,0), got %v", got)
	}
}
