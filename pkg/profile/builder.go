package profile

import (
	"picketfence/internal/models"
	"picketfence/pkg/geometry"
)

// Build projects every pixel onto the long axis, measured from corner, and
// returns the unsorted (projection, intensity) scatter.
func Build(img *models.Image, long, corner geometry.Vec) *Scatter {
	s := NewScatter(img.Rows * img.Columns)
	for row := 0; row < img.Rows; row++ {
		for col := 0; col < img.Columns; col++ {
			rel := img.Position(row, col).Sub(corner)
			s.Append(rel.Dot(long), img.Value(row, col))
		}
	}
	return s
}

// BuildBand is Build restricted to pixels whose short-axis coordinate
// (relative to the origin) lies strictly between lo and hi, i.e. the region
// spanned by the junctions.
func BuildBand(img *models.Image, long, short, corner geometry.Vec, lo, hi float64) *Scatter {
	s := NewScatter(img.Rows * img.Columns)
	for row := 0; row < img.Rows; row++ {
		for col := 0; col < img.Columns; col++ {
			pos := img.Position(row, col)
			if d := pos.Dot(short); d <= lo || d >= hi {
				continue
			}
			s.Append(pos.Sub(corner).Dot(long), img.Value(row, col))
		}
	}
	return s
}

// BinCount is the bin count matched to the image resolution.
func BinCount(img *models.Image) int {
	if img.Rows > img.Columns {
		return img.Rows
	}
	return img.Columns
}
