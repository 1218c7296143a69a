// Package visualization renders an analysed image with its contour overlays
// burned in, for visual checks of the detected leaf-pair lines.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"picketfence/internal/models"
)

// palette cycles through overlay colours, one per collection.
var palette = []color.NRGBA{
	{R: 255, G: 64, B: 64, A: 255},
	{R: 64, G: 220, B: 64, A: 255},
	{R: 64, G: 128, B: 255, A: 255},
	{R: 255, G: 200, B: 0, A: 255},
}

// Viewer renders one image. Intensities are windowed linearly between the
// image minimum and maximum.
type Viewer struct {
	img    *models.Image
	lo, hi float64

	// Scale enlarges the rendering by an integer factor
	Scale int
}

// NewViewer creates a viewer for img.
func NewViewer(img *models.Image) (*Viewer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return &Viewer{
		img:   img,
		lo:    floats.Min(img.Data),
		hi:    floats.Max(img.Data),
		Scale: 1,
	}, nil
}

// Render draws the image with the outline of every contour in collections.
// Rows run down the rendering and columns across.
func (v *Viewer) Render(collections []models.ContourCollection) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, v.img.Columns, v.img.Rows))
	span := v.hi - v.lo
	for row := 0; row < v.img.Rows; row++ {
		for col := 0; col < v.img.Columns; col++ {
			g := uint8(0)
			if span > 0 {
				g = uint8(math.Round(255 * (v.img.Value(row, col) - v.lo) / span))
			}
			out.SetNRGBA(col, row, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}

	for i, cc := range collections {
		c := palette[i%len(palette)]
		for _, contour := range cc.Contours {
			v.outline(out, contour, c)
		}
	}

	if v.Scale > 1 {
		return imaging.Resize(out, v.Scale*v.img.Columns, v.Scale*v.img.Rows, imaging.NearestNeighbor)
	}
	return out
}

// outline traces the closed polygon in half-pixel steps.
func (v *Viewer) outline(out *image.NRGBA, contour models.ContourSet, c color.NRGBA) {
	n := len(contour.Points)
	for i := 0; i < n; i++ {
		r0, c0, _ := v.img.Fractional(contour.Points[i])
		r1, c1, _ := v.img.Fractional(contour.Points[(i+1)%n])
		steps := int(math.Ceil(2*math.Max(math.Abs(r1-r0), math.Abs(c1-c0)))) + 1
		for s := 0; s <= steps; s++ {
			f := float64(s) / float64(steps)
			row := int(math.Round(r0 + f*(r1-r0)))
			col := int(math.Round(c0 + f*(c1-c0)))
			if row >= 0 && row < v.img.Rows && col >= 0 && col < v.img.Columns {
				out.SetNRGBA(col, row, c)
			}
		}
	}
}

// Save renders and writes the image; the format follows the file extension.
func (v *Viewer) Save(path string, collections []models.ContourCollection) error {
	if err := imaging.Save(v.Render(collections), path); err != nil {
		return fmt.Errorf("error saving preview %s: %w", path, err)
	}
	return nil
}
