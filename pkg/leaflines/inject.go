package leaflines

import (
	"errors"
	"fmt"
	"math"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
)

// ErrLineInjection is returned when a line cannot be drawn on an image grid.
var ErrLineInjection = errors.New("cannot inject line contour")

// thinFraction is the overlay half-width as a fraction of the finer pixel spacing.
const thinFraction = 0.25

// Inject draws line as a thin closed contour across img. The line is first
// projected into the image plane and then clipped to the pixel grid; lines
// perpendicular to the plane or missing the grid fail with ErrLineInjection.
func Inject(img *models.Image, line geometry.Line, roiName string) (models.ContourSet, error) {
	normal := img.Normal()
	dir := line.Dir.Sub(normal.Mul(line.Dir.Dot(normal)))
	if dir.Norm() < 1e-9 {
		return models.ContourSet{}, fmt.Errorf("%w: line is perpendicular to the image plane", ErrLineInjection)
	}
	dir = dir.Normalize()

	_, _, depth := img.Fractional(line.R0)
	r0 := line.R0.Sub(normal.Mul(depth))
	row0, col0, _ := img.Fractional(r0)
	dRow := dir.Dot(img.RowUnit) / img.PixelDX
	dCol := dir.Dot(img.ColUnit) / img.PixelDY

	tMin, tMax := math.Inf(-1), math.Inf(1)
	clip := func(start, rate, lo, hi float64) bool {
		if rate == 0 {
			return start >= lo && start <= hi
		}
		t1, t2 := (lo-start)/rate, (hi-start)/rate
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		return tMin < tMax
	}
	if !clip(row0, dRow, -0.5, float64(img.Rows)-0.5) || !clip(col0, dCol, -0.5, float64(img.Columns)-0.5) {
		return models.ContourSet{}, fmt.Errorf("%w: line through %v misses the %dx%d image", ErrLineInjection, line.R0, img.Rows, img.Columns)
	}

	a := r0.Add(dir.Mul(tMin))
	b := r0.Add(dir.Mul(tMax))
	w := normal.Cross(dir).Normalize().Mul(thinFraction * math.Min(img.PixelDX, img.PixelDY))

	meta := make(map[string]string, len(img.Metadata)+2)
	for k, v := range img.Metadata {
		meta[k] = v
	}
	meta[models.KeyROIName] = roiName
	meta[models.KeyNormalizedROIName] = roiName

	return models.ContourSet{
		Points:   []geometry.Vec{a.Sub(w), b.Sub(w), b.Add(w), a.Add(w)},
		Metadata: meta,
	}, nil
}

// InjectAll draws every line into a new collection named roiName. Lines that
// cannot be drawn are skipped; their errors are returned alongside.
func InjectAll(img *models.Image, lines []geometry.Line, roiName string) (models.ContourCollection, []error) {
	cc := models.ContourCollection{Name: roiName}
	var skipped []error
	for i, l := range lines {
		c, err := Inject(img, l, roiName)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", i, err))
			continue
		}
		cc.Contours = append(cc.Contours, c)
	}
	return cc, skipped
}
