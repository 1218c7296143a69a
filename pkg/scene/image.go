package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/floats"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
)

// ReadImage decodes an image file and places it according to spec. Colour
// images are reduced to 16-bit luminance before rescaling.
func ReadImage(path string, spec ImageSpec) (*models.Image, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening image %s: %w", path, err)
	}

	dx, dy := 1.0, 1.0
	switch len(spec.PixelSpacing) {
	case 0:
	case 2:
		dx, dy = spec.PixelSpacing[0], spec.PixelSpacing[1]
	default:
		return nil, fmt.Errorf("pixelSpacing needs 2 values, got %d", len(spec.PixelSpacing))
	}
	offset, err := vec(spec.Offset, geometry.Vec{})
	if err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}

	b := src.Bounds()
	img := models.NewImage(b.Dy(), b.Dx(), dx, dy, offset)
	if img.RowUnit, err = vec(spec.RowUnit, img.RowUnit); err != nil {
		return nil, fmt.Errorf("rowUnit: %w", err)
	}
	if img.ColUnit, err = vec(spec.ColUnit, img.ColUnit); err != nil {
		return nil, fmt.Errorf("colUnit: %w", err)
	}

	slope := spec.RescaleSlope
	if slope == 0 {
		slope = 1
	}
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Columns; x++ {
			g := color.Gray16Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			img.Set(y, x, spec.RescaleIntercept+slope*float64(g.Y))
		}
	}
	for k, v := range spec.Metadata {
		img.Metadata[k] = v
	}

	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}
	return img, nil
}

// WriteImage stores img as a 16-bit greyscale TIFF at path and returns the
// spec that reads it back. Intensities are scaled linearly onto the full
// 16-bit range; the scale is recorded in the spec's rescale fields.
func WriteImage(path string, img *models.Image) (ImageSpec, error) {
	if err := img.Validate(); err != nil {
		return ImageSpec{}, err
	}
	lo, hi := floats.Min(img.Data), floats.Max(img.Data)
	slope := (hi - lo) / math.MaxUint16
	if slope == 0 {
		slope = 1
	}

	g := image.NewGray16(image.Rect(0, 0, img.Columns, img.Rows))
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Columns; x++ {
			g.SetGray16(x, y, color.Gray16{Y: uint16(math.Round((img.Value(y, x) - lo) / slope))})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ImageSpec{}, fmt.Errorf("error creating image directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return ImageSpec{}, fmt.Errorf("error creating image file: %w", err)
	}
	defer f.Close()
	if err := tiff.Encode(f, g, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return ImageSpec{}, fmt.Errorf("error encoding TIFF: %w", err)
	}

	meta := make(map[string]string, len(img.Metadata))
	for k, v := range img.Metadata {
		meta[k] = v
	}
	return ImageSpec{
		Path:             filepath.Base(path),
		PixelSpacing:     []float64{img.PixelDX, img.PixelDY},
		Offset:           []float64{img.Offset.X, img.Offset.Y, img.Offset.Z},
		RowUnit:          []float64{img.RowUnit.X, img.RowUnit.Y, img.RowUnit.Z},
		ColUnit:          []float64{img.ColUnit.X, img.ColUnit.Y, img.ColUnit.Z},
		RescaleSlope:     slope,
		RescaleIntercept: lo,
		Metadata:         meta,
	}, f.Close()
}
