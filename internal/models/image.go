package models

import (
	"fmt"
	"math"
	"strconv"

	"picketfence/pkg/geometry"
)

// Metadata keys consumed by the analysis.
const (
	KeyStationName             = "StationName"
	KeyBeamLimitingDeviceAngle = "BeamLimitingDeviceAngle"
	KeyRTImageSID              = "RTImageSID"
	KeyROIName                 = "ROIName"
	KeyNormalizedROIName       = "NormalizedROIName"
)

// Image is a planar grid of scalar intensities positioned in physical space.
type Image struct {
	// Rows and Columns are the grid dimensions
	Rows    int
	Columns int

	// Data holds Rows*Columns samples in row-major order
	Data []float64

	// Offset is the physical position of pixel (0,0)
	Offset geometry.Vec

	// RowUnit points along increasing row index, ColUnit along increasing column index
	RowUnit geometry.Vec
	ColUnit geometry.Vec

	// PixelDX is the spacing between rows, PixelDY between columns
	PixelDX float64
	PixelDY float64

	// Thickness is the slab thickness orthogonal to the image plane
	Thickness float64

	Metadata map[string]string
}

// NewImage allocates a zeroed image with an axis-aligned orientation.
func NewImage(rows, cols int, pxlDX, pxlDY float64, offset geometry.Vec) *Image {
	return &Image{
		Rows:      rows,
		Columns:   cols,
		Data:      make([]float64, rows*cols),
		Offset:    offset,
		RowUnit:   geometry.Vec{Y: 1},
		ColUnit:   geometry.Vec{X: 1},
		PixelDX:   pxlDX,
		PixelDY:   pxlDY,
		Thickness: 1.0,
		Metadata:  map[string]string{},
	}
}

// Validate checks that the grid and orientation are usable.
func (img *Image) Validate() error {
	if img.Rows <= 0 || img.Columns <= 0 {
		return fmt.Errorf("image has invalid dimensions %dx%d", img.Rows, img.Columns)
	}
	if len(img.Data) != img.Rows*img.Columns {
		return fmt.Errorf("image data has %d samples, expected %d", len(img.Data), img.Rows*img.Columns)
	}
	if img.PixelDX <= 0 || img.PixelDY <= 0 {
		return fmt.Errorf("image pixel spacing must be positive, got %g x %g", img.PixelDX, img.PixelDY)
	}
	if math.Abs(img.RowUnit.Norm()-1) > 1e-6 || math.Abs(img.ColUnit.Norm()-1) > 1e-6 {
		return fmt.Errorf("image orientation vectors must be unit length")
	}
	if math.Abs(img.RowUnit.Dot(img.ColUnit)) > 1e-6 {
		return fmt.Errorf("image orientation vectors must be orthogonal")
	}
	return nil
}

// Position returns the physical centre of pixel (row, col).
func (img *Image) Position(row, col int) geometry.Vec {
	return img.Offset.
		Add(img.RowUnit.Mul(img.PixelDX * float64(row))).
		Add(img.ColUnit.Mul(img.PixelDY * float64(col)))
}

// Corner is the position of pixel (0,0).
func (img *Image) Corner() geometry.Vec {
	return img.Position(0, 0)
}

// Value returns the intensity at (row, col).
func (img *Image) Value(row, col int) float64 {
	return img.Data[row*img.Columns+col]
}

// Set stores an intensity at (row, col).
func (img *Image) Set(row, col int, v float64) {
	img.Data[row*img.Columns+col] = v
}

// Normal is the unit normal of the image plane.
func (img *Image) Normal() geometry.Vec {
	return img.ColUnit.Cross(img.RowUnit).Normalize()
}

// Fractional maps a physical point into fractional (row, col) coordinates,
// along with its signed distance from the image plane.
func (img *Image) Fractional(p geometry.Vec) (row, col, depth float64) {
	d := p.Sub(img.Offset)
	return d.Dot(img.RowUnit) / img.PixelDX, d.Dot(img.ColUnit) / img.PixelDY, d.Dot(img.Normal())
}

// MetadataValue looks up a metadata key.
func (img *Image) MetadataValue(key string) (string, bool) {
	v, ok := img.Metadata[key]
	return v, ok
}

// MetadataFloat parses a numeric metadata value. Missing keys yield def.
func (img *Image) MetadataFloat(key string, def float64) (float64, error) {
	v, ok := img.Metadata[key]
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("metadata %s=%q is not numeric: %w", key, v, err)
	}
	return f, nil
}

// ImageArray groups images from one acquisition. Only the first image of an
// array is analysed.
type ImageArray struct {
	Images []*Image
}
