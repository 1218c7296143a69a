// Package phantom synthesises picket-fence images with matching junction
// contours. The fences are noise free so the expected leaf-gap positions are
// known exactly; they are used for smoke tests and the CLI's -phantom mode.
package phantom

import (
	"fmt"
	"math"
	"strconv"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
)

// Options describes the synthetic fence. Distances are in mm in the image
// plane, with the central axis at the origin.
type Options struct {
	// Size is the number of rows and columns; Spacing the pixel pitch
	Size    int
	Spacing float64

	// Rotation turns the fence in-plane, in degrees. At zero the junctions
	// run along +Y and the leaves travel along X.
	Rotation float64

	// Leaf gaps: Count peaks Pitch apart, centred on the origin
	GapCount  int
	GapPitch  float64
	GapWidth  float64
	GapHeight float64

	// Background level and a linear trend along the junctions
	Background float64
	Trend      float64

	// Junctions are the leaf-travel positions of the pickets
	Junctions      []float64
	JunctionLength float64
	JunctionWidth  float64
	JunctionHeight float64

	// SplitJunctions contours each junction as two halves
	SplitJunctions bool

	StationName string
	SID         float64
}

// DefaultOptions is a Millennium 80 style fence: 21 gaps 10 mm apart seen
// across four pickets on a 261x261 1 mm grid.
func DefaultOptions() Options {
	return Options{
		Size:           261,
		Spacing:        1.0,
		GapCount:       21,
		GapPitch:       10.0,
		GapWidth:       1.0,
		GapHeight:      0.3,
		Background:     1.0,
		Trend:          0.002,
		Junctions:      []float64{-60, -20, 20, 60},
		JunctionLength: 200.0,
		JunctionWidth:  4.0,
		JunctionHeight: 0.5,
		StationName:    "PHANTOM",
		SID:            1000.0,
	}
}

// Axes returns the junction (long) and leaf-travel (short) directions.
func (o Options) Axes() (long, short geometry.Vec) {
	th := o.Rotation * math.Pi / 180.0
	long = geometry.Vec{X: -math.Sin(th), Y: math.Cos(th)}
	short = geometry.Vec{X: math.Cos(th), Y: math.Sin(th)}
	return long, short
}

// GapPositions returns the long-axis positions of the leaf gaps.
func (o Options) GapPositions() []float64 {
	out := make([]float64, o.GapCount)
	for k := range out {
		out[k] = (float64(k) - 0.5*float64(o.GapCount-1)) * o.GapPitch
	}
	return out
}

// Generate renders the image and the junction contours. Every junction goes
// into its own collection named "Junction N".
func Generate(o Options) (*models.Image, *models.ContourStore, error) {
	if o.Size <= 0 || o.Spacing <= 0 {
		return nil, nil, fmt.Errorf("phantom size and spacing must be positive, got %d and %g", o.Size, o.Spacing)
	}

	half := 0.5 * float64(o.Size-1) * o.Spacing
	img := models.NewImage(o.Size, o.Size, o.Spacing, o.Spacing, geometry.Vec{X: -half, Y: -half})
	if o.StationName != "" {
		img.Metadata[models.KeyStationName] = o.StationName
	}
	if o.SID > 0 {
		img.Metadata[models.KeyRTImageSID] = strconv.FormatFloat(o.SID, 'g', -1, 64)
	}
	img.Metadata[models.KeyBeamLimitingDeviceAngle] = strconv.FormatFloat(o.Rotation, 'g', -1, 64)

	long, short := o.Axes()
	gaps := o.GapPositions()
	for row := 0; row < img.Rows; row++ {
		for col := 0; col < img.Columns; col++ {
			p := img.Position(row, col)
			l, s := p.Dot(long), p.Dot(short)

			v := o.Background + o.Trend*l
			for _, g := range gaps {
				v += o.GapHeight * gauss(l-g, o.GapWidth)
			}
			for _, j := range o.Junctions {
				v += o.JunctionHeight * gauss(s-j, 0.5*o.JunctionWidth)
			}
			img.Set(row, col, v)
		}
	}

	store := &models.ContourStore{}
	for i, j := range o.Junctions {
		name := fmt.Sprintf("Junction %d", i+1)
		cc := models.ContourCollection{Name: name}
		centre := short.Mul(j)
		if o.SplitJunctions {
			quarter := 0.25 * o.JunctionLength
			cc.Contours = append(cc.Contours,
				rectangle(centre.Sub(long.Mul(quarter)), long, short, 2*quarter, o.JunctionWidth, name),
				rectangle(centre.Add(long.Mul(quarter)), long, short, 2*quarter, o.JunctionWidth, name))
		} else {
			cc.Contours = append(cc.Contours, rectangle(centre, long, short, o.JunctionLength, o.JunctionWidth, name))
		}
		store.Append(cc)
	}
	return img, store, nil
}

func gauss(d, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	return math.Exp(-0.5 * d * d / (sigma * sigma))
}

func rectangle(centre, long, short geometry.Vec, length, width float64, name string) models.ContourSet {
	hl, hw := long.Mul(0.5*length), short.Mul(0.5*width)
	return models.ContourSet{
		Points: []geometry.Vec{
			centre.Sub(hl).Sub(hw),
			centre.Add(hl).Sub(hw),
			centre.Add(hl).Add(hw),
			centre.Sub(hl).Add(hw),
		},
		Metadata: map[string]string{
			models.KeyROIName:           name,
			models.KeyNormalizedROIName: name,
		},
	}
}
