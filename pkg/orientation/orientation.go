// Package orientation estimates the junction-aligned (long) and
// junction-orthogonal (short) directions of a picket fence from the shapes of
// its junction contours using principal component analysis.
package orientation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"picketfence/pkg/geometry"
)

// MinContours is the number of junction contours needed to separate the
// long and short axes.
const MinContours = 2

// ErrInsufficientData is returned when too few junction contours are supplied.
var ErrInsufficientData = errors.New("insufficient junction contours")

// Frame holds the two orthonormal in-plane directions.
type Frame struct {
	// Long is aligned with the junctions (principal component)
	Long geometry.Vec

	// Short is orthogonal to the junctions (second component)
	Short geometry.Vec

	// LongSpread and ShortSpread are the corresponding covariance eigenvalues
	LongSpread  float64
	ShortSpread float64
}

// planarTolerance is the relative spread below which the second principal
// component no longer separates the in-plane short axis from the plane normal.
const planarTolerance = 1e-9

// Estimate runs PCA over the contours. Each contour is first translated to
// its own centroid so the estimate reflects ROI shape rather than the
// arrangement of ROIs across the image. Empty contours are ignored.
//
// When the contours have no width (straight polylines) the plane normal is
// taken from the arrangement of the contours; see EstimateInPlane.
func Estimate(contours [][]geometry.Vec) (Frame, error) {
	return EstimateInPlane(contours, geometry.Vec{})
}

// EstimateInPlane is Estimate with a known plane normal, normally the image
// normal. Zero-width contours leave only one meaningful component, so the
// short axis is then rebuilt as Long x normal. A zero normal falls back to
// the least-spread direction of the uncentred contour points.
func EstimateInPlane(contours [][]geometry.Vec, normal geometry.Vec) (Frame, error) {
	var centred, raw []float64
	n := 0
	for _, pts := range contours {
		if len(pts) == 0 {
			continue
		}
		cent, err := geometry.Centroid(pts)
		if err != nil {
			return Frame{}, err
		}
		for _, p := range pts {
			c := p.Sub(cent)
			centred = append(centred, c.X, c.Y, c.Z)
			raw = append(raw, p.X, p.Y, p.Z)
		}
		n++
	}
	if n < MinContours {
		return Frame{}, fmt.Errorf("%w: need at least %d, got %d", ErrInsufficientData, MinContours, n)
	}
	rows := len(centred) / 3
	if rows < 2 {
		return Frame{}, fmt.Errorf("%w: only %d vertices", ErrInsufficientData, rows)
	}

	cov, values, vecs, err := principal(mat.NewDense(rows, 3, centred))
	if err != nil {
		return Frame{}, err
	}
	if values[2] <= 0 {
		return Frame{}, fmt.Errorf("%w: junction contours have no extent", ErrInsufficientData)
	}

	// Eigenvalues are returned in ascending order.
	long := column(vecs, 2).Normalize()
	short := column(vecs, 1).Normalize()
	shortSpread := values[1]

	if values[1] <= planarTolerance*values[2] {
		if normal.Norm() == 0 {
			_, av, avecs, err := principal(mat.NewDense(rows, 3, raw))
			if err != nil {
				return Frame{}, err
			}
			if av[1] <= planarTolerance*av[2] {
				return Frame{}, fmt.Errorf("%w: straight junction contours are collinear", ErrInsufficientData)
			}
			normal = column(avecs, 0)
		}
		short = long.Cross(normal)
		if short.Norm() == 0 {
			return Frame{}, fmt.Errorf("junction contours run along the plane normal %v", normal)
		}
		short = short.Normalize()
		s := mat.NewVecDense(3, []float64{short.X, short.Y, short.Z})
		shortSpread = mat.Inner(s, cov, s)
	}

	return Frame{
		Long:        canonicalSign(long),
		Short:       canonicalSign(short),
		LongSpread:  values[2],
		ShortSpread: shortSpread,
	}, nil
}

// principal returns the covariance of the rows of points with its ascending
// eigenvalues and matching eigenvectors.
func principal(points *mat.Dense) (*mat.SymDense, []float64, *mat.Dense, error) {
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, points, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return nil, nil, nil, fmt.Errorf("eigen decomposition of vertex covariance failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return &cov, eig.Values(nil), &vecs, nil
}

func column(m *mat.Dense, j int) geometry.Vec {
	return geometry.Vec{X: m.At(0, j), Y: m.At(1, j), Z: m.At(2, j)}
}

// canonicalSign flips v so that its largest-magnitude component is positive.
// Eigenvector signs are otherwise arbitrary.
func canonicalSign(v geometry.Vec) geometry.Vec {
	c := v.X
	if math.Abs(v.Y) > math.Abs(c) {
		c = v.Y
	}
	if math.Abs(v.Z) > math.Abs(c) {
		c = v.Z
	}
	if c < 0 {
		return v.Mul(-1)
	}
	return v
}
