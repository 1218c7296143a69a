// Package peaks locates leaf-gap peaks in a filtered junction-orthogonal
// profile.
//
// Peaks (gaps between leaves) are targeted rather than troughs because the
// dose behind the jaws confounds trough isolation at the field edges, and the
// narrow gaps give spatially sharper maxima.
package peaks

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"picketfence/pkg/profile"
)

// ErrPeakDetectionFailure is returned when too few peaks survive merging.
var ErrPeakDetectionFailure = errors.New("leaf-leakage peaks not correctly detected")

// Peak is a local maximum of the profile.
type Peak struct {
	Position float64
	Value    float64
}

// Options tunes detection.
type Options struct {
	// MergeDistance is the separation below which peaks are averaged together.
	// Leaves are thicker than ~2 mm so 2.0 cannot merge distinct leaves.
	MergeDistance float64

	// MinPeaks is the fewest peaks a valid picket fence can expose
	MinPeaks int

	// SharpnessWindow is the number of samples fitted on each side of a peak.
	// Zero disables the sharpness filter.
	SharpnessWindow int

	// MaxApexAngleDeg is the widest apex angle, between the left and right
	// fitted lines, that still counts as a sharp peak
	MaxApexAngleDeg float64

	// MinValue drops peaks whose filtered value is not above it. The
	// high-passed profile is centred on zero, so ripples left where the
	// moving average runs out of samples at the profile ends stay below it.
	MinValue float64
}

// DefaultOptions returns the standard detection parameters.
func DefaultOptions() Options {
	return Options{
		MergeDistance: 2.0,
		MinPeaks:      5,
	}
}

// Detect finds, merges and validates peaks. The result is ordered by position.
func Detect(p *profile.Profile, opts Options) ([]Peak, error) {
	found := AboveValue(Find(p), opts.MinValue)
	if opts.SharpnessWindow > 0 && opts.MaxApexAngleDeg > 0 {
		found = FilterSharp(p, found, opts.SharpnessWindow, opts.MaxApexAngleDeg)
	}
	merged := Merge(found, opts.MergeDistance)
	if len(merged) < opts.MinPeaks {
		return merged, fmt.Errorf("%w: found %d peaks, need at least %d; verify the junction contours and thresholding",
			ErrPeakDetectionFailure, len(merged), opts.MinPeaks)
	}
	return merged, nil
}

// Find returns every local maximum, located where the discrete derivative
// changes sign from positive to negative. The crossing is linearly
// interpolated; flat tops resolve to the middle of the plateau.
func Find(p *profile.Profile) []Peak {
	n := p.Len()
	if n < 3 {
		return nil
	}

	mids := make([]float64, n-1)
	deriv := make([]float64, n-1)
	for i := 0; i+1 < n; i++ {
		a, b := p.At(i), p.At(i+1)
		mids[i] = 0.5 * (a.Position + b.Position)
		if dx := b.Position - a.Position; dx > 0 {
			deriv[i] = (b.Value - a.Value) / dx
		}
	}

	var out []Peak
	for j := 0; j < len(deriv); j++ {
		if deriv[j] <= 0 {
			continue
		}
		k := j + 1
		for k < len(deriv) && deriv[k] == 0 {
			k++
		}
		if k >= len(deriv) {
			break
		}
		if deriv[k] < 0 {
			var x float64
			if k == j+1 {
				x = mids[j] + deriv[j]/(deriv[j]-deriv[k])*(mids[k]-mids[j])
			} else {
				x = 0.5 * (p.At(j+1).Position + p.At(k).Position)
			}
			out = append(out, Peak{Position: x, Value: p.Interpolate(x)})
		}
		j = k - 1
	}
	return out
}

// AboveValue keeps the peaks whose value exceeds floor.
func AboveValue(in []Peak, floor float64) []Peak {
	out := make([]Peak, 0, len(in))
	for _, pk := range in {
		if pk.Value > floor {
			out = append(out, pk)
		}
	}
	return out
}

// Merge averages runs of peaks closer than dist, repeating until every
// adjacent pair is at least dist apart. Input must be ordered by position.
func Merge(in []Peak, dist float64) []Peak {
	out := append([]Peak(nil), in...)
	if dist <= 0 {
		return out
	}
	for {
		merged := make([]Peak, 0, len(out))
		changed := false
		for i := 0; i < len(out); {
			j := i + 1
			sumX, sumV := out[i].Position, out[i].Value
			for j < len(out) && out[j].Position-out[j-1].Position < dist {
				sumX += out[j].Position
				sumV += out[j].Value
				j++
			}
			if cnt := float64(j - i); cnt > 1 {
				changed = true
				merged = append(merged, Peak{Position: sumX / cnt, Value: sumV / cnt})
			} else {
				merged = append(merged, out[i])
			}
			i = j
		}
		out = merged
		if !changed {
			return out
		}
	}
}

// FilterSharp drops peaks whose flanks are too shallow. A line is fitted to
// window samples on each side of the peak and the peak is kept when the apex
// angle between the two descending flanks is at most maxApexDeg. Peaks
// without enough samples on either side are kept.
func FilterSharp(p *profile.Profile, in []Peak, window int, maxApexDeg float64) []Peak {
	xs, ys := p.Positions(), p.Values()
	maxApex := maxApexDeg * math.Pi / 180.0

	var out []Peak
	for _, pk := range in {
		i := nearestIndex(xs, pk.Position)
		if i-window < 0 || i+window >= len(xs) {
			out = append(out, pk)
			continue
		}
		_, left := stat.LinearRegression(xs[i-window:i+1], ys[i-window:i+1], nil, false)
		_, right := stat.LinearRegression(xs[i:i+window+1], ys[i:i+window+1], nil, false)
		if apexAngle(left, right) <= maxApex {
			out = append(out, pk)
		}
	}
	return out
}

// apexAngle is the angle between the ray running left down the left flank
// and the ray running right down the right flank.
func apexAngle(leftSlope, rightSlope float64) float64 {
	lx, ly := -1.0, -leftSlope
	rx, ry := 1.0, rightSlope
	cos := (lx*rx + ly*ry) / (math.Hypot(lx, ly) * math.Hypot(rx, ry))
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

func nearestIndex(xs []float64, x float64) int {
	best, bestD := 0, math.Inf(1)
	for i, v := range xs {
		if d := math.Abs(v - x); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Separations returns the absolute distances between adjacent peaks.
func Separations(ps []Peak) []float64 {
	if len(ps) < 2 {
		return nil
	}
	out := make([]float64, 0, len(ps)-1)
	for i := 1; i < len(ps); i++ {
		out = append(out, math.Abs(ps[i].Position-ps[i-1].Position))
	}
	return out
}
