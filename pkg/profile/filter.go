package profile

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// DefaultHighPassSigma is the Gaussian width, in position units, of the
// trend removed by the high-pass stage.
const DefaultHighPassSigma = 15.0

// gaussianReach is how many sigmas the Gaussian window extends on each side.
const gaussianReach = 3.0

// spencer15 holds Spencer's 15-point moving average weights (sum 320).
var spencer15 = [15]float64{-3, -6, -5, 3, 21, 46, 67, 74, 67, 46, 21, 3, -5, -6, -3}

// FilterOptions controls the smoothing/high-pass cascade.
type FilterOptions struct {
	// Spencer enables the primary 15-point smoothing stage
	Spencer bool

	// HighPassSigma is the Gaussian sigma of the subtracted trend; 0 disables the stage
	HighPassSigma float64
}

// DefaultFilterOptions mirrors the standard cascade.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{Spencer: true, HighPassSigma: DefaultHighPassSigma}
}

// Filter runs the cascade: Spencer smoothing, then subtraction of a wide
// Gaussian moving average to remove beam-profile and imager trends.
func (p *Profile) Filter(opts FilterOptions) (*Profile, error) {
	if len(p.samples) == 0 {
		return nil, ErrEmptyProfile
	}
	out := p
	if opts.Spencer {
		out = out.Spencer15()
	}
	if opts.HighPassSigma > 0 {
		return out.HighPass(opts.HighPassSigma)
	}
	return out, nil
}

// Spencer15 applies Spencer's 15-point two-sided moving average. Indices past
// either end are clamped to the end samples.
func (p *Profile) Spencer15() *Profile {
	n := len(p.samples)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for k, w := range spencer15 {
			j := i + k - 7
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			acc += w * p.samples[j].Value
		}
		values[i] = acc / 320.0
	}
	return p.withValues(values)
}

// GaussianMovingAverage smooths with Gaussian weights on position distance.
// The window is truncated at 3 sigma and renormalised near the ends.
func (p *Profile) GaussianMovingAverage(sigma float64) *Profile {
	n := len(p.samples)
	values := make([]float64, n)
	if sigma <= 0 {
		for i, s := range p.samples {
			values[i] = s.Value
		}
		return p.withValues(values)
	}

	reach := gaussianReach * sigma
	lo := 0
	for i := 0; i < n; i++ {
		x := p.samples[i].Position
		for p.samples[lo].Position < x-reach {
			lo++
		}
		var sw, swv float64
		for j := lo; j < n && p.samples[j].Position <= x+reach; j++ {
			d := p.samples[j].Position - x
			w := math.Exp(-0.5 * d * d / (sigma * sigma))
			sw += w
			swv += w * p.samples[j].Value
		}
		values[i] = swv / sw
	}
	return p.withValues(values)
}

// HighPass subtracts the Gaussian moving average of width sigma.
func (p *Profile) HighPass(sigma float64) (*Profile, error) {
	return p.Subtract(p.GaussianMovingAverage(sigma))
}

// DominantPeriod estimates the strongest repeat distance in the profile from
// its power spectrum. The profile should be evenly spaced, as produced by
// BinWeightedMean. The DC term is ignored; ok is false when no period can
// be resolved.
func (p *Profile) DominantPeriod() (period float64, ok bool) {
	n := len(p.samples)
	if n < 4 {
		return 0, false
	}
	span := p.samples[n-1].Position - p.samples[0].Position
	if span <= 0 {
		return 0, false
	}
	spacing := span / float64(n-1)

	values := p.Values()
	floats.AddConst(-floats.Sum(values)/float64(n), values)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, values)

	best, bestPower := 0, 0.0
	for k := 1; k < len(coeffs); k++ {
		if power := cmplx.Abs(coeffs[k]); power > bestPower {
			best, bestPower = k, power
		}
	}
	if best == 0 || bestPower == 0 {
		return 0, false
	}
	freq := fft.Freq(best) // cycles per sample
	return spacing / freq, true
}
