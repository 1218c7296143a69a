// Package profile builds and filters the 1-D intensity profile taken across a
// picket fence, orthogonal to its junctions.
//
// Samples are first appended to an unordered Scatter and sorted exactly once
// into a Profile. Only a Profile exposes the order-dependent operations
// (binning, filtering, peak detection input), so unsorted data cannot reach
// them by accident.
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyProfile is returned by operations that need at least one sample.
var ErrEmptyProfile = errors.New("profile has no samples")

// Sample is one (position, value) datum with a non-negative aggregation weight.
type Sample struct {
	Position float64
	Value    float64
	Weight   float64
}

// Scatter is an unordered sample buffer.
type Scatter struct {
	samples []Sample
}

// NewScatter preallocates room for n samples.
func NewScatter(n int) *Scatter {
	return &Scatter{samples: make([]Sample, 0, n)}
}

// Append adds a unit-weight sample.
func (s *Scatter) Append(pos, val float64) {
	s.samples = append(s.samples, Sample{Position: pos, Value: val, Weight: 1})
}

// AppendWeighted adds a sample with an explicit weight.
func (s *Scatter) AppendWeighted(pos, val, w float64) {
	s.samples = append(s.samples, Sample{Position: pos, Value: val, Weight: w})
}

// Len returns the number of buffered samples.
func (s *Scatter) Len() int { return len(s.samples) }

// Sort stably orders the samples by position and returns them as a Profile.
// The scatter is left untouched.
func (s *Scatter) Sort() *Profile {
	return NewProfile(s.samples)
}

// Profile is a position-sorted sequence of samples.
type Profile struct {
	samples []Sample
}

// NewProfile copies and stably sorts samples by position.
func NewProfile(samples []Sample) *Profile {
	out := make([]Sample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return &Profile{samples: out}
}

// Len returns the number of samples.
func (p *Profile) Len() int { return len(p.samples) }

// At returns sample i.
func (p *Profile) At(i int) Sample { return p.samples[i] }

// Samples returns a copy of the samples.
func (p *Profile) Samples() []Sample {
	out := make([]Sample, len(p.samples))
	copy(out, p.samples)
	return out
}

// Positions returns the sample positions.
func (p *Profile) Positions() []float64 {
	out := make([]float64, len(p.samples))
	for i, s := range p.samples {
		out[i] = s.Position
	}
	return out
}

// Values returns the sample values.
func (p *Profile) Values() []float64 {
	out := make([]float64, len(p.samples))
	for i, s := range p.samples {
		out[i] = s.Value
	}
	return out
}

// withValues returns a profile sharing this one's positions and weights.
func (p *Profile) withValues(values []float64) *Profile {
	out := make([]Sample, len(p.samples))
	for i, s := range p.samples {
		out[i] = Sample{Position: s.Position, Value: values[i], Weight: s.Weight}
	}
	return &Profile{samples: out}
}

// BinWeightedMean aggregates the profile into n equal-width bins spanning its
// position range. Each bin carries the weighted mean position and weighted
// mean value of the samples falling in it; empty bins are dropped.
func (p *Profile) BinWeightedMean(n int) (*Profile, error) {
	if n <= 0 {
		return nil, fmt.Errorf("bin count must be positive, got %d", n)
	}
	if len(p.samples) == 0 {
		return nil, ErrEmptyProfile
	}
	lo := p.samples[0].Position
	hi := p.samples[len(p.samples)-1].Position
	width := (hi - lo) / float64(n)
	if width <= 0 {
		return p.collapse(), nil
	}

	sumW := make([]float64, n)
	sumWX := make([]float64, n)
	sumWV := make([]float64, n)
	for _, s := range p.samples {
		idx := int((s.Position - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		sumW[idx] += s.Weight
		sumWX[idx] += s.Weight * s.Position
		sumWV[idx] += s.Weight * s.Value
	}

	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		if sumW[i] <= 0 {
			continue
		}
		out = append(out, Sample{
			Position: sumWX[i] / sumW[i],
			Value:    sumWV[i] / sumW[i],
			Weight:   sumW[i],
		})
	}
	return &Profile{samples: out}, nil
}

// collapse merges every sample into one weighted mean datum.
func (p *Profile) collapse() *Profile {
	var sw, swv float64
	for _, s := range p.samples {
		sw += s.Weight
		swv += s.Weight * s.Value
	}
	v := 0.0
	if sw > 0 {
		v = swv / sw
	}
	return &Profile{samples: []Sample{{Position: p.samples[0].Position, Value: v, Weight: sw}}}
}

// Subtract returns p - o elementwise. Both profiles must share positions.
func (p *Profile) Subtract(o *Profile) (*Profile, error) {
	if len(p.samples) != len(o.samples) {
		return nil, fmt.Errorf("cannot subtract profiles of %d and %d samples", len(p.samples), len(o.samples))
	}
	values := make([]float64, len(p.samples))
	for i := range p.samples {
		if p.samples[i].Position != o.samples[i].Position {
			return nil, fmt.Errorf("profiles disagree at sample %d: %g vs %g", i, p.samples[i].Position, o.samples[i].Position)
		}
		values[i] = p.samples[i].Value - o.samples[i].Value
	}
	return p.withValues(values), nil
}

// Interpolate linearly interpolates the value at x, clamping outside the range.
func (p *Profile) Interpolate(x float64) float64 {
	n := len(p.samples)
	if n == 0 {
		return math.NaN()
	}
	if x <= p.samples[0].Position {
		return p.samples[0].Value
	}
	if x >= p.samples[n-1].Position {
		return p.samples[n-1].Value
	}
	j := sort.Search(n, func(i int) bool { return p.samples[i].Position >= x })
	a, b := p.samples[j-1], p.samples[j]
	if b.Position == a.Position {
		return 0.5 * (a.Value + b.Value)
	}
	f := (x - a.Position) / (b.Position - a.Position)
	return a.Value + f*(b.Value-a.Value)
}
