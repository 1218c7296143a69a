package picketfence

import (
	"fmt"
	"io"
	"math"
	"strings"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
	"picketfence/pkg/junction"
	"picketfence/pkg/leaflines"
	"picketfence/pkg/mlc"
	"picketfence/pkg/orientation"
	"picketfence/pkg/peaks"
	"picketfence/pkg/profile"
)

// Report holds everything measured for one image.
type Report struct {
	Frame orientation.Frame

	// RawProfile is the binned profile, Profile the filtered one peaks come from
	RawProfile *profile.Profile
	Profile    *profile.Profile

	Peaks     []peaks.Peak
	PeakStats leaflines.PeakStats

	// DominantPeriod is the strongest repeat distance in Profile, when resolved
	DominantPeriod float64
	PeriodResolved bool

	Junctions           []geometry.Vec
	JunctionSeparations junction.Separations

	Model             mlc.Model
	ModelAutoDetected bool
	StationName       string
	SID               float64
	Magnification     float64

	// CollimatorAngleDeg is NaN unless HasCollimatorAngle is set
	CollimatorAngleDeg float64
	HasCollimatorAngle bool

	DetectedLines []geometry.Line
	ModelLines    []geometry.Line

	// Overlays holds the collections drawn for this image
	Overlays     *models.ContourStore
	SkippedLines int
}

// WriteSummary prints a human readable summary of the report.
func (r *Report) WriteSummary(w io.Writer) error {
	var b strings.Builder

	source := "configured"
	if r.ModelAutoDetected {
		source = "auto-detected"
	}
	fmt.Fprintf(&b, "MLC model: %s (%s, %s)\n", r.Model, r.Model.Description(), source)
	if r.StationName != "" {
		fmt.Fprintf(&b, "Station name: %s\n", r.StationName)
	}
	fmt.Fprintf(&b, "SID: %g mm, magnification %.4f\n", r.SID, r.Magnification)
	if r.HasCollimatorAngle {
		fmt.Fprintf(&b, "Collimator angle: %g deg\n", r.CollimatorAngleDeg)
	}
	fmt.Fprintf(&b, "Junction axis: %v\n", r.Frame.Long)
	fmt.Fprintf(&b, "Leaf-travel axis: %v\n", r.Frame.Short)

	fmt.Fprintf(&b, "Junction-CAX separations: %s\n", joinFloats(r.JunctionSeparations.CAX))
	fmt.Fprintf(&b, "Minimum junction separation: %s\n", formatFloat(r.JunctionSeparations.Min))

	fmt.Fprintf(&b, "Peaks detected: %d\n", len(r.Peaks))
	fmt.Fprintf(&b, "Peak separations: %s\n", joinFloats(r.PeakStats.Separations))
	fmt.Fprintf(&b, "Average peak separation: %s\n", formatFloat(r.PeakStats.Mean))
	fmt.Fprintf(&b, "Median peak separation: %s\n", formatFloat(r.PeakStats.Median))
	if r.PeriodResolved {
		fmt.Fprintf(&b, "Dominant profile period: %.3f\n", r.DominantPeriod)
	}

	fmt.Fprintf(&b, "Leaf-pair lines: %d (%d skipped)\n", len(r.ModelLines), r.SkippedLines)

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func joinFloats(vs []float64) string {
	if len(vs) == 0 {
		return "none"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ", ")
}
