// Package picketfence runs the picket-fence MLC analysis: it estimates the
// junction orientation from contours, measures the junction-orthogonal
// intensity profile of an image, locates the leaf-gap peaks and lays out the
// leaf-pair boundary lines of the detected MLC model as overlay contours.
//
// The analysis itself is synchronous and keeps no state between calls. Only
// the batch runner in batch.go spawns goroutines.
package picketfence

import (
	"fmt"
	"math"

	"picketfence/internal/models"
	"picketfence/pkg/config"
	"picketfence/pkg/geometry"
	"picketfence/pkg/junction"
	"picketfence/pkg/leaflines"
	"picketfence/pkg/mlc"
	"picketfence/pkg/orientation"
	"picketfence/pkg/peaks"
	"picketfence/pkg/profile"
)

// Overlay collection names appended to the contour store.
const (
	JunctionOverlayName = "Junction lines"
	LeafOverlayName     = "Leaf-pair lines"
	PeakOverlayName     = "Detected peak lines"
)

// Analyzer runs the analysis with a fixed configuration.
type Analyzer struct {
	cfg *config.Config
}

// NewAnalyzer validates cfg and returns an analyzer. A nil cfg uses defaults.
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Analyzer{cfg: cfg}, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// Select returns the junction contours of store named by the configured ROI
// and normalized ROI names, or every contour when none are configured.
func (a *Analyzer) Select(store *models.ContourStore) models.Selection {
	return models.SelectROINames(store, a.cfg.Analysis.ROINames, a.cfg.Analysis.NormalizedROINames)
}

// Analyze measures img against the junction contours in sel. On success the
// overlay collections are appended to store and also returned in the report.
// Existing collections in store are never modified.
func (a *Analyzer) Analyze(img *models.Image, store *models.ContourStore, sel models.Selection) (*Report, error) {
	if len(sel) < orientation.MinContours {
		return nil, fmt.Errorf("%w: %d junction contours selected, need at least %d",
			ErrInsufficientData, len(sel), orientation.MinContours)
	}
	rep, err := a.analyze(img, sel.Resolve(store))
	if err != nil {
		return nil, err
	}
	store.Merge(rep.Overlays)
	return rep, nil
}

// analyze does all the work of Analyze without touching any shared store.
func (a *Analyzer) analyze(img *models.Image, contours []models.ContourSet) (*Report, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	points := make([][]geometry.Vec, 0, len(contours))
	for _, c := range contours {
		points = append(points, c.Points)
	}
	frame, err := orientation.EstimateInPlane(points, img.Normal())
	if err != nil {
		return nil, err
	}
	Diagf("long axis %v (spread %.3g), short axis %v (spread %.3g)",
		frame.Long, frame.LongSpread, frame.Short, frame.ShortSpread)

	centroids := make([]geometry.Vec, 0, len(contours))
	for _, c := range contours {
		if len(c.Points) == 0 {
			continue
		}
		cent, err := c.Centroid()
		if err != nil {
			return nil, fmt.Errorf("junction %q: %w", c.ROIName(), err)
		}
		centroids = append(centroids, cent)
	}
	junctions := junction.Deduplicate(centroids, frame.Short, a.cfg.Analysis.MinimumJunctionSeparation)
	seps := junction.Measure(junctions, frame.Short)
	Tracef("%d junction contours collapsed to %d junctions", len(centroids), len(junctions))

	corner := img.Corner()
	var scatter *profile.Scatter
	if a.cfg.Analysis.RestrictToJunctionBand && len(seps.CAX) >= 2 {
		scatter = profile.BuildBand(img, frame.Long, frame.Short, corner, seps.CAX[0], seps.CAX[len(seps.CAX)-1])
	} else {
		scatter = profile.Build(img, frame.Long, corner)
	}
	raw, err := scatter.Sort().BinWeightedMean(profile.BinCount(img))
	if err != nil {
		return nil, fmt.Errorf("binning profile: %w", err)
	}
	filtered, err := raw.Filter(a.cfg.FilterOptions())
	if err != nil {
		return nil, fmt.Errorf("filtering profile: %w", err)
	}
	Tracef("profile: %d samples binned from %d pixels", raw.Len(), scatter.Len())

	found, err := peaks.Detect(filtered, a.cfg.PeakOptions())
	if err != nil {
		return nil, err
	}
	positions := make([]float64, len(found))
	for i, p := range found {
		positions[i] = p.Position
	}

	station, _ := img.MetadataValue(models.KeyStationName)
	model, err := mlc.Resolve(a.cfg.Analysis.MLCModel, station, a.cfg.MLC.KnownStations)
	if err != nil {
		return nil, err
	}
	sid, err := img.MetadataFloat(models.KeyRTImageSID, a.cfg.MLC.DefaultSID)
	if err != nil {
		return nil, err
	}
	if sid <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %g", models.KeyRTImageSID, sid)
	}
	mag := mlc.Magnification(sid)
	Diagf("station %q: %s, SID %g mm (magnification %.4f)", station, model, sid, mag)

	rep := &Report{
		Frame:               frame,
		RawProfile:          raw,
		Profile:             filtered,
		Peaks:               found,
		PeakStats:           leaflines.Summarise(peaks.Separations(found)),
		Junctions:           junctions,
		JunctionSeparations: seps,
		Model:               model,
		ModelAutoDetected:   a.cfg.Analysis.MLCModel == "",
		StationName:         station,
		SID:                 sid,
		Magnification:       mag,
		CollimatorAngleDeg:  math.NaN(),
		DetectedLines:       leaflines.FromPeaks(positions, junctions[0], corner, frame),
		ModelLines:          leaflines.FromOffsets(model.Offsets(mag), frame),
		Overlays:            &models.ContourStore{},
	}
	rep.DominantPeriod, rep.PeriodResolved = filtered.DominantPeriod()

	if angle, err := img.MetadataFloat(models.KeyBeamLimitingDeviceAngle, math.NaN()); err != nil {
		Opsf("ignoring collimator angle: %v", err)
	} else if !math.IsNaN(angle) {
		rep.CollimatorAngleDeg = angle
		rep.HasCollimatorAngle = true
	}

	junctionLines := make([]geometry.Line, 0, len(junctions))
	for _, j := range junctions {
		junctionLines = append(junctionLines, geometry.Line{R0: j, Dir: frame.Long})
	}
	rep.SkippedLines += overlay(img, rep.Overlays, junctionLines, JunctionOverlayName)
	rep.SkippedLines += overlay(img, rep.Overlays, rep.ModelLines, LeafOverlayName)
	if a.cfg.Analysis.OverlayDetectedPeaks {
		rep.SkippedLines += overlay(img, rep.Overlays, rep.DetectedLines, PeakOverlayName)
	}
	Tracef("overlays: %d contours drawn, %d lines skipped", rep.Overlays.Count(), rep.SkippedLines)

	return rep, nil
}

// overlay draws lines into a new collection in store and returns how many
// could not be drawn.
func overlay(img *models.Image, store *models.ContourStore, lines []geometry.Line, name string) int {
	cc, skipped := leaflines.InjectAll(img, lines, name)
	for _, err := range skipped {
		Opsf("%s: skipped %v", name, err)
	}
	store.Append(cc)
	return len(skipped)
}
