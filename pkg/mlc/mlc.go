// Package mlc describes the leaf layouts of the supported multi-leaf
// collimators and projects their nominal leaf-pair offsets onto the imager.
package mlc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownMLCModel is returned for a selector that names no known model.
var ErrUnknownMLCModel = errors.New("MLC model not understood")

// IsocentreSID is the source-to-isocentre distance in mm. Offsets are
// defined at isocentre and magnified by SID/IsocentreSID on the imager.
const IsocentreSID = 1000.0

// Model enumerates the supported collimators.
type Model int

const (
	Model80 Model = iota
	Model120
	ModelHD120
)

// bank is a run of equal-width leaves on one side of the central axis.
type bank struct {
	count int
	width float64 // mm at isocentre
}

type layout struct {
	name        string
	leafPairs   int
	description string
	banks       []bank // ordered outward from the central axis
}

var layouts = map[Model]layout{
	Model80: {
		name:        "VarianMillenniumMLC80",
		leafPairs:   80,
		description: "80 leaves per bank, 10 mm wide at isocentre, 40 cm x 40 cm maximum field",
		banks:       []bank{{count: 20, width: 10.0}},
	},
	Model120: {
		name:        "VarianMillenniumMLC120",
		leafPairs:   120,
		description: "120 leaves per bank, central 40 are 5 mm and peripheral 20 are 10 mm wide at isocentre, 40 cm x 40 cm maximum field",
		banks:       []bank{{count: 20, width: 5.0}, {count: 10, width: 10.0}},
	},
	ModelHD120: {
		name:        "VarianHD120",
		leafPairs:   120,
		description: "120 leaves per bank, central 32 are 2.5 mm and peripheral 28 are 5 mm wide at isocentre, 40 cm x 22 cm maximum field",
		banks:       []bank{{count: 16, width: 2.5}, {count: 14, width: 5.0}},
	},
}

// aliases maps lower-cased selector spellings to models. Only the names
// listed here are accepted.
var aliases = map[string]Model{
	"varianmillenniummlc80":  Model80,
	"millenniummlc80":        Model80,
	"mlc80":                  Model80,
	"varianmillenniummlc120": Model120,
	"millenniummlc120":       Model120,
	"mlc120":                 Model120,
	"varianhd120":            ModelHD120,
	"hd120":                  ModelHD120,
	"hdmlc120":               ModelHD120,
}

// Parse maps a selector to a model, ignoring case and surrounding space.
func Parse(selector string) (Model, error) {
	m, ok := aliases[strings.ToLower(strings.TrimSpace(selector))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMLCModel, selector)
	}
	return m, nil
}

// String returns the canonical selector name.
func (m Model) String() string {
	if l, ok := layouts[m]; ok {
		return l.name
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// LeafPairs returns the number of leaves in each bank.
func (m Model) LeafPairs() int {
	return layouts[m].leafPairs
}

// Description summarises the leaf layout.
func (m Model) Description() string {
	return layouts[m].description
}

// IsocentreOffsets returns the nominal leaf-pair offsets from the central axis
// at isocentre, in mm, sorted ascending and symmetric about zero.
func (m Model) IsocentreOffsets() []float64 {
	return m.Offsets(1.0)
}

// Offsets returns the leaf-pair offsets scaled by magnification, sorted
// ascending. Each bank contributes one offset per leaf at its centre, mirrored
// on both sides of the central axis.
func (m Model) Offsets(magnification float64) []float64 {
	l, ok := layouts[m]
	if !ok {
		return nil
	}
	var out []float64
	start := 0.0
	for _, b := range l.banks {
		for i := 0; i < b.count; i++ {
			x := magnification * (start + b.width*float64(i) + 0.5*b.width)
			out = append(out, x, -x)
		}
		start += b.width * float64(b.count)
	}
	sort.Float64s(out)
	return out
}

// Magnification returns the isocentre-to-imager scale for a source-to-imager
// distance in mm.
func Magnification(sid float64) float64 {
	return sid / IsocentreSID
}
