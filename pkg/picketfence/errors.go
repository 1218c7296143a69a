package picketfence

import (
	"errors"

	"picketfence/pkg/leaflines"
	"picketfence/pkg/mlc"
	"picketfence/pkg/orientation"
	"picketfence/pkg/peaks"
)

// Errors surfaced by the analysis. All but ErrEmptyImageSet originate in the
// component packages and are re-exported so callers need only this package
// for errors.Is checks.
var (
	ErrInsufficientData     = orientation.ErrInsufficientData
	ErrPeakDetectionFailure = peaks.ErrPeakDetectionFailure
	ErrUnknownMLCModel      = mlc.ErrUnknownMLCModel
	ErrLineInjection        = leaflines.ErrLineInjection

	// ErrEmptyImageSet is returned when the selected image scope is empty
	ErrEmptyImageSet = errors.New("no images to analyse")
)
