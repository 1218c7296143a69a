package mlc

import (
	"strings"
)

// DefaultKnownStations are linac station names fitted with Millennium 120 MLCs.
var DefaultKnownStations = []string{"FVAREA2TB", "FVAREA4TB", "FVAREA6TB"}

// AutoDetect guesses the model from the station name: a case-insensitive
// match of any known station selects Model120, anything else Model80. This
// is a heuristic; an explicit selector should be preferred.
func AutoDetect(stationName string, knownStations []string) Model {
	name := strings.ToUpper(stationName)
	for _, s := range knownStations {
		if s != "" && strings.Contains(name, strings.ToUpper(s)) {
			return Model120
		}
	}
	return Model80
}

// Resolve picks the model for an image. A non-empty selector always wins and
// must parse; otherwise the station name decides.
func Resolve(selector, stationName string, knownStations []string) (Model, error) {
	if strings.TrimSpace(selector) != "" {
		return Parse(selector)
	}
	return AutoDetect(stationName, knownStations), nil
}
