// Package config provides configuration loading and management for picketfence.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"picketfence/pkg/junction"
	"picketfence/pkg/mlc"
	"picketfence/pkg/peaks"
	"picketfence/pkg/profile"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Analysis parameters
	Analysis struct {
		// ImageSelection is one of none, first, last or all
		ImageSelection string `yaml:"imageSelection"`

		// MLCModel forces a model; empty auto-detects from the station name
		MLCModel string `yaml:"mlcModel"`

		// MinimumJunctionSeparation de-duplicates junctions, in DICOM units
		MinimumJunctionSeparation float64 `yaml:"minimumJunctionSeparation"`

		// ROINames restricts the junction contours; empty uses every contour
		ROINames []string `yaml:"roiNames"`

		// NormalizedROINames further restricts by NormalizedROIName
		NormalizedROINames []string `yaml:"normalizedRoiNames"`

		// RestrictToJunctionBand samples only pixels between the outer junctions
		RestrictToJunctionBand bool `yaml:"restrictToJunctionBand"`

		// OverlayDetectedPeaks also draws lines at the measured peaks
		OverlayDetectedPeaks bool `yaml:"overlayDetectedPeaks"`
	} `yaml:"analysis"`

	// Profile filter parameters
	Filter struct {
		Spencer       bool    `yaml:"spencer"`
		HighPassSigma float64 `yaml:"highPassSigma"`
	} `yaml:"filter"`

	// Peak detection parameters
	Peaks struct {
		MergeDistance   float64 `yaml:"mergeDistance"`
		MinPeaks        int     `yaml:"minPeaks"`
		SharpnessWindow int     `yaml:"sharpnessWindow"`
		MaxApexAngleDeg float64 `yaml:"maxApexAngleDeg"`
		MinValue        float64 `yaml:"minValue"`
	} `yaml:"peaks"`

	// MLC model detection parameters
	MLC struct {
		// KnownStations are station names fitted with Millennium 120 MLCs
		KnownStations []string `yaml:"knownStations"`

		// DefaultSID is used when an image lacks RTImageSID, in mm
		DefaultSID float64 `yaml:"defaultSID"`
	} `yaml:"mlc"`

	// Processing parameters
	Processing struct {
		// Workers is how many images are analysed concurrently
		Workers int `yaml:"workers"`
	} `yaml:"processing"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Analysis.ImageSelection = "last"
	cfg.Analysis.MLCModel = ""
	cfg.Analysis.MinimumJunctionSeparation = junction.DefaultMinimumSeparation

	fo := profile.DefaultFilterOptions()
	cfg.Filter.Spencer = fo.Spencer
	cfg.Filter.HighPassSigma = fo.HighPassSigma

	po := peaks.DefaultOptions()
	cfg.Peaks.MergeDistance = po.MergeDistance
	cfg.Peaks.MinPeaks = po.MinPeaks
	cfg.Peaks.MinValue = po.MinValue

	cfg.MLC.KnownStations = append([]string(nil), mlc.DefaultKnownStations...)
	cfg.MLC.DefaultSID = mlc.IsocentreSID

	cfg.Processing.Workers = runtime.NumCPU()

	return cfg
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.Analysis.MinimumJunctionSeparation < 0 {
		return fmt.Errorf("minimumJunctionSeparation must not be negative, got %g", c.Analysis.MinimumJunctionSeparation)
	}
	if c.Filter.HighPassSigma < 0 {
		return fmt.Errorf("highPassSigma must not be negative, got %g", c.Filter.HighPassSigma)
	}
	if c.Peaks.MergeDistance < 0 {
		return fmt.Errorf("mergeDistance must not be negative, got %g", c.Peaks.MergeDistance)
	}
	if c.Peaks.SharpnessWindow < 0 || c.Peaks.MaxApexAngleDeg < 0 || c.Peaks.MaxApexAngleDeg > 180 {
		return fmt.Errorf("sharpness filter parameters out of range (window %d, angle %g)", c.Peaks.SharpnessWindow, c.Peaks.MaxApexAngleDeg)
	}
	if c.MLC.DefaultSID <= 0 {
		return fmt.Errorf("defaultSID must be positive, got %g", c.MLC.DefaultSID)
	}
	if c.Analysis.MLCModel != "" {
		if _, err := mlc.Parse(c.Analysis.MLCModel); err != nil {
			return err
		}
	}
	return nil
}

// FilterOptions converts the filter section.
func (c *Config) FilterOptions() profile.FilterOptions {
	return profile.FilterOptions{Spencer: c.Filter.Spencer, HighPassSigma: c.Filter.HighPassSigma}
}

// PeakOptions converts the peaks section.
func (c *Config) PeakOptions() peaks.Options {
	return peaks.Options{
		MergeDistance:   c.Peaks.MergeDistance,
		MinPeaks:        c.Peaks.MinPeaks,
		SharpnessWindow: c.Peaks.SharpnessWindow,
		MaxApexAngleDeg: c.Peaks.MaxApexAngleDeg,
		MinValue:        c.Peaks.MinValue,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
