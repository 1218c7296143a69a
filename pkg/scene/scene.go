// Package scene reads and writes the YAML scene files the CLI analyses. A
// scene lists image files with their physical placement and metadata, plus
// the junction contour collections drawn on them.
package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
)

// Scene is the on-disk description of an analysis input.
type Scene struct {
	Images   []ImageSpec      `yaml:"images"`
	Contours []CollectionSpec `yaml:"contours"`
}

// ImageSpec places one image file in physical space. Each spec becomes an
// image array holding that single image.
type ImageSpec struct {
	// Path is relative to the scene file unless absolute
	Path string `yaml:"path"`

	// PixelSpacing is the row spacing then the column spacing
	PixelSpacing []float64 `yaml:"pixelSpacing"`

	// Offset is the position of the first pixel
	Offset []float64 `yaml:"offset"`

	// RowUnit and ColUnit default to +Y and +X
	RowUnit []float64 `yaml:"rowUnit,omitempty"`
	ColUnit []float64 `yaml:"colUnit,omitempty"`

	// Stored pixel values map to intensity as RescaleIntercept + RescaleSlope*v
	RescaleSlope     float64 `yaml:"rescaleSlope,omitempty"`
	RescaleIntercept float64 `yaml:"rescaleIntercept,omitempty"`

	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// CollectionSpec is a named group of closed polygons.
type CollectionSpec struct {
	Name     string        `yaml:"name"`
	Contours [][][]float64 `yaml:"contours"`
}

// Load parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scene file: %w", err)
	}
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error parsing scene file: %w", err)
	}
	return &s, nil
}

// Save writes the scene as YAML, creating parent directories.
func (s *Scene) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating scene directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing scene file: %w", err)
	}
	return nil
}

// Store builds the contour store described by the scene.
func (s *Scene) Store() (*models.ContourStore, error) {
	store := &models.ContourStore{}
	for _, cs := range s.Contours {
		cc := models.ContourCollection{Name: cs.Name}
		for i, poly := range cs.Contours {
			pts := make([]geometry.Vec, 0, len(poly))
			for _, p := range poly {
				v, err := vec(p, geometry.Vec{})
				if err != nil {
					return nil, fmt.Errorf("contour %q polygon %d: %w", cs.Name, i, err)
				}
				pts = append(pts, v)
			}
			cc.Contours = append(cc.Contours, models.ContourSet{
				Points: pts,
				Metadata: map[string]string{
					models.KeyROIName:           cs.Name,
					models.KeyNormalizedROIName: cs.Name,
				},
			})
		}
		store.Append(cc)
	}
	return store, nil
}

// Arrays reads every image of the scene. Relative paths resolve against dir.
func (s *Scene) Arrays(dir string) ([]models.ImageArray, error) {
	arrays := make([]models.ImageArray, 0, len(s.Images))
	for i, spec := range s.Images {
		path := spec.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, err := ReadImage(path, spec)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		arrays = append(arrays, models.ImageArray{Images: []*models.Image{img}})
	}
	return arrays, nil
}

// Describe renders a store back into collection specs, dropping metadata.
func Describe(store *models.ContourStore) []CollectionSpec {
	out := make([]CollectionSpec, 0, len(store.Collections))
	for _, cc := range store.Collections {
		cs := CollectionSpec{Name: cc.Name}
		for _, c := range cc.Contours {
			poly := make([][]float64, 0, len(c.Points))
			for _, p := range c.Points {
				poly = append(poly, []float64{p.X, p.Y, p.Z})
			}
			cs.Contours = append(cs.Contours, poly)
		}
		out = append(out, cs)
	}
	return out
}

func vec(v []float64, def geometry.Vec) (geometry.Vec, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 2:
		return geometry.Vec{X: v[0], Y: v[1]}, nil
	case 3:
		return geometry.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
	}
	return geometry.Vec{}, fmt.Errorf("expected 2 or 3 coordinates, got %d", len(v))
}
