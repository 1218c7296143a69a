package visualization

import (
	"os"
	"path/filepath"
	"testing"

	"picketfence/internal/models"
	"picketfence/pkg/geometry"
)

func createTestImage() *models.Image {
	img := models.NewImage(20, 30, 1.0, 1.0, geometry.Vec{})
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Columns; c++ {
			img.Set(r, c, float64(c))
		}
	}
	return img
}

func TestRenderWindowsIntensity(t *testing.T) {
	v, err := NewViewer(createTestImage())
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}
	out := v.Render(nil)
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 20 {
		t.Fatalf("Expected 30x20 rendering, got %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0).R; got != 0 {
		t.Errorf("Expected black at column 0, got %d", got)
	}
	if got := out.NRGBAAt(29, 0).R; got != 255 {
		t.Errorf("Expected white at last column, got %d", got)
	}
}

func TestRenderDrawsOutlines(t *testing.T) {
	v, err := NewViewer(createTestImage())
	if err != nil {
		t.Fatal(err)
	}
	// A horizontal line at y = 10 spanning the image.
	cc := models.ContourCollection{Name: "line", Contours: []models.ContourSet{{
		Points: []geometry.Vec{{X: 0, Y: 10}, {X: 29, Y: 10}},
	}}}
	out := v.Render([]models.ContourCollection{cc})
	for col := 0; col < 30; col++ {
		if got := out.NRGBAAt(col, 10); got != palette[0] {
			t.Errorf("Expected overlay colour at column %d, got %v", col, got)
		}
	}
	if got := out.NRGBAAt(5, 5); got == palette[0] {
		t.Errorf("Pixel away from the line should not be coloured")
	}
}

func TestRenderScale(t *testing.T) {
	v, err := NewViewer(createTestImage())
	if err != nil {
		t.Fatal(err)
	}
	v.Scale = 3
	out := v.Render(nil)
	if out.Bounds().Dx() != 90 || out.Bounds().Dy() != 60 {
		t.Errorf("Expected 90x60 rendering, got %v", out.Bounds())
	}
}

func TestSave(t *testing.T) {
	v, err := NewViewer(createTestImage())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := v.Save(path, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty preview file: %v", err)
	}

	if err := v.Save(filepath.Join(t.TempDir(), "preview.unknown"), nil); err == nil {
		t.Errorf("Expected error for unsupported extension")
	}
}

func TestNewViewerRejectsInvalidImage(t *testing.T) {
	if _, err := NewViewer(&models.Image{}); err == nil {
		t.Errorf("Expected error for empty image")
	}
}
