package processing

import (
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/menta2k/microscope-measure/pkg/geometry"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func TestLoadImageMissingPath(t *testing.T) {
	p := NewProcessor()
	if _, err := p.LoadImage(""); !errors.Is(err, ErrMissingImage) {
		t.Errorf("Expected ErrMissingImage for empty path, got %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(64, 48)
	path := filepath.Join(t.TempDir(), "out.png")

	if err := p.SaveImage(img, path, "png", 0); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	loaded, err := p.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}

	info := p.Info(loaded)
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("Expected 64x48, got %dx%d", info.Width, info.Height)
	}
}

func TestSaveImageUnsupportedFormat(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(16, 16)
	if err := p.SaveImage(img, filepath.Join(t.TempDir(), "out.tiff"), "tiff", 0); err == nil {
		t.Error("Expected error for unsupported output format")
	}
}

func TestInfo(t *testing.T) {
	p := NewProcessor()
	info := p.Info(createTestImage(400, 300))

	if info.Width != 400 || info.Height != 300 {
		t.Errorf("Expected 400x300, got %dx%d", info.Width, info.Height)
	}
	if math.Abs(info.AspectRatio-4.0/3.0) > 0.001 {
		t.Errorf("Expected aspect ratio 4:3, got %v", info.AspectRatio)
	}
	if info.Area != 120000 {
		t.Errorf("Expected area 120000, got %d", info.Area)
	}
}

func TestValidateImage(t *testing.T) {
	p := NewProcessor()

	if err := p.ValidateImage(createTestImage(100, 100)); err != nil {
		t.Errorf("Expected 100x100 image to validate, got %v", err)
	}
	if err := p.ValidateImage(createTestImage(4, 4)); err == nil {
		t.Error("Expected tiny image to fail validation")
	}
	if err := p.ValidateImage(nil); !errors.Is(err, ErrMissingImage) {
		t.Errorf("Expected ErrMissingImage for nil image, got %v", err)
	}
}

func TestFitToDisplayPassThrough(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(400, 300)

	display, tr := p.FitToDisplay(img, 900)
	if display.Bounds().Dx() != 400 {
		t.Errorf("Expected image narrower than the limit to pass through, got width %d", display.Bounds().Dx())
	}
	if tr.ScaleX != 1 || tr.ScaleY != 1 {
		t.Errorf("Expected identity transform, got %+v", tr)
	}
}

func TestFitToDisplayDownscales(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(1800, 1200)

	display, tr := p.FitToDisplay(img, 900)
	if display.Bounds().Dx() != 900 {
		t.Fatalf("Expected display width 900, got %d", display.Bounds().Dx())
	}
	if math.Abs(tr.ScaleX-2.0) > 0.01 || math.Abs(tr.ScaleY-2.0) > 0.01 {
		t.Errorf("Expected scale factors near 2.0, got %+v", tr)
	}

	// A shape drawn on the display maps back to source pixels.
	drawn := geometry.Line{P1: geometry.Point{X: 0, Y: 0}, P2: geometry.Point{X: 100, Y: 0}}
	mapped := tr.Apply(drawn).(geometry.Line)
	if math.Abs(mapped.Length()-200) > 2 {
		t.Errorf("Expected mapped length near 200 px, got %v", mapped.Length())
	}
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(800, 600)

	b64, err := p.PrepareImageForModel(img, "jpg", 256, 85)
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}
	if b64 == "" {
		t.Error("Expected non-empty base64 payload")
	}

	if _, err := p.PrepareImageForModel(nil, "jpg", 0, 0); !errors.Is(err, ErrMissingImage) {
		t.Errorf("Expected ErrMissingImage for nil image, got %v", err)
	}
}
