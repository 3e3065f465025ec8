package annotate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/microscope-measure/pkg/geometry"
	"github.com/menta2k/microscope-measure/pkg/processing"
)

// createTestImage creates a flat gray test image
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{128, 128, 128, 255})
		}
	}
	return img
}

func testLine() geometry.Line {
	return geometry.Line{
		P1: geometry.Point{X: 50, Y: 50},
		P2: geometry.Point{X: 250, Y: 150},
	}
}

func TestAnnotateLine(t *testing.T) {
	annotator := New()
	img := createTestImage(400, 300)

	out, err := annotator.Annotate(img, testLine(), "Length: 223.6 px / 300.0 µm")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if out.Bounds() != img.Bounds() {
		t.Errorf("Expected output dimensions %v, got %v", img.Bounds(), out.Bounds())
	}

	// The line midpoint must carry the stroke color.
	c := out.NRGBAAt(150, 100)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("Expected red stroke at line midpoint, got %v", c)
	}
}

func TestAnnotateCircle(t *testing.T) {
	annotator := New()
	img := createTestImage(400, 300)
	circle := geometry.Circle{Center: geometry.Point{X: 200, Y: 150}, Radius: 50}

	out, err := annotator.Annotate(img, circle, "Diameter: 100.0 px / 100.0 µm")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	// A point on the outline is painted, the center is not.
	if c := out.NRGBAAt(250, 150); c.R != 255 || c.G != 0 {
		t.Errorf("Expected stroke on circle outline, got %v", c)
	}
	if c := out.NRGBAAt(200, 150); c.R != 128 {
		t.Errorf("Expected untouched circle center, got %v", c)
	}
}

func TestAnnotateDoesNotMutateSource(t *testing.T) {
	annotator := New()
	img := createTestImage(400, 300)

	before := make([]uint8, len(img.Pix))
	copy(before, img.Pix)

	if _, err := annotator.Annotate(img, testLine(), "label"); err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if !bytes.Equal(before, img.Pix) {
		t.Error("Annotate modified the source image")
	}
}

func TestAnnotateIsDeterministic(t *testing.T) {
	annotator := New()
	img := createTestImage(400, 300)

	first, err := annotator.Annotate(img, testLine(), "Length: 223.6 px / 300.0 µm")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	second, err := annotator.Annotate(img, testLine(), "Length: 223.6 px / 300.0 µm")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("Expected byte-identical output for identical inputs")
	}
}

func TestAnnotateLabelStaysOnCanvas(t *testing.T) {
	annotator := New()
	img := createTestImage(200, 100)

	// Shapes hugging every edge; the label anchor would land off-canvas
	// without clamping. Success is simply not painting outside and not
	// panicking.
	shapes := []geometry.Shape{
		geometry.Line{P1: geometry.Point{X: 190, Y: 5}, P2: geometry.Point{X: 199, Y: 5}},
		geometry.Line{P1: geometry.Point{X: 0, Y: 99}, P2: geometry.Point{X: 10, Y: 99}},
		geometry.Circle{Center: geometry.Point{X: 195, Y: 95}, Radius: 20},
	}

	for _, s := range shapes {
		if _, err := annotator.Annotate(img, s, "Length: 9999.0 px / 9999.0 µm"); err != nil {
			t.Errorf("Annotate failed for edge shape %+v: %v", s, err)
		}
	}
}

func TestAnnotateMissingImage(t *testing.T) {
	annotator := New()
	if _, err := annotator.Annotate(nil, testLine(), "label"); !errors.Is(err, processing.ErrMissingImage) {
		t.Errorf("Expected ErrMissingImage, got %v", err)
	}
}

func TestAnnotateMissingShape(t *testing.T) {
	annotator := New()
	if _, err := annotator.Annotate(createTestImage(100, 100), nil, "label"); !errors.Is(err, geometry.ErrNoShape) {
		t.Errorf("Expected ErrNoShape, got %v", err)
	}
}

func TestNewWithConfig(t *testing.T) {
	annotator := NewWithConfig(Config{
		StrokeWidth: 1,
		Color:       color.NRGBA{G: 255, A: 255},
	})
	img := createTestImage(100, 100)

	out, err := annotator.Annotate(img, geometry.Line{
		P1: geometry.Point{X: 10, Y: 50},
		P2: geometry.Point{X: 90, Y: 50},
	}, "")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if c := out.NRGBAAt(50, 50); c.G != 255 {
		t.Errorf("Expected green stroke, got %v", c)
	}

	// Zero values fall back to defaults.
	fallback := NewWithConfig(Config{})
	if fallback.config.StrokeWidth != 3 {
		t.Errorf("Expected default stroke width 3, got %d", fallback.config.StrokeWidth)
	}
	if fallback.config.Color.R != 255 {
		t.Errorf("Expected default red color, got %v", fallback.config.Color)
	}
}
