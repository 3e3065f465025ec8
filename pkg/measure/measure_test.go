package measure

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/menta2k/microscope-measure/pkg/geometry"
)

const tolerance = 1e-9

func line(x1, y1, x2, y2 float64) geometry.Line {
	return geometry.Line{
		P1: geometry.Point{X: x1, Y: y1},
		P2: geometry.Point{X: x2, Y: y2},
	}
}

func TestMeasureLine(t *testing.T) {
	tests := []struct {
		name string
		line geometry.Line
		want float64
	}{
		{"axis aligned", line(0, 0, 100, 0), 100},
		{"3-4-5 triangle", line(0, 0, 30, 40), 50},
		{"negative direction", line(50, 50, 20, 10), 50},
		{"subpixel", line(0, 0, 0.3, 0.4), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Measure(tt.line, 1.0)
			if err != nil {
				t.Fatalf("Measure failed: %v", err)
			}
			if math.Abs(result.PxValue-tt.want) > tolerance {
				t.Errorf("Expected px value %v, got %v", tt.want, result.PxValue)
			}
			if result.Mode != geometry.ModeLine {
				t.Errorf("Expected mode line, got %s", result.Mode)
			}
		})
	}
}

func TestMeasureCircle(t *testing.T) {
	for _, radius := range []float64{0, 1, 12.5, 300} {
		result, err := Measure(geometry.Circle{Radius: radius}, 1.0)
		if err != nil {
			t.Fatalf("Measure failed for radius %v: %v", radius, err)
		}
		if result.PxValue != 2*radius {
			t.Errorf("Expected diameter %v, got %v", 2*radius, result.PxValue)
		}
		if result.Mode != geometry.ModeCircle {
			t.Errorf("Expected mode circle, got %s", result.Mode)
		}
	}
}

func TestMeasureScalingIsLinear(t *testing.T) {
	l := line(0, 0, 100, 0)

	for _, umPerPx := range []float64{0.5, 1.0, 1.342281879, 10} {
		result, err := Measure(l, umPerPx)
		if err != nil {
			t.Fatalf("Measure failed: %v", err)
		}
		if math.Abs(result.UmValue-result.PxValue*umPerPx) > tolerance {
			t.Errorf("Expected um value %v, got %v", result.PxValue*umPerPx, result.UmValue)
		}
		if result.UmPerPx != umPerPx {
			t.Errorf("Expected scale %v in result, got %v", umPerPx, result.UmPerPx)
		}
	}
}

func TestMeasureDegenerateLine(t *testing.T) {
	_, err := Measure(line(0, 0, 0, 0), 1.0)
	if !errors.Is(err, ErrDegenerateLine) {
		t.Errorf("Expected ErrDegenerateLine, got %v", err)
	}
}

func TestMeasureNilShape(t *testing.T) {
	_, err := Measure(nil, 1.0)
	if !errors.Is(err, geometry.ErrNoShape) {
		t.Errorf("Expected ErrNoShape, got %v", err)
	}
}

func TestMeasureLabel(t *testing.T) {
	result, err := Measure(line(0, 0, 100, 0), 0.5)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	if !strings.Contains(result.Label, "100.0") || !strings.Contains(result.Label, "50.0") {
		t.Errorf("Label should embed px and µm values with a decimal place: %q", result.Label)
	}

	circle, err := Measure(geometry.Circle{Radius: 10}, 1.0)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if !strings.Contains(circle.Label, "Diameter") {
		t.Errorf("Circle label should name the diameter metric: %q", circle.Label)
	}
}

func TestCalibrate(t *testing.T) {
	umPerPx, err := Calibrate(line(0, 0, 200, 0), 400)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if math.Abs(umPerPx-2.0) > tolerance {
		t.Errorf("Expected scale 2.0, got %v", umPerPx)
	}

	// A 50 px line measured with the calibrated scale is 100 µm.
	result, err := Measure(line(0, 0, 50, 0), umPerPx)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if math.Abs(result.UmValue-100.0) > tolerance {
		t.Errorf("Expected 100 µm, got %v", result.UmValue)
	}
}

func TestCalibrateDegenerateLine(t *testing.T) {
	_, err := Calibrate(line(10, 10, 10, 10), 400)
	if !errors.Is(err, ErrDegenerateLine) {
		t.Errorf("Expected ErrDegenerateLine, got %v", err)
	}
}

func TestCalibrateInvalidKnownLength(t *testing.T) {
	for _, known := range []float64{0, -1, -400} {
		_, err := Calibrate(line(0, 0, 100, 0), known)
		if !errors.Is(err, ErrInvalidCalibration) {
			t.Errorf("Expected ErrInvalidCalibration for %v, got %v", known, err)
		}
	}
}
