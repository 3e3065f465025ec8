package measure

import (
	"errors"
	"fmt"

	"github.com/menta2k/microscope-measure/pkg/geometry"
)

var (
	// ErrDegenerateLine means the line has zero pixel length, which can
	// neither be measured nor used for calibration.
	ErrDegenerateLine = errors.New("line has zero length")
	// ErrInvalidCalibration means the known reference length is not positive.
	ErrInvalidCalibration = errors.New("known length must be greater than zero")
)

// Result is one finished measurement, ready for annotation or export.
// For lines PxValue is the segment length, for circles the diameter.
type Result struct {
	Mode    geometry.Mode `json:"mode"`
	PxValue float64       `json:"px_value"`
	UmValue float64       `json:"um_value"`
	UmPerPx float64       `json:"um_per_px"`
	Label   string        `json:"label"`
}

// Measure computes the pixel value of a shape and scales it to micrometers
// using the given scale factor.
func Measure(s geometry.Shape, umPerPx float64) (Result, error) {
	if s == nil {
		return Result{}, geometry.ErrNoShape
	}

	var px float64
	switch v := s.(type) {
	case geometry.Line:
		px = v.Length()
		if px == 0 {
			return Result{}, ErrDegenerateLine
		}
	case geometry.Circle:
		px = v.Diameter()
	default:
		return Result{}, fmt.Errorf("unsupported shape type %T", s)
	}

	um := px * umPerPx

	return Result{
		Mode:    s.Mode(),
		PxValue: px,
		UmValue: um,
		UmPerPx: umPerPx,
		Label:   formatLabel(s.Mode(), px, um),
	}, nil
}

// Calibrate derives the scale factor from a line drawn over a reference of
// known physical length.
func Calibrate(line geometry.Line, knownLengthUm float64) (float64, error) {
	if knownLengthUm <= 0 {
		return 0, fmt.Errorf("%w: got %v µm", ErrInvalidCalibration, knownLengthUm)
	}

	px := line.Length()
	if px == 0 {
		return 0, ErrDegenerateLine
	}

	return knownLengthUm / px, nil
}

func formatLabel(mode geometry.Mode, px, um float64) string {
	metric := "Length"
	if mode == geometry.ModeCircle {
		metric = "Diameter"
	}
	return fmt.Sprintf("%s: %.1f px / %.1f µm", metric, px, um)
}
