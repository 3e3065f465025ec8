// Package scalebar locates the printed scale bar in a micrograph, either
// with a vision model backend or with a plain pixel-contrast heuristic, and
// turns the located bar into a calibration suggestion.
package scalebar

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/menta2k/microscope-measure/pkg/client"
	"github.com/menta2k/microscope-measure/pkg/geometry"
	"github.com/menta2k/microscope-measure/pkg/measure"
	"github.com/menta2k/microscope-measure/pkg/processing"
	"github.com/menta2k/microscope-measure/pkg/types"
)

// ErrNotFound means no scale bar could be located in the image.
var ErrNotFound = errors.New("no scale bar found")

// DefaultPrompt asks the model for the bar endpoints in strict JSON.
const DefaultPrompt = `Locate the printed scale bar in this microscope image. The scale bar is a short straight reference segment, usually near a corner, often with a length annotation like "400 um" or "1 mm" next to it.

Respond with ONLY a JSON object, no prose, no markdown fences:
{
  "found": true,
  "confidence": 0.0-1.0,
  "x1": 0.0-1.0, "y1": 0.0-1.0,
  "x2": 0.0-1.0, "y2": 0.0-1.0,
  "length_um": physical length in micrometers if annotated, else 0,
  "text": "the annotation text next to the bar, if any"
}

Coordinates are the bar endpoints normalized to image width and height. If there is no scale bar, respond {"found": false, "confidence": 0.0}.`

// Detector locates scale bars through a vision model backend.
type Detector struct {
	client client.VisionClient
	prompt string
}

// NewDetector creates a detector on top of a vision backend.
func NewDetector(c client.VisionClient) *Detector {
	return &Detector{client: c, prompt: DefaultPrompt}
}

// NewDetectorWithPrompt creates a detector with a custom prompt.
func NewDetectorWithPrompt(c client.VisionClient, prompt string) *Detector {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Detector{client: c, prompt: prompt}
}

// Locate asks the backend for the scale bar in a base64-encoded image.
// Returns ErrNotFound when the model reports no bar.
func (d *Detector) Locate(ctx context.Context, model, imgB64 string) (*types.ScaleBarResult, error) {
	result, err := d.client.LocateScaleBar(ctx, model, d.prompt, imgB64)
	if err != nil {
		return nil, fmt.Errorf("scale bar detection failed: %w", err)
	}
	if !result.Found {
		return nil, ErrNotFound
	}
	return result, nil
}

// LineInImage converts a located bar from normalized coordinates to a pixel
// line in an image of the given dimensions.
func LineInImage(r *types.ScaleBarResult, imgW, imgH int) geometry.Line {
	return geometry.Line{
		P1: geometry.Point{X: r.X1 * float64(imgW), Y: r.Y1 * float64(imgH)},
		P2: geometry.Point{X: r.X2 * float64(imgW), Y: r.Y2 * float64(imgH)},
	}
}

// SuggestScale turns a located bar into a scale factor. The bar's own
// annotated length wins over the fallback length; without either there is
// nothing to calibrate against.
func SuggestScale(r *types.ScaleBarResult, imgW, imgH int, fallbackLengthUm float64) (float64, error) {
	lengthUm := r.LengthUm
	if lengthUm <= 0 {
		lengthUm = fallbackLengthUm
	}
	return measure.Calibrate(LineInImage(r, imgW, imgH), lengthUm)
}

// DetectScale runs the full model pipeline: encode the image, locate the
// bar, derive the scale factor.
func (d *Detector) DetectScale(ctx context.Context, p *processing.Processor, img image.Image, model string, fallbackLengthUm float64) (float64, *types.ScaleBarResult, error) {
	imgB64, err := p.PrepareImageForModel(img, "jpg", 1024, 0)
	if err != nil {
		return 0, nil, err
	}

	result, err := d.Locate(ctx, model, imgB64)
	if err != nil {
		return 0, nil, err
	}

	b := img.Bounds()
	umPerPx, err := SuggestScale(result, b.Dx(), b.Dy(), fallbackLengthUm)
	if err != nil {
		return 0, nil, err
	}
	return umPerPx, result, nil
}
