// Package micromeasure measures distances and diameters on microscope
// images.
//
// The user draws a line or a circle over a micrograph, the drawing arrives
// as canvas JSON, and the package converts the drawn pixels to micrometers
// using a persisted scale factor. Drawing a line over a feature of known
// physical length calibrates that factor. Measurements can be burned into a
// copy of the image and exported as CSV.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		"github.com/menta2k/microscope-measure"
//		"github.com/menta2k/microscope-measure/pkg/geometry"
//		"github.com/menta2k/microscope-measure/pkg/types"
//	)
//
//	func main() {
//		tool := micromeasure.New()
//
//		img, err := tool.LoadImage("slide.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		x1, y1, x2, y2 := 100.0, 100.0, 300.0, 100.0
//		objects := []types.CanvasObject{
//			{Type: "line", X1: &x1, Y1: &y1, X2: &x2, Y2: &y2},
//		}
//
//		result, shape, err := tool.MeasureDrawing(objects, geometry.ModeLine, 0)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(result.Label)
//
//		annotated, err := tool.AnnotateMeasurement(img, shape, result)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := tool.SaveImage(annotated, "slide_annotated.png"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of five main components:
//
// 1. Geometry (pkg/geometry): Turns raw canvas objects into typed shapes
// 2. Measure (pkg/measure): Pixel-to-micrometer conversion and calibration
// 3. Scale (pkg/scale): Persists the scale factor between sessions
// 4. Annotate (pkg/annotate): Burns shapes and labels into image copies
// 5. Export (pkg/export): CSV serialization of measurements
//
// Scale bar detection (pkg/scalebar) can suggest a calibration automatically,
// either through a vision model backend or a pixel-contrast heuristic.
package micromeasure

import (
	"fmt"
	"image"
	"time"

	"github.com/menta2k/microscope-measure/pkg/annotate"
	"github.com/menta2k/microscope-measure/pkg/export"
	"github.com/menta2k/microscope-measure/pkg/geometry"
	"github.com/menta2k/microscope-measure/pkg/measure"
	"github.com/menta2k/microscope-measure/pkg/processing"
	"github.com/menta2k/microscope-measure/pkg/scale"
	"github.com/menta2k/microscope-measure/pkg/types"
)

// Version of the measurement library
const Version = "1.0.0"

// Default conversion constants: a 298 px reference bar spanning 400 µm.
const (
	DefaultUmPerPx       = 1.342281879
	DefaultKnownLengthUm = 400
	DefaultDisplayWidth  = 900
)

// Tool provides a high-level interface for measuring microscope images
type Tool struct {
	processor *processing.Processor
	annotator *annotate.Annotator
	store     *scale.Store

	defaultUmPerPx  float64
	knownLengthUm   float64
	maxDisplayWidth int
}

// Options configures a Tool. Zero fields fall back to the defaults.
type Options struct {
	// DefaultUmPerPx applies until a calibration has been saved.
	DefaultUmPerPx float64
	// KnownLengthUm is the reference length assumed during calibration.
	KnownLengthUm float64
	// SettingsPath is where the calibrated scale persists.
	SettingsPath string
	// MaxDisplayWidth caps the drawing surface width.
	MaxDisplayWidth int
	// Annotation styles the burned-in overlay.
	Annotation annotate.Config
}

// New creates a Tool with default configuration
func New() *Tool {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Tool with custom configuration
func NewWithOptions(opts Options) *Tool {
	if opts.DefaultUmPerPx <= 0 {
		opts.DefaultUmPerPx = DefaultUmPerPx
	}
	if opts.KnownLengthUm <= 0 {
		opts.KnownLengthUm = DefaultKnownLengthUm
	}
	if opts.SettingsPath == "" {
		opts.SettingsPath = scale.DefaultPath
	}
	if opts.MaxDisplayWidth <= 0 {
		opts.MaxDisplayWidth = DefaultDisplayWidth
	}

	return &Tool{
		processor:       processing.NewProcessor(),
		annotator:       annotate.NewWithConfig(opts.Annotation),
		store:           scale.NewStore(opts.SettingsPath),
		defaultUmPerPx:  opts.DefaultUmPerPx,
		knownLengthUm:   opts.KnownLengthUm,
		maxDisplayWidth: opts.MaxDisplayWidth,
	}
}

// LoadImage loads an image from a file path or URL
func (t *Tool) LoadImage(source string) (image.Image, error) {
	return t.processor.LoadImageSmart(source)
}

// SaveImage saves an image, deriving the format from the path extension
func (t *Tool) SaveImage(img image.Image, path string) error {
	return t.processor.SaveImage(img, path, "", 0)
}

// FitToDisplay downsizes an image to the drawing surface width and returns
// the transform that maps drawn shapes back to source pixels
func (t *Tool) FitToDisplay(img image.Image) (image.Image, processing.DisplayTransform) {
	return t.processor.FitToDisplay(img, t.maxDisplayWidth)
}

// CurrentScale returns the persisted scale factor, or the default when
// nothing has been calibrated yet
func (t *Tool) CurrentScale() float64 {
	return t.store.LoadOrDefault(t.defaultUmPerPx)
}

// MeasureDrawing extracts the most recent shape from canvas objects and
// measures it. A non-positive umPerPx means use the current persisted scale.
// The returned shape is the one that was measured, ready for annotation.
func (t *Tool) MeasureDrawing(objects []types.CanvasObject, mode geometry.Mode, umPerPx float64) (measure.Result, geometry.Shape, error) {
	if umPerPx <= 0 {
		umPerPx = t.CurrentScale()
	}

	shape, err := geometry.Extract(objects, mode)
	if err != nil {
		return measure.Result{}, nil, err
	}

	result, err := measure.Measure(shape, umPerPx)
	if err != nil {
		return measure.Result{}, nil, err
	}
	return result, shape, nil
}

// CalibrateFromDrawing derives a new scale factor from a line drawn over a
// reference of known length. A non-positive knownLengthUm means use the
// configured default reference length. The factor is returned but not
// persisted; call SaveCalibration to keep it.
func (t *Tool) CalibrateFromDrawing(objects []types.CanvasObject, knownLengthUm float64) (float64, geometry.Line, error) {
	if knownLengthUm <= 0 {
		knownLengthUm = t.knownLengthUm
	}

	shape, err := geometry.Extract(objects, geometry.ModeLine)
	if err != nil {
		return 0, geometry.Line{}, err
	}
	line := shape.(geometry.Line)

	umPerPx, err := measure.Calibrate(line, knownLengthUm)
	if err != nil {
		return 0, geometry.Line{}, err
	}
	return umPerPx, line, nil
}

// SaveCalibration persists a calibrated scale factor together with its
// provenance
func (t *Tool) SaveCalibration(umPerPx, knownLengthUm, linePxLength float64) error {
	return t.store.Save(scale.Record{
		UmPerPx:       umPerPx,
		Source:        scale.SourceCalibrated,
		KnownLengthUm: knownLengthUm,
		LinePxLength:  linePxLength,
	})
}

// SetScale persists a manually entered scale factor
func (t *Tool) SetScale(umPerPx float64) error {
	return t.store.Save(scale.Record{
		UmPerPx: umPerPx,
		Source:  scale.SourceManual,
	})
}

// AnnotateMeasurement burns the measured shape and its label into a copy of
// the image
func (t *Tool) AnnotateMeasurement(img image.Image, shape geometry.Shape, result measure.Result) (*image.NRGBA, error) {
	annotated, err := t.annotator.Annotate(img, shape, result.Label)
	if err != nil {
		return nil, fmt.Errorf("annotation failed: %w", err)
	}
	return annotated, nil
}

// ExportCSV renders measurements as a CSV document stamped with the current
// time
func (t *Tool) ExportCSV(results ...measure.Result) ([]byte, error) {
	return export.EncodeBatch(results, time.Now())
}

// Store exposes the underlying scale store for direct inspection
func (t *Tool) Store() *scale.Store {
	return t.store
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
