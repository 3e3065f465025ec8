package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/microscope-measure/pkg/geometry"
	"github.com/menta2k/microscope-measure/pkg/processing"
)

// labelOffset is how far the label sits from its anchor point, in pixels.
const labelOffset = 8

// Config controls how shapes and labels are drawn.
type Config struct {
	StrokeWidth int
	Color       color.NRGBA
	// FontSize in pixels; 0 scales with the image width.
	FontSize float64
}

// DefaultConfig returns a red, clearly visible annotation style.
func DefaultConfig() Config {
	return Config{
		StrokeWidth: 3,
		Color:       color.NRGBA{R: 255, A: 255},
	}
}

// Annotator renders measured shapes and labels onto image copies.
type Annotator struct {
	config Config
}

// New creates an Annotator with default configuration.
func New() *Annotator {
	return &Annotator{config: DefaultConfig()}
}

// NewWithConfig creates an Annotator with custom configuration. Zero stroke
// width and a zero color fall back to the defaults.
func NewWithConfig(config Config) *Annotator {
	def := DefaultConfig()
	if config.StrokeWidth <= 0 {
		config.StrokeWidth = def.StrokeWidth
	}
	if config.Color == (color.NRGBA{}) {
		config.Color = def.Color
	}
	return &Annotator{config: config}
}

// Annotate draws the shape outline and its label onto a copy of img. The
// source image is never modified, so callers can re-annotate from the
// pristine original on every interaction. Output is deterministic: the same
// inputs produce byte-identical pixels.
func (a *Annotator) Annotate(img image.Image, s geometry.Shape, label string) (*image.NRGBA, error) {
	if img == nil {
		return nil, processing.ErrMissingImage
	}
	if s == nil {
		return nil, geometry.ErrNoShape
	}

	out := imaging.Clone(img)

	switch v := s.(type) {
	case geometry.Line:
		a.drawLine(out, v.P1, v.P2)
	case geometry.Circle:
		a.drawCircle(out, v.Center, v.Radius)
	default:
		return nil, fmt.Errorf("unsupported shape type %T", s)
	}

	if label != "" {
		face, err := a.face(out.Bounds().Dx())
		if err != nil {
			return nil, fmt.Errorf("failed to prepare label font: %w", err)
		}
		defer face.Close()

		anchor := labelAnchor(s)
		a.drawLabel(out, face, label, anchor.X, anchor.Y)
	}

	return out, nil
}

// labelAnchor picks a position near the shape: beside the line midpoint, or
// to the right of the circle.
func labelAnchor(s geometry.Shape) geometry.Point {
	switch v := s.(type) {
	case geometry.Line:
		mid := v.Midpoint()
		return geometry.Point{X: mid.X + labelOffset, Y: mid.Y - labelOffset}
	case geometry.Circle:
		return geometry.Point{X: v.Center.X + v.Radius + labelOffset, Y: v.Center.Y - labelOffset}
	default:
		return geometry.Point{}
	}
}

func (a *Annotator) face(imageWidth int) (font.Face, error) {
	size := a.config.FontSize
	if size <= 0 {
		size = math.Max(14, 0.025*float64(imageWidth))
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// drawLabel renders text at (x, y) as the baseline origin, clamped so the
// whole string stays on the canvas.
func (a *Annotator) drawLabel(dst *image.NRGBA, face font.Face, text string, x, y float64) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.config.Color),
		Face: face,
	}

	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	b := dst.Bounds()
	px, py := int(x), int(y)
	if px+width > b.Max.X {
		px = b.Max.X - width
	}
	if px < b.Min.X {
		px = b.Min.X
	}
	if py-ascent < b.Min.Y {
		py = b.Min.Y + ascent
	}
	if py+descent > b.Max.Y {
		py = b.Max.Y - descent
	}

	d.Dot = fixed.P(px, py)
	d.DrawString(text)
}

// drawLine draws the segment by stepping along its length and painting
// perpendicular offsets for stroke thickness.
func (a *Annotator) drawLine(img *image.NRGBA, p1, p2 geometry.Point) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	dist := math.Hypot(dx, dy)
	half := float64(a.config.StrokeWidth) / 2

	if dist == 0 {
		a.setPx(img, int(p1.X+0.5), int(p1.Y+0.5))
		return
	}

	perpX := -dy / dist
	perpY := dx / dist

	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}

	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := p1.X + dx*t
		cy := p1.Y + dy*t
		for o := -half; o <= half; o += 0.5 {
			a.setPx(img, int(cx+perpX*o+0.5), int(cy+perpY*o+0.5))
		}
	}
}

// drawCircle draws the outline by stepping the angle finely enough for a
// gap-free ring at any radius, painting radial offsets for thickness.
func (a *Annotator) drawCircle(img *image.NRGBA, center geometry.Point, radius float64) {
	if radius <= 0 {
		a.setPx(img, int(center.X+0.5), int(center.Y+0.5))
		return
	}

	half := float64(a.config.StrokeWidth) / 2
	step := 1.0 / radius // ~1 px of arc per step
	if step > 0.05 {
		step = 0.05
	}

	for ang := 0.0; ang < 2*math.Pi; ang += step {
		nx := math.Cos(ang)
		ny := math.Sin(ang)
		for o := -half; o <= half; o += 0.5 {
			a.setPx(img, int(center.X+nx*(radius+o)+0.5), int(center.Y+ny*(radius+o)+0.5))
		}
	}
}

func (a *Annotator) setPx(img *image.NRGBA, x, y int) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	i := img.PixOffset(x, y)
	c := a.config.Color
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}
