package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/microscope-measure/pkg/types"
)

// Mode selects how a drawing is interpreted.
type Mode string

const (
	ModeLine   Mode = "line"
	ModeCircle Mode = "circle"
)

var (
	// ErrNoShape means no drawable object was present in the input.
	ErrNoShape = errors.New("no shape drawn")
	// ErrModeMismatch means the drawn shape disagrees with the selected mode.
	ErrModeMismatch = errors.New("drawn shape does not match the selected mode")
)

// Point is a position in image pixel coordinates, origin top-left,
// y increasing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is a measured segment between two points.
type Line struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Mode returns ModeLine.
func (Line) Mode() Mode { return ModeLine }

// Length returns the euclidean distance between the endpoints, in pixels.
func (l Line) Length() float64 {
	return math.Hypot(l.P2.X-l.P1.X, l.P2.Y-l.P1.Y)
}

// Midpoint returns the point halfway between the endpoints.
func (l Line) Midpoint() Point {
	return Point{X: (l.P1.X + l.P2.X) / 2, Y: (l.P1.Y + l.P2.Y) / 2}
}

// Circle is a measured circle given by center and radius.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Mode returns ModeCircle.
func (Circle) Mode() Mode { return ModeCircle }

// Diameter returns the circle diameter in pixels.
func (c Circle) Diameter() float64 { return 2 * c.Radius }

// Shape is a typed drawn shape: either a Line or a Circle.
type Shape interface {
	Mode() Mode
}

// Extract turns raw canvas objects into a typed shape. When several shapes
// were drawn, the most recently drawn one wins and the earlier ones are
// silently discarded. Text labels and other non-shape objects are skipped.
//
// The declared mode is trusted: the drawing surface enforces a single mode
// at a time, so shape geometry is never inferred. The object's own type tag
// only has to agree with the requested mode, otherwise ErrModeMismatch.
func Extract(objects []types.CanvasObject, mode Mode) (Shape, error) {
	var latest *types.CanvasObject
	for i := range objects {
		if isDrawable(objects[i].Type) {
			latest = &objects[i]
		}
	}
	if latest == nil {
		return nil, ErrNoShape
	}

	switch mode {
	case ModeLine:
		if latest.Type != string(ModeLine) {
			return nil, fmt.Errorf("%w: drew a %s, selected %s", ErrModeMismatch, latest.Type, mode)
		}
		return lineFromObject(*latest), nil
	case ModeCircle:
		if latest.Type != string(ModeCircle) {
			return nil, fmt.Errorf("%w: drew a %s, selected %s", ErrModeMismatch, latest.Type, mode)
		}
		return circleFromObject(*latest), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// ScaleShape maps a shape drawn in display coordinates back to image pixel
// coordinates. The circle radius scales by the mean of the two factors.
func ScaleShape(s Shape, sx, sy float64) Shape {
	switch v := s.(type) {
	case Line:
		return Line{
			P1: Point{X: v.P1.X * sx, Y: v.P1.Y * sy},
			P2: Point{X: v.P2.X * sx, Y: v.P2.Y * sy},
		}
	case Circle:
		return Circle{
			Center: Point{X: v.Center.X * sx, Y: v.Center.Y * sy},
			Radius: v.Radius * (sx + sy) / 2,
		}
	default:
		return s
	}
}

func isDrawable(objType string) bool {
	return objType == string(ModeLine) || objType == string(ModeCircle)
}

// lineFromObject prefers explicit endpoints; a line represented only by its
// bounding box falls back to the box diagonal scaled by the object factors.
func lineFromObject(o types.CanvasObject) Line {
	if o.HasEndpoints() {
		return Line{
			P1: Point{X: *o.X1, Y: *o.Y1},
			P2: Point{X: *o.X2, Y: *o.Y2},
		}
	}
	sx, sy := o.Scales()
	return Line{
		P1: Point{X: o.Left, Y: o.Top},
		P2: Point{X: o.Left + o.Width*sx, Y: o.Top + o.Height*sy},
	}
}

// circleFromObject derives the center from the bounding position plus the
// scaled radius, and the radius from the mean of the per-axis factors.
func circleFromObject(o types.CanvasObject) Circle {
	sx, sy := o.Scales()
	return Circle{
		Center: Point{X: o.Left + o.Radius*sx, Y: o.Top + o.Radius*sy},
		Radius: o.Radius * (sx + sy) / 2,
	}
}
