package types

// CanvasObject is one drawn object as delivered by the drawing surface.
// The field set mirrors Fabric.js-style canvas JSON: lines carry explicit
// endpoints, circles carry a bounding position plus radius and per-axis
// scale factors. Endpoint fields are pointers so that their absence can be
// told apart from a genuine zero coordinate.
type CanvasObject struct {
	Type   string   `json:"type"`
	X1     *float64 `json:"x1,omitempty"`
	Y1     *float64 `json:"y1,omitempty"`
	X2     *float64 `json:"x2,omitempty"`
	Y2     *float64 `json:"y2,omitempty"`
	Left   float64  `json:"left,omitempty"`
	Top    float64  `json:"top,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`
	Radius float64  `json:"radius,omitempty"`
	ScaleX float64  `json:"scaleX,omitempty"`
	ScaleY float64  `json:"scaleY,omitempty"`
}

// HasEndpoints reports whether the object carries explicit line endpoints.
func (o CanvasObject) HasEndpoints() bool {
	return o.X1 != nil && o.Y1 != nil && o.X2 != nil && o.Y2 != nil
}

// Scales returns the per-axis scale factors, treating a missing (zero)
// factor as 1.
func (o CanvasObject) Scales() (float64, float64) {
	sx, sy := o.ScaleX, o.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Drawing is the complete canvas state: the JSON document the drawing
// surface produces and re-loads between interactions.
type Drawing struct {
	Version string         `json:"version,omitempty"`
	Objects []CanvasObject `json:"objects"`
}

// ScaleBarResult is a located scale bar as reported by a vision backend.
// Coordinates are the two bar endpoints, normalized to [0,1].
type ScaleBarResult struct {
	Found      bool    `json:"found"`
	Confidence float64 `json:"confidence"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	LengthUm   float64 `json:"length_um"`
	Text       string  `json:"text"`
}
