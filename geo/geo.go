// Package geo holds the page-space geometry used by the extraction pipeline:
// axis-aligned rectangles and the scale factors that map a template's
// reference page size onto an actual page.
package geo

import "math"

// Rect is an axis-aligned rectangle. Coordinates follow the rendering
// convention of the page backend: origin in the upper-left corner, y growing
// downward, units in PDF points. A Rect is not required to be normalized;
// callers that need X0<=X1 and Y0<=Y1 use Normalize.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Normalize returns the rect with min/max applied on both axes independently.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Width returns the horizontal extent of the rect.
func (r Rect) Width() float64 { return math.Abs(r.X1 - r.X0) }

// Height returns the vertical extent of the rect.
func (r Rect) Height() float64 { return math.Abs(r.Y1 - r.Y0) }

// IsEmpty reports whether the rect encloses no area. Degenerate rects are
// legal inputs everywhere in the pipeline; consumers must tolerate them.
func (r Rect) IsEmpty() bool { return r.Width() == 0 || r.Height() == 0 }

// Intersects reports whether r and o share any area. Both rects are
// normalized before the test, so argument ordering never matters. Touching
// edges do not count.
func (r Rect) Intersects(o Rect) bool {
	r = r.Normalize()
	o = o.Normalize()
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Round returns the rect with every coordinate rounded to the given number of
// decimal places. Extraction results carry rounded coordinates so repeated
// runs produce identical output.
func (r Rect) Round(decimals int) Rect {
	f := math.Pow(10, float64(decimals))
	return Rect{
		X0: math.Round(r.X0*f) / f,
		Y0: math.Round(r.Y0*f) / f,
		X1: math.Round(r.X1*f) / f,
		Y1: math.Round(r.Y1*f) / f,
	}
}

// ScaleFactors map template-space coordinates onto an actual page.
type ScaleFactors struct {
	X float64
	Y float64
}

// NewScaleFactors derives the factors for a page of pageW x pageH against a
// template authored at refW x refH. A non-positive reference dimension means
// "no scaling" on that axis and yields exactly 1.0, each axis independently.
func NewScaleFactors(refW, refH, pageW, pageH float64) ScaleFactors {
	s := ScaleFactors{X: 1.0, Y: 1.0}
	if refW > 0 {
		s.X = pageW / refW
	}
	if refH > 0 {
		s.Y = pageH / refH
	}
	return s
}

// Apply maps a template-space rect into page space and normalizes it.
func (s ScaleFactors) Apply(r Rect) Rect {
	return Rect{
		X0: r.X0 * s.X,
		Y0: r.Y0 * s.Y,
		X1: r.X1 * s.X,
		Y1: r.Y1 * s.Y,
	}.Normalize()
}
