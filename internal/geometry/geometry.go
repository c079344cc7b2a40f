// Package geometry converts field coordinates between the three frames the
// builder works in: render-pixel space (top-left origin, scaled by the current
// zoom), template space (top-left origin at the fixed reference scale of 1.0),
// and PDF point space (bottom-left origin, y up).
package geometry

import (
	"fmt"
	"math"
)

// Tolerance for comparing page dimensions and round-tripped coordinates.
const (
	DimTolerance   = 0.5
	FloatTolerance = 1e-6
)

// Point is a position in any of the three coordinate frames.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box with a top-left anchor, except in PDF space
// where the anchor returned by ToPDFSpace is the box's bottom-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageDims is a page size in PDF points plus the document's page count.
type PageDims struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Count  int     `json:"count"`
}

// IntegrityError reports stored geometry that no longer matches the live PDF.
type IntegrityError struct {
	Stored PageDims
	Actual PageDims
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("page dimensions %.2fx%.2f do not match stored template dimensions %.2fx%.2f",
		e.Actual.Width, e.Actual.Height, e.Stored.Width, e.Stored.Height)
}

// ToTemplateSpace maps a render-pixel point to template space. The caller
// guarantees scale > 0; the editor rejects non-positive zoom levels.
func ToTemplateSpace(p Point, scale float64) Point {
	return Point{X: p.X / scale, Y: p.Y / scale}
}

// ToRenderSpace maps a template-space point to render pixels at the given scale.
func ToRenderSpace(p Point, scale float64) Point {
	return Point{X: p.X * scale, Y: p.Y * scale}
}

// RectToTemplateSpace maps a render-pixel rect to template space.
func RectToTemplateSpace(r Rect, scale float64) Rect {
	return Rect{X: r.X / scale, Y: r.Y / scale, Width: r.Width / scale, Height: r.Height / scale}
}

// RectToRenderSpace maps a template-space rect to render pixels.
func RectToRenderSpace(r Rect, scale float64) Rect {
	return Rect{X: r.X * scale, Y: r.Y * scale, Width: r.Width * scale, Height: r.Height * scale}
}

// ToPDFSpace maps a template-space rect to the PDF-space position of its
// bottom-left corner. PDF pages have their origin at the bottom-left with y
// increasing upward, so the vertical axis flips and the box height is
// subtracted: the top of the on-screen box lands on the top of the drawn box.
func ToPDFSpace(r Rect, pageHeight float64) Point {
	return Point{X: r.X, Y: pageHeight - r.Y - r.Height}
}

// Overlaps reports whether two rects intersect with positive area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

// Equal compares two points within FloatTolerance.
func (p Point) Equal(o Point) bool {
	return math.Abs(p.X-o.X) <= FloatTolerance && math.Abs(p.Y-o.Y) <= FloatTolerance
}

// CheckPageDims verifies the stored template page size against the live PDF's
// page size. A mismatch beyond DimTolerance is a data-integrity error; field
// positions are never silently rescaled to a substituted document.
func CheckPageDims(stored, actual PageDims) error {
	if math.Abs(stored.Width-actual.Width) > DimTolerance ||
		math.Abs(stored.Height-actual.Height) > DimTolerance {
		return &IntegrityError{Stored: stored, Actual: actual}
	}
	return nil
}
