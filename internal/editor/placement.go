package editor

import (
	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
)

// Smart-placement parameters: candidate positions are scanned on a coarse
// grid, with a bounded number of attempts before falling back to stacking.
const (
	placementMargin = 20.0
	placementStep   = 40.0
	placementTries  = 60
	stackGap        = 20.0
)

// placement picks a template-space position for a new field of the given type
// that does not overlap any existing field's bounding box. When no free slot
// is found within the attempt budget, the field is stacked below the
// last-added one.
func (s *Session) placement(t field.Type) geometry.Point {
	w, h := placementProbe(t)

	tries := 0
	for y := placementMargin; y+h <= s.page.Height || tries == 0; y += placementStep {
		for x := placementMargin; x+w <= s.page.Width || x == placementMargin; x += placementStep {
			if tries >= placementTries {
				return s.stackFallback()
			}
			tries++

			candidate := geometry.Rect{X: x, Y: y, Width: w, Height: h}
			if !s.overlapsAny(candidate) {
				return geometry.Point{X: x, Y: y}
			}
		}
	}
	return s.stackFallback()
}

// placementProbe sizes the candidate box like a fresh field of that type.
func placementProbe(t field.Type) (w, h float64) {
	f, err := field.New(t, geometry.Point{})
	if err != nil {
		return 150, 30
	}
	return f.Width, f.Height
}

func (s *Session) overlapsAny(r geometry.Rect) bool {
	for i := range s.fields {
		if r.Overlaps(s.fields[i].Rect()) {
			return true
		}
	}
	return false
}

// stackFallback places the new field below the last-added one.
func (s *Session) stackFallback() geometry.Point {
	if len(s.fields) == 0 {
		return geometry.Point{X: placementMargin, Y: placementMargin}
	}
	last := s.fields[len(s.fields)-1]
	return geometry.Point{X: last.X, Y: last.Y + last.Height + stackGap}
}
