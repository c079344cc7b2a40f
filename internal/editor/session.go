// Package editor implements the interactive field-overlay layer: an owned
// editing session over a template's field list, a pointer-driven state machine
// for drag/resize/selection, bounded undo history, and smart placement of new
// fields. The session consumes abstract pointer events in render-pixel space
// and keeps all field geometry in template space, so it is independent of any
// particular UI toolkit.
package editor

import (
	"errors"
	"fmt"

	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
)

// MinSize is the editor-level minimum field size. Stricter than the model's
// minimum so resize handles stay usable.
const MinSize = 20.0

// Nudge distances for arrow-key moves.
const (
	NudgeStep       = 1.0
	NudgeStepCoarse = 10.0
)

var (
	ErrNoSelection  = errors.New("no field selected")
	ErrFieldMissing = errors.New("field not found in session")
	ErrInvalidZoom  = errors.New("zoom must be positive")
)

// Session is the explicit editing context for one template: it owns the field
// list, the selection, the zoom level, and the undo history. Exactly one
// caller mutates a session at a time.
type Session struct {
	page     geometry.PageDims
	zoom     float64
	fields   []field.Field
	selected string
	history  *history
	pointer  interaction
}

// NewSession creates an empty session for a page of the given size in points.
func NewSession(page geometry.PageDims) *Session {
	return &Session{
		page:    page,
		zoom:    1.0,
		history: newHistory(historyLimit),
	}
}

// SetZoom changes the render scale used to interpret pointer events.
func (s *Session) SetZoom(zoom float64) error {
	if zoom <= 0 {
		return ErrInvalidZoom
	}
	s.zoom = zoom
	return nil
}

// Zoom returns the current render scale.
func (s *Session) Zoom() float64 { return s.zoom }

// Page returns the page dimensions the session edits against.
func (s *Session) Page() geometry.PageDims { return s.page }

// LoadFields replaces the session's field list, clearing selection and
// history. Used when a saved template is opened for editing.
func (s *Session) LoadFields(fields []field.Field) error {
	if err := field.ValidateList(fields); err != nil {
		return err
	}
	s.fields = field.Clone(fields)
	s.selected = ""
	s.history = newHistory(historyLimit)
	s.pointer = interaction{}
	return nil
}

// Fields returns a deep copy of the field list in z-order.
func (s *Session) Fields() []field.Field {
	return field.Clone(s.fields)
}

// Selected returns the id of the selected field, or "".
func (s *Session) Selected() string { return s.selected }

// SelectedField returns a copy of the selected field.
func (s *Session) SelectedField() (field.Field, bool) {
	f := s.find(s.selected)
	if f == nil {
		return field.Field{}, false
	}
	return *f, true
}

func (s *Session) find(id string) *field.Field {
	for i := range s.fields {
		if s.fields[i].ID == id {
			return &s.fields[i]
		}
	}
	return nil
}

// Select marks a field as selected.
func (s *Session) Select(id string) error {
	if s.find(id) == nil {
		return fmt.Errorf("%w: %s", ErrFieldMissing, id)
	}
	s.selected = id
	return nil
}

// Deselect clears the selection (click elsewhere or Escape).
func (s *Session) Deselect() { s.selected = "" }

// AddField creates a field of the given type at an automatically chosen
// position that does not overlap existing fields, selects it, and records the
// mutation in history.
func (s *Session) AddField(t field.Type) (field.Field, error) {
	at := s.placement(t)
	return s.addAt(t, at)
}

// AddFieldAt creates a field at an explicit drop position given in
// render-pixel space at the current zoom.
func (s *Session) AddFieldAt(t field.Type, renderAt geometry.Point) (field.Field, error) {
	return s.addAt(t, geometry.ToTemplateSpace(renderAt, s.zoom))
}

func (s *Session) addAt(t field.Type, at geometry.Point) (field.Field, error) {
	f, err := field.New(t, at)
	if err != nil {
		return field.Field{}, err
	}
	f.Name = fmt.Sprintf("%s_field_%d", t, len(s.fields)+1)

	s.snapshot()
	s.fields = append(s.fields, f)
	s.selected = f.ID
	return f, nil
}

// UpdateField applies a property patch to a field and records history.
func (s *Session) UpdateField(id string, p field.Patch) error {
	f := s.find(id)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrFieldMissing, id)
	}
	s.snapshot()
	if err := f.Apply(p); err != nil {
		s.undoDiscard()
		return err
	}
	return nil
}

// DeleteField removes a field. Deleting the selected field clears the
// selection as a side effect.
func (s *Session) DeleteField(id string) error {
	idx := -1
	for i := range s.fields {
		if s.fields[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFieldMissing, id)
	}

	s.snapshot()
	s.fields = append(s.fields[:idx], s.fields[idx+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	return nil
}

// DuplicateField clones a field with a fresh id, offset position and suffixed
// name, selects the clone, and records history.
func (s *Session) DuplicateField(id string) (field.Field, error) {
	f := s.find(id)
	if f == nil {
		return field.Field{}, fmt.Errorf("%w: %s", ErrFieldMissing, id)
	}

	s.snapshot()
	clone := field.Duplicate(*f)
	s.fields = append(s.fields, clone)
	s.selected = clone.ID
	return clone, nil
}

// DeleteSelected removes the selected field.
func (s *Session) DeleteSelected() error {
	if s.selected == "" {
		return ErrNoSelection
	}
	return s.DeleteField(s.selected)
}

// DuplicateSelected clones the selected field.
func (s *Session) DuplicateSelected() (field.Field, error) {
	if s.selected == "" {
		return field.Field{}, ErrNoSelection
	}
	return s.DuplicateField(s.selected)
}

// Nudge moves the selected field by one step (ten with the modifier held) in
// template-space units, clamping at the page's top-left corner.
func (s *Session) Nudge(dx, dy float64, coarse bool) error {
	if s.selected == "" {
		return ErrNoSelection
	}
	f := s.find(s.selected)

	step := NudgeStep
	if coarse {
		step = NudgeStepCoarse
	}

	s.snapshot()
	f.X = max(0, f.X+dx*step)
	f.Y = max(0, f.Y+dy*step)
	return nil
}

// Undo restores the previous field list snapshot. Returns false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	prev, ok := s.history.undo(snapshot{fields: field.Clone(s.fields), selected: s.selected})
	if !ok {
		return false
	}
	s.fields = prev.fields
	s.selected = prev.selected
	return true
}

// Redo reapplies an undone snapshot.
func (s *Session) Redo() bool {
	next, ok := s.history.redo(snapshot{fields: field.Clone(s.fields), selected: s.selected})
	if !ok {
		return false
	}
	s.fields = next.fields
	s.selected = next.selected
	return true
}

// CanUndo reports whether history holds an earlier state.
func (s *Session) CanUndo() bool { return s.history.canUndo() }

// CanRedo reports whether an undone state can be reapplied.
func (s *Session) CanRedo() bool { return s.history.canRedo() }

// snapshot records the current state before a structural mutation.
func (s *Session) snapshot() {
	s.history.push(snapshot{fields: field.Clone(s.fields), selected: s.selected})
}

// undoDiscard drops the most recent snapshot after a mutation failed.
func (s *Session) undoDiscard() {
	s.history.dropLast()
}
