// Package field holds the canonical form-field model: construction with
// per-type defaults, partial updates with geometry clamping, duplication, and
// validation. Field geometry is always expressed in template space.
package field

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/formseal/formseal/internal/geometry"
)

// Type discriminates the field variants a template can carry.
type Type string

const (
	TypeText      Type = "text"
	TypeTextarea  Type = "textarea"
	TypeCheckbox  Type = "checkbox"
	TypeRadio     Type = "radio"
	TypeDropdown  Type = "dropdown"
	TypeDate      Type = "date"
	TypeSignature Type = "signature"
	TypeImage     Type = "image"
	TypeCPF       Type = "cpf"
	TypeCNS       Type = "cns"
	TypePhone     Type = "phone"
	TypeTime      Type = "time"
	TypeNumeric   Type = "numeric"
)

// Geometry and style bounds enforced by the model.
const (
	MinSize     = 10.0
	MinFontSize = 8.0
	MaxFontSize = 72.0

	DuplicateOffset = 20.0
	DuplicateSuffix = "_copy"
)

var (
	ErrUnknownType      = errors.New("unknown field type")
	ErrTypeChange       = errors.New("field type cannot change after creation")
	ErrPayloadMismatch  = errors.New("field payload does not match field type")
	ErrNegativeGeometry = errors.New("field geometry must not be negative")
)

// ChoiceSpec carries the selectable options of radio and dropdown fields.
type ChoiceSpec struct {
	Options []string `json:"options"`
}

// TextSpec carries validation constraints for free-text fields.
type TextSpec struct {
	Pattern   string `json:"pattern,omitempty"`
	MinLength int    `json:"minLength,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`
}

// NumericSpec carries range constraints for numeric fields.
type NumericSpec struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// MaskSpec carries the display mask of the masked input variants.
type MaskSpec struct {
	Pattern string `json:"pattern"`
}

// Field is one positioned, typed input region on a template page. X/Y are the
// top-left corner in template-space units; the payload pointers form a tagged
// union keyed by Type, never an open property bag.
type Field struct {
	ID       string  `json:"id"`
	Type     Type    `json:"type"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize"`
	Required bool    `json:"required"`

	Placeholder  string `json:"placeholder,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`

	Choice  *ChoiceSpec  `json:"choice,omitempty"`
	Text    *TextSpec    `json:"text,omitempty"`
	Numeric *NumericSpec `json:"numeric,omitempty"`
	Mask    *MaskSpec    `json:"mask,omitempty"`
}

// defaultSize returns the initial geometry for a field type. Masked types are
// sized to fit their mask pattern at the default font size.
func defaultSize(t Type) (w, h float64) {
	switch t {
	case TypeCheckbox:
		return 20, 20
	case TypeTextarea:
		return 200, 80
	case TypeSignature:
		return 200, 60
	case TypeImage:
		return 150, 100
	case TypeCPF:
		return 120, 30
	case TypeCNS:
		return 140, 30
	case TypePhone:
		return 130, 30
	case TypeTime:
		return 60, 30
	case TypeNumeric:
		return 100, 30
	default:
		return 150, 30
	}
}

// defaultMask returns the mask pattern for the masked variants. '0' slots
// accept a digit, every other rune is a literal.
func defaultMask(t Type) string {
	switch t {
	case TypeCPF:
		return "000.000.000-00"
	case TypeCNS:
		return "000 0000 0000 0000"
	case TypePhone:
		return "(00) 00000-0000"
	case TypeTime:
		return "00:00"
	default:
		return ""
	}
}

// Known reports whether t is a supported field type.
func Known(t Type) bool {
	switch t {
	case TypeText, TypeTextarea, TypeCheckbox, TypeRadio, TypeDropdown, TypeDate,
		TypeSignature, TypeImage, TypeCPF, TypeCNS, TypePhone, TypeTime, TypeNumeric:
		return true
	}
	return false
}

// IsMasked reports whether t is one of the masked input variants.
func IsMasked(t Type) bool {
	switch t {
	case TypeCPF, TypeCNS, TypePhone, TypeTime:
		return true
	}
	return false
}

// IsChoice reports whether t selects from a fixed option list.
func IsChoice(t Type) bool {
	return t == TypeRadio || t == TypeDropdown
}

// IsImage reports whether t holds raster data (base64 encoded).
func IsImage(t Type) bool {
	return t == TypeSignature || t == TypeImage
}

// New constructs a field of the given type at a template-space position, with
// a fresh collision-resistant id and per-type default geometry. The position
// is clamped to the page's non-negative quadrant.
func New(t Type, at geometry.Point) (Field, error) {
	if !Known(t) {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	w, h := defaultSize(t)
	f := Field{
		ID:       uuid.NewString(),
		Type:     t,
		Name:     string(t) + "_field",
		X:        max(0, at.X),
		Y:        max(0, at.Y),
		Width:    w,
		Height:   h,
		FontSize: 12,
		Required: false,
	}

	switch {
	case IsChoice(t):
		f.Choice = &ChoiceSpec{}
	case t == TypeNumeric:
		f.Numeric = &NumericSpec{}
	case IsMasked(t):
		f.Mask = &MaskSpec{Pattern: defaultMask(t)}
	case t == TypeText || t == TypeTextarea:
		f.Text = &TextSpec{}
	}

	return f, nil
}

// Patch is a partial field update. Nil members leave the current value alone.
// Type is deliberately absent: type changes are modeled as delete + recreate.
type Patch struct {
	Name         *string
	X            *float64
	Y            *float64
	Width        *float64
	Height       *float64
	FontSize     *float64
	Required     *bool
	Placeholder  *string
	DefaultValue *string
	Choice       *ChoiceSpec
	Text         *TextSpec
	Numeric      *NumericSpec
	Mask         *MaskSpec
}

// Apply merges a patch into the field, clamping geometry to the model bounds:
// width/height never below MinSize, position never negative, font size kept in
// [MinFontSize, MaxFontSize]. Payload members are only accepted when they
// match the field's type.
func (f *Field) Apply(p Patch) error {
	if p.Choice != nil && !IsChoice(f.Type) {
		return fmt.Errorf("%w: choice options on %q", ErrPayloadMismatch, f.Type)
	}
	if p.Numeric != nil && f.Type != TypeNumeric {
		return fmt.Errorf("%w: numeric bounds on %q", ErrPayloadMismatch, f.Type)
	}
	if p.Mask != nil && !IsMasked(f.Type) {
		return fmt.Errorf("%w: mask on %q", ErrPayloadMismatch, f.Type)
	}
	if p.Text != nil && f.Type != TypeText && f.Type != TypeTextarea {
		return fmt.Errorf("%w: text constraints on %q", ErrPayloadMismatch, f.Type)
	}

	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.X != nil {
		f.X = max(0, *p.X)
	}
	if p.Y != nil {
		f.Y = max(0, *p.Y)
	}
	if p.Width != nil {
		f.Width = max(MinSize, *p.Width)
	}
	if p.Height != nil {
		f.Height = max(MinSize, *p.Height)
	}
	if p.FontSize != nil {
		f.FontSize = min(MaxFontSize, max(MinFontSize, *p.FontSize))
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	if p.Placeholder != nil {
		f.Placeholder = *p.Placeholder
	}
	if p.DefaultValue != nil {
		f.DefaultValue = *p.DefaultValue
	}
	if p.Choice != nil {
		f.Choice = p.Choice
	}
	if p.Text != nil {
		f.Text = p.Text
	}
	if p.Numeric != nil {
		f.Numeric = p.Numeric
	}
	if p.Mask != nil {
		f.Mask = p.Mask
	}

	return nil
}

// Duplicate clones the field under a new id, suffixing the name and offsetting
// the position so the copy is visually distinguishable.
func Duplicate(f Field) Field {
	c := f
	c.ID = uuid.NewString()
	c.Name = f.Name + DuplicateSuffix
	c.X = f.X + DuplicateOffset
	c.Y = f.Y + DuplicateOffset

	// Deep-copy the payload pointers so the clone mutates independently.
	if f.Choice != nil {
		opts := append([]string(nil), f.Choice.Options...)
		c.Choice = &ChoiceSpec{Options: opts}
	}
	if f.Text != nil {
		t := *f.Text
		c.Text = &t
	}
	if f.Numeric != nil {
		n := *f.Numeric
		if f.Numeric.Min != nil {
			v := *f.Numeric.Min
			n.Min = &v
		}
		if f.Numeric.Max != nil {
			v := *f.Numeric.Max
			n.Max = &v
		}
		c.Numeric = &n
	}
	if f.Mask != nil {
		m := *f.Mask
		c.Mask = &m
	}

	return c
}

// Rect returns the field's template-space bounding box.
func (f Field) Rect() geometry.Rect {
	return geometry.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// Validate defends the model boundary: it rejects geometry or payloads that
// should never reach the coordinate mapper or the stamping engine.
func (f Field) Validate() error {
	if f.ID == "" {
		return errors.New("field id cannot be empty")
	}
	if !Known(f.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
	if f.Name == "" {
		return errors.New("field name cannot be empty")
	}
	if f.X < 0 || f.Y < 0 {
		return ErrNegativeGeometry
	}
	if f.Width < MinSize || f.Height < MinSize {
		return fmt.Errorf("field size %gx%g below minimum %g", f.Width, f.Height, MinSize)
	}
	if f.FontSize < MinFontSize || f.FontSize > MaxFontSize {
		return fmt.Errorf("font size %g out of range [%g, %g]", f.FontSize, MinFontSize, MaxFontSize)
	}
	if f.Choice != nil && !IsChoice(f.Type) {
		return fmt.Errorf("%w: choice options on %q", ErrPayloadMismatch, f.Type)
	}
	if f.Numeric != nil && f.Type != TypeNumeric {
		return fmt.Errorf("%w: numeric bounds on %q", ErrPayloadMismatch, f.Type)
	}
	if f.Mask != nil && !IsMasked(f.Type) {
		return fmt.Errorf("%w: mask on %q", ErrPayloadMismatch, f.Type)
	}
	return nil
}

// ValidateList checks every field and the uniqueness of ids within one
// template's scope.
func ValidateList(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		if err := fields[i].Validate(); err != nil {
			return fmt.Errorf("field %d (%s): %w", i, fields[i].Name, err)
		}
		if _, dup := seen[fields[i].ID]; dup {
			return fmt.Errorf("duplicate field id %q", fields[i].ID)
		}
		seen[fields[i].ID] = struct{}{}
	}
	return nil
}

// Clone deep-copies a field list, preserving order.
func Clone(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		c := Duplicate(f)
		c.ID = f.ID
		c.Name = f.Name
		c.X = f.X
		c.Y = f.Y
		out = append(out, c)
	}
	return out
}
