package field

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Values is the transient fieldID -> value map of a fill session. Value kinds
// depend on the field type: string for text-like fields, bool for checkboxes,
// base64 image data for signature and image fields. It is never persisted as
// part of a template.
type Values map[string]any

var ErrRequiredMissing = errors.New("required field has no value")

// Empty reports whether a value counts as absent for stamping purposes.
// Checkboxes are the exception handled by the engine: false is still drawn.
func Empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	default:
		return false
	}
}

// Bool coerces checkbox values, accepting the JSON and string spellings the
// original clients send.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "on" || t == "1"
	default:
		return false
	}
}

// String renders a value the way the stamping engine draws it.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// MissingRequired returns the names of required fields without a value. This
// is the caller-side precondition for PDF generation; the stamping engine
// itself never rejects incomplete data.
func MissingRequired(fields []Field, values Values) []string {
	var missing []string
	for _, f := range fields {
		if f.Required && Empty(values[f.ID]) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// ValidateValue checks one value against its field's constraints: pattern and
// length for text, numeric range, option membership for choice types, mask
// completeness for masked types. Empty optional values always pass.
func ValidateValue(f Field, v any) error {
	if Empty(v) {
		if f.Required && f.Type != TypeCheckbox {
			return fmt.Errorf("%w: %s", ErrRequiredMissing, f.Name)
		}
		return nil
	}

	s := String(v)

	switch {
	case f.Type == TypeNumeric:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("field %s: %q is not a number", f.Name, s)
		}
		if f.Numeric != nil {
			if f.Numeric.Min != nil && n < *f.Numeric.Min {
				return fmt.Errorf("field %s: %g below minimum %g", f.Name, n, *f.Numeric.Min)
			}
			if f.Numeric.Max != nil && n > *f.Numeric.Max {
				return fmt.Errorf("field %s: %g above maximum %g", f.Name, n, *f.Numeric.Max)
			}
		}

	case IsChoice(f.Type):
		if f.Choice == nil || len(f.Choice.Options) == 0 {
			return nil
		}
		for _, opt := range f.Choice.Options {
			if s == opt {
				return nil
			}
		}
		return fmt.Errorf("field %s: %q is not one of the configured options", f.Name, s)

	case IsMasked(f.Type):
		if f.Mask != nil && !f.Mask.Complete(s) {
			return fmt.Errorf("field %s: value does not fill mask %q", f.Name, f.Mask.Pattern)
		}

	case f.Type == TypeText || f.Type == TypeTextarea:
		if f.Text == nil {
			return nil
		}
		if f.Text.MinLength > 0 && len(s) < f.Text.MinLength {
			return fmt.Errorf("field %s: shorter than %d characters", f.Name, f.Text.MinLength)
		}
		if f.Text.MaxLength > 0 && len(s) > f.Text.MaxLength {
			return fmt.Errorf("field %s: longer than %d characters", f.Name, f.Text.MaxLength)
		}
		if f.Text.Pattern != "" {
			re, err := regexp.Compile(f.Text.Pattern)
			if err != nil {
				return fmt.Errorf("field %s: invalid pattern: %w", f.Name, err)
			}
			if !re.MatchString(s) {
				return fmt.Errorf("field %s: value does not match pattern", f.Name)
			}
		}
	}

	return nil
}

// ValidateValues runs ValidateValue over a whole fill session.
func ValidateValues(fields []Field, values Values) error {
	for _, f := range fields {
		if err := ValidateValue(f, values[f.ID]); err != nil {
			return err
		}
	}
	return nil
}
