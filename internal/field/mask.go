package field

import "strings"

// Format renders a raw digit string through the mask pattern. '0' slots
// consume one digit, every other rune is copied literally. Formatting stops
// when the digits run out; surplus digits are dropped. Masks are a display and
// input-validation concern only, stamping always draws the literal value.
func (m MaskSpec) Format(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if m.Pattern == "" {
		return digits
	}

	var b strings.Builder
	i := 0
	for _, slot := range m.Pattern {
		if slot == '0' {
			if i >= len(digits) {
				break
			}
			b.WriteByte(digits[i])
			i++
			continue
		}
		if i >= len(digits) {
			break
		}
		b.WriteRune(slot)
	}
	return b.String()
}

// DigitCount returns how many digit slots the mask has.
func (m MaskSpec) DigitCount() int {
	return strings.Count(m.Pattern, "0")
}

// Complete reports whether the raw value fills every digit slot of the mask.
func (m MaskSpec) Complete(raw string) bool {
	return len(m.Format(raw)) == len(m.Pattern)
}
