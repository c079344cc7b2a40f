package field

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formseal/formseal/internal/geometry"
)

func TestNewDefaults(t *testing.T) {
	tests := []struct {
		typ     Type
		width   float64
		height  float64
		mask    string
		hasText bool
	}{
		{TypeText, 150, 30, "", true},
		{TypeTextarea, 200, 80, "", true},
		{TypeCheckbox, 20, 20, "", false},
		{TypeSignature, 200, 60, "", false},
		{TypeImage, 150, 100, "", false},
		{TypeCPF, 120, 30, "000.000.000-00", false},
		{TypeCNS, 140, 30, "000 0000 0000 0000", false},
		{TypePhone, 130, 30, "(00) 00000-0000", false},
		{TypeTime, 60, 30, "00:00", false},
		{TypeNumeric, 100, 30, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			f, err := New(tt.typ, geometry.Point{X: 50, Y: 60})
			require.NoError(t, err)

			assert.NotEmpty(t, f.ID)
			assert.Equal(t, tt.width, f.Width)
			assert.Equal(t, tt.height, f.Height)
			assert.Equal(t, 12.0, f.FontSize)
			assert.Equal(t, 50.0, f.X)
			assert.Equal(t, 60.0, f.Y)
			assert.False(t, f.Required)

			if tt.mask != "" {
				require.NotNil(t, f.Mask)
				assert.Equal(t, tt.mask, f.Mask.Pattern)
			} else {
				assert.Nil(t, f.Mask)
			}
			if tt.hasText {
				assert.NotNil(t, f.Text)
			}
			require.NoError(t, f.Validate())
		})
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(Type("hologram"), geometry.Point{})
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestNewClampsNegativePosition(t *testing.T) {
	f, err := New(TypeText, geometry.Point{X: -40, Y: -1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.X)
	assert.Equal(t, 0.0, f.Y)
}

// Rapid successive creates must never collide, so a timestamp-based scheme is
// not good enough.
func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		f, err := New(TypeText, geometry.Point{})
		require.NoError(t, err)
		_, dup := seen[f.ID]
		require.False(t, dup, "duplicate id %s", f.ID)
		seen[f.ID] = struct{}{}
	}
}

func TestApplyClamps(t *testing.T) {
	f, err := New(TypeText, geometry.Point{X: 100, Y: 100})
	require.NoError(t, err)

	w, h := -500.0, 3.0
	x, y := -10.0, -0.001
	size := 200.0
	require.NoError(t, f.Apply(Patch{Width: &w, Height: &h, X: &x, Y: &y, FontSize: &size}))

	assert.Equal(t, MinSize, f.Width)
	assert.Equal(t, MinSize, f.Height)
	assert.Equal(t, 0.0, f.X)
	assert.Equal(t, 0.0, f.Y)
	assert.Equal(t, MaxFontSize, f.FontSize)

	tiny := 1.0
	require.NoError(t, f.Apply(Patch{FontSize: &tiny}))
	assert.Equal(t, MinFontSize, f.FontSize)
}

func TestApplyRejectsForeignPayloads(t *testing.T) {
	f, err := New(TypeText, geometry.Point{})
	require.NoError(t, err)

	err = f.Apply(Patch{Choice: &ChoiceSpec{Options: []string{"a"}}})
	require.ErrorIs(t, err, ErrPayloadMismatch)

	err = f.Apply(Patch{Mask: &MaskSpec{Pattern: "00"}})
	require.ErrorIs(t, err, ErrPayloadMismatch)

	cb, err := New(TypeCheckbox, geometry.Point{})
	require.NoError(t, err)
	err = cb.Apply(Patch{Numeric: &NumericSpec{}})
	require.ErrorIs(t, err, ErrPayloadMismatch)
}

func TestDuplicate(t *testing.T) {
	f, err := New(TypeDropdown, geometry.Point{X: 50, Y: 50})
	require.NoError(t, err)
	f.Name = "city"
	f.Choice.Options = []string{"a", "b"}

	c := Duplicate(f)

	assert.NotEqual(t, f.ID, c.ID)
	assert.Equal(t, "city_copy", c.Name)
	assert.Equal(t, 70.0, c.X)
	assert.Equal(t, 70.0, c.Y)

	// The clone's payload is independent of the original's.
	c.Choice.Options[0] = "z"
	assert.Equal(t, "a", f.Choice.Options[0])
}

func TestValidateList(t *testing.T) {
	a, err := New(TypeText, geometry.Point{})
	require.NoError(t, err)
	b, err := New(TypeDate, geometry.Point{})
	require.NoError(t, err)

	require.NoError(t, ValidateList([]Field{a, b}))

	b.ID = a.ID
	err = ValidateList([]Field{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field id")
}

func TestJSONRoundTrip(t *testing.T) {
	f, err := New(TypeCPF, geometry.Point{X: 12.5, Y: 7.25})
	require.NoError(t, err)
	f.Required = true
	f.Placeholder = "000.000.000-00"

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var back Field
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f, back)
}

func TestMaskFormat(t *testing.T) {
	tests := []struct {
		pattern string
		raw     string
		want    string
	}{
		{"000.000.000-00", "12345678901", "123.456.789-01"},
		{"000.000.000-00", "123", "123"},
		{"(00) 00000-0000", "11987654321", "(11) 98765-4321"},
		{"00:00", "0930", "09:30"},
		{"00:00", "09307", "09:30"},
		{"", "a1b2", "12"},
	}

	for _, tt := range tests {
		m := MaskSpec{Pattern: tt.pattern}
		assert.Equal(t, tt.want, m.Format(tt.raw), "pattern %q raw %q", tt.pattern, tt.raw)
	}

	m := MaskSpec{Pattern: "000.000.000-00"}
	assert.True(t, m.Complete("12345678901"))
	assert.False(t, m.Complete("1234567890"))
	assert.Equal(t, 11, m.DigitCount())
}

func TestMissingRequired(t *testing.T) {
	a, _ := New(TypeText, geometry.Point{})
	a.Name = "name"
	a.Required = true
	b, _ := New(TypeText, geometry.Point{})
	b.Name = "email"
	b.Required = true
	c, _ := New(TypeText, geometry.Point{})
	c.Name = "notes"

	values := Values{a.ID: "Maria", c.ID: ""}
	missing := MissingRequired([]Field{a, b, c}, values)
	assert.Equal(t, []string{"email"}, missing)

	values[b.ID] = "m@example.com"
	assert.Empty(t, MissingRequired([]Field{a, b, c}, values))
}

func TestValidateValue(t *testing.T) {
	minV, maxV := 1.0, 10.0
	num, _ := New(TypeNumeric, geometry.Point{})
	num.Name = "qty"
	num.Numeric = &NumericSpec{Min: &minV, Max: &maxV}

	require.NoError(t, ValidateValue(num, "5"))
	require.Error(t, ValidateValue(num, "0"))
	require.Error(t, ValidateValue(num, "11"))
	require.Error(t, ValidateValue(num, "five"))

	drop, _ := New(TypeDropdown, geometry.Point{})
	drop.Name = "uf"
	drop.Choice = &ChoiceSpec{Options: []string{"SP", "RJ"}}
	require.NoError(t, ValidateValue(drop, "SP"))
	require.Error(t, ValidateValue(drop, "MG"))

	cpf, _ := New(TypeCPF, geometry.Point{})
	cpf.Name = "cpf"
	require.NoError(t, ValidateValue(cpf, "123.456.789-01"))
	require.Error(t, ValidateValue(cpf, "123.456"))

	txt, _ := New(TypeText, geometry.Point{})
	txt.Name = "code"
	txt.Text = &TextSpec{Pattern: `^[A-Z]{3}$`, MinLength: 3, MaxLength: 3}
	require.NoError(t, ValidateValue(txt, "ABC"))
	require.Error(t, ValidateValue(txt, "abc"))
	require.Error(t, ValidateValue(txt, "ABCD"))

	// Empty optional values always pass; empty required ones do not.
	require.NoError(t, ValidateValue(txt, ""))
	txt.Required = true
	require.ErrorIs(t, ValidateValue(txt, ""), ErrRequiredMissing)
}
