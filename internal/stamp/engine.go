// Package stamp flattens field values onto a source PDF. The engine first
// computes a plan of draw operations in PDF point space, then applies the
// whole plan as one pdfcpu watermark pass over the first page.
package stamp

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
	"github.com/formseal/formseal/internal/pdfdoc"
)

const stampFont = "Helvetica"

type opKind int

const (
	opText opKind = iota
	opImage
)

// op is one draw operation. Coordinates are PDF points with a bottom-left
// origin, already converted from the field's top-left template space.
type op struct {
	fieldID  string
	kind     opKind
	text     string
	fontSize float64
	img      []byte
	scale    float64
	x, y     float64
}

// Engine stamps values onto PDFs. The zero value is not usable; construct
// with NewEngine.
type Engine struct {
	logger *log.Logger
}

func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{logger: logger}
}

// ErrNothingRendered means every planned draw operation failed to build. A
// fill session with drawable values must never silently produce an unstamped
// document.
var ErrNothingRendered = errors.New("no field value could be rendered")

// Generate draws the given values onto the first page of the source PDF and
// returns the resulting document. Invalid per-field data (a bad image, say)
// is logged and skipped; an unparseable source PDF or a plan where nothing
// at all could be drawn is fatal.
func (e *Engine) Generate(ctx context.Context, pdfBytes []byte, fields []field.Field, values field.Values) ([]byte, error) {
	info, err := pdfdoc.Inspect(pdfBytes)
	if err != nil {
		return nil, err
	}

	ops := e.plan(fields, values, info.Page)
	if len(ops) == 0 {
		return append([]byte(nil), pdfBytes...), nil
	}
	return e.applyOps(ctx, pdfBytes, ops)
}

// applyOps builds the watermarks for a non-empty plan and stamps them onto
// the first page in one pass.
func (e *Engine) applyOps(ctx context.Context, pdfBytes []byte, ops []op) ([]byte, error) {
	wms := make([]*model.Watermark, 0, len(ops))
	for _, o := range ops {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		wm, err := o.watermark()
		if err != nil {
			e.logger.Printf("skipping field %s: %v", o.fieldID, err)
			continue
		}
		wms = append(wms, wm)
	}
	if len(wms) == 0 {
		return nil, ErrNothingRendered
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(pdfBytes), &out, map[int][]*model.Watermark{1: wms}, conf); err != nil {
		return nil, fmt.Errorf("stamping PDF: %w", err)
	}
	return out.Bytes(), nil
}

// plan computes the draw operations for a fill session. It is a pure
// function of its inputs and never touches the PDF.
func (e *Engine) plan(fields []field.Field, values field.Values, page geometry.PageDims) []op {
	var ops []op
	for _, f := range fields {
		v := values[f.ID]

		if f.Type == field.TypeCheckbox {
			ops = append(ops, e.checkboxOp(f, field.Bool(v), page))
			continue
		}
		if field.Empty(v) {
			continue
		}

		if field.IsImage(f.Type) {
			o, err := e.imageOp(f, field.String(v), page)
			if err != nil {
				e.logger.Printf("skipping field %s (%s): %v", f.Name, f.ID, err)
				continue
			}
			ops = append(ops, o)
			continue
		}

		ops = append(ops, e.textOps(f, field.String(v), page)...)
	}
	return ops
}

// textOps positions a value inside its field box. Single-line values are
// vertically centered; textarea values split on newlines and stack downward
// from the top of the box, one font size per line.
func (e *Engine) textOps(f field.Field, value string, page geometry.PageDims) []op {
	size := f.FontSize
	if size <= 0 {
		size = 12
	}

	if f.Type != field.TypeTextarea {
		top := f.Y + f.Height/2 - size/2
		return []op{{
			fieldID:  f.ID,
			kind:     opText,
			text:     value,
			fontSize: size,
			x:        f.X,
			y:        page.Height - top - size,
		}}
	}

	lines := strings.Split(value, "\n")
	ops := make([]op, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		ops = append(ops, op{
			fieldID:  f.ID,
			kind:     opText,
			text:     line,
			fontSize: size,
			x:        f.X,
			y:        page.Height - f.Y - size - float64(i)*size,
		})
	}
	return ops
}

// checkboxOp draws the box glyph centered in the field at a fixed size.
func (e *Engine) checkboxOp(f field.Field, checked bool, page geometry.PageDims) op {
	img := uncheckedGlyph
	if checked {
		img = checkedGlyph
	}
	x := f.X + (f.Width-GlyphSize)/2
	top := f.Y + (f.Height-GlyphSize)/2
	return op{
		fieldID: f.ID,
		kind:    opImage,
		img:     img,
		scale:   float64(GlyphSize) / glyphPixels,
		x:       x,
		y:       page.Height - top - GlyphSize,
	}
}

// imageOp decodes a base64 image value (a data URL prefix is tolerated) and
// aspect-fits it into the field box, centered.
func (e *Engine) imageOp(f field.Field, value string, page geometry.PageDims) (op, error) {
	raw, err := decodeImageValue(value)
	if err != nil {
		return op{}, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return op{}, fmt.Errorf("decoding image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return op{}, fmt.Errorf("unsupported image format %q", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return op{}, fmt.Errorf("image has no pixels")
	}

	scale := f.Width / float64(cfg.Width)
	if hs := f.Height / float64(cfg.Height); hs < scale {
		scale = hs
	}
	w := float64(cfg.Width) * scale
	h := float64(cfg.Height) * scale

	x := f.X + (f.Width-w)/2
	top := f.Y + (f.Height-h)/2
	return op{
		fieldID: f.ID,
		kind:    opImage,
		img:     raw,
		scale:   scale,
		x:       x,
		y:       page.Height - top - h,
	}, nil
}

func decodeImageValue(value string) ([]byte, error) {
	if i := strings.Index(value, ";base64,"); strings.HasPrefix(value, "data:") && i >= 0 {
		value = value[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return raw, nil
}

func (o op) watermark() (*model.Watermark, error) {
	switch o.kind {
	case opText:
		desc := fmt.Sprintf("fontname:%s, points:%g, pos:bl, off:%.2f %.2f, scale:1 abs, rot:0, fillc:#000000",
			stampFont, o.fontSize, o.x, o.y)
		return api.TextWatermark(o.text, desc, true, false, types.POINTS)
	case opImage:
		desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:%.4f abs, rot:0", o.x, o.y, o.scale)
		return api.ImageWatermarkForReader(bytes.NewReader(o.img), desc, true, false, types.POINTS)
	default:
		return nil, fmt.Errorf("unknown op kind %d", o.kind)
	}
}
