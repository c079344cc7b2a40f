// Package pdfdoc inspects uploaded PDF documents: validation, page geometry,
// and a plain-text snippet used for template search.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/formseal/formseal/internal/geometry"
)

const pdfHeader = "%PDF-"

// SnippetLimit caps the extracted text snippet length in runes.
const SnippetLimit = 500

var (
	ErrNotPDF    = errors.New("data is not a PDF document")
	ErrEncrypted = errors.New("encrypted PDFs are not supported")
	ErrNoPages   = errors.New("PDF has no pages")
)

// Info describes an opened document.
type Info struct {
	Page    geometry.PageDims
	Version string
}

// Inspect validates the bytes as a PDF and returns its page geometry. The
// reported width and height are those of the first page; per-page dimensions
// stay available through PageDims for multi-page layouts.
func Inspect(data []byte) (*Info, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	if ctx.Encrypt != nil {
		return nil, ErrEncrypted
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return nil, ErrNoPages
	}

	return &Info{
		Page: geometry.PageDims{
			Width:  dims[0].Width,
			Height: dims[0].Height,
			Count:  ctx.PageCount,
		},
		Version: ctx.HeaderVersion.String(),
	}, nil
}

// PageDims returns the dimensions of every page in order.
func PageDims(data []byte) ([]geometry.PageDims, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}

	out := make([]geometry.PageDims, len(dims))
	for i, d := range dims {
		out[i] = geometry.PageDims{Width: d.Width, Height: d.Height, Count: ctx.PageCount}
	}
	return out, nil
}

func readContext(data []byte) (*model.Context, error) {
	if !bytes.HasPrefix(data, []byte(pdfHeader)) {
		return nil, ErrNotPDF
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("resolving page count: %w", err)
	}
	return ctx, nil
}

// Snippet extracts up to SnippetLimit runes of plain text from the first
// pages of the document. Extraction failures are not fatal; scanned or
// image-only documents simply yield an empty snippet.
func Snippet(data []byte) string {
	defer func() {
		// The text extractor panics on some malformed content streams.
		_ = recover()
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte(' ')
		if sb.Len() > SnippetLimit*4 {
			break
		}
	}
	return trimSnippet(sb.String())
}

func trimSnippet(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	runes := []rune(collapsed)
	if len(runes) <= SnippetLimit {
		return collapsed
	}
	cut := runes[:SnippetLimit]
	// Cut on a word boundary when one is close.
	for i := len(cut) - 1; i > SnippetLimit-40 && i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRight(string(cut), " ")
}
