// Package pdftest builds small valid PDF documents for tests, with exact
// cross-reference offsets so strict and relaxed parsers both accept them.
package pdftest

import (
	"bytes"
	"fmt"
)

// Option adjusts the generated document.
type Option func(*spec)

type spec struct {
	width  float64
	height float64
	pages  int
	text   string
}

// WithSize sets the page media box in points.
func WithSize(width, height float64) Option {
	return func(s *spec) { s.width, s.height = width, height }
}

// WithPages sets the page count.
func WithPages(n int) Option {
	return func(s *spec) { s.pages = n }
}

// WithText places a line of text near the top of each page.
func WithText(text string) Option {
	return func(s *spec) { s.text = text }
}

// PDF returns a complete single-font PDF document. Defaults to one US Letter
// page with no text.
func PDF(opts ...Option) []byte {
	s := spec{width: 612, height: 792, pages: 1}
	for _, opt := range opts {
		opt(&s)
	}

	var content string
	if s.text != "" {
		content = fmt.Sprintf("BT /F1 12 Tf 72 %.0f Td (%s) Tj ET", s.height-72, escape(s.text))
	}

	// Object numbering: 1 catalog, 2 pages, 3 font, then one page object and
	// one content stream per page.
	kids := ""
	for i := 0; i < s.pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, s.pages),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i := 0; i < s.pages; i++ {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				s.width, s.height, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return buf.Bytes()
}

func escape(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
