// Package template defines the persisted template record (a source PDF plus
// its field layout) and the interchangeable persistence adapters backing it:
// an in-memory map, a JSON-file store, and a SQLite store.
package template

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
)

var (
	ErrNotFound     = errors.New("template not found")
	ErrNameRequired = errors.New("template name cannot be empty")
	ErrNoPDF        = errors.New("template has no PDF data")
)

// Template is a saved PDF plus its field layout. Field order is insertion
// order and doubles as z-order and tab-order. A template exclusively owns its
// fields and its PDF bytes; deleting it cascades to both.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	PDFFileName string            `json:"pdfFileName"`
	PDFFileSize int64             `json:"pdfFileSize"`
	Page        geometry.PageDims `json:"page"`
	Snippet     string            `json:"snippet,omitempty"`
	Fields      []field.Field     `json:"fields"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Matches reports whether the template matches a free-text query against its
// name, description, and extracted text snippet.
func (t *Template) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.Snippet), q)
}

// Store is the persistence adapter contract. Backends are interchangeable;
// concurrent writers from separate sessions are last-write-wins.
type Store interface {
	// Create persists a new template and its PDF bytes, assigning the id and
	// timestamps on the passed record.
	Create(ctx context.Context, t *Template, pdf []byte) error
	// Get returns the template record (without PDF bytes).
	Get(ctx context.Context, id string) (*Template, error)
	// List returns metadata for templates matching the query, newest first.
	List(ctx context.Context, query string) ([]Template, error)
	// UpdateFields replaces the template's field list.
	UpdateFields(ctx context.Context, id string, fields []field.Field) (*Template, error)
	// Rename updates name and description.
	Rename(ctx context.Context, id, name, description string) (*Template, error)
	// Delete removes the template, cascading to its fields and PDF bytes.
	Delete(ctx context.Context, id string) error
	// PDF returns the stored source PDF bytes.
	PDF(ctx context.Context, id string) ([]byte, error)
	Close() error
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// byNewest sorts templates by UpdatedAt descending, in place.
func byNewest(ts []Template) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].UpdatedAt.After(ts[j].UpdatedAt)
	})
}
