package template

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/formseal/formseal/internal/field"
)

const (
	fileStoreDirPerm  = 0o750
	fileStoreFilePerm = 0o644
)

// FileStore persists each template as a metadata JSON file plus a sidecar
// .pdf file holding the source document, both named by the template id.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the storage directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, fileStoreDirPerm); err != nil {
		return nil, fmt.Errorf("creating template directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }
func (s *FileStore) pdfPath(id string) string  { return filepath.Join(s.dir, id+".pdf") }

func (s *FileStore) Create(_ context.Context, t *Template, pdf []byte) error {
	if t.Name == "" {
		return ErrNameRequired
	}
	if len(pdf) == 0 {
		return ErrNoPDF
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	if t.Fields == nil {
		t.Fields = []field.Field{}
	}

	if err := os.WriteFile(s.pdfPath(t.ID), pdf, fileStoreFilePerm); err != nil {
		return fmt.Errorf("writing pdf for template %s: %w", t.ID, err)
	}
	if err := s.writeMeta(t); err != nil {
		// Do not leave an orphaned PDF behind a failed metadata write.
		_ = os.Remove(s.pdfPath(t.ID))
		return err
	}
	return nil
}

func (s *FileStore) writeMeta(t *Template) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling template %s: %w", t.ID, err)
	}
	if err := os.WriteFile(s.metaPath(t.ID), data, fileStoreFilePerm); err != nil {
		return fmt.Errorf("writing template file %s: %w", s.metaPath(t.ID), err)
	}
	return nil
}

func (s *FileStore) readMeta(id string) (*Template, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading template file %s: %w", s.metaPath(id), err)
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshaling template %s: %w", id, err)
	}
	return &t, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMeta(id)
}

func (s *FileStore) List(_ context.Context, query string) ([]Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory %s: %w", s.dir, err)
	}

	var out []Template
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		t, err := s.readMeta(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// A single corrupt record must not break the whole listing.
			continue
		}
		if t.Matches(query) {
			out = append(out, *t)
		}
	}
	byNewest(out)
	return out, nil
}

func (s *FileStore) UpdateFields(_ context.Context, id string, fields []field.Field) (*Template, error) {
	if err := field.ValidateList(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	t.Fields = field.Clone(fields)
	t.UpdatedAt = now()
	if err := s.writeMeta(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *FileStore) Rename(_ context.Context, id, name, description string) (*Template, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.Description = description
	t.UpdatedAt = now()
	if err := s.writeMeta(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.metaPath(id)); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		return fmt.Errorf("deleting template file: %w", err)
	}
	if err := os.Remove(s.pdfPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting template pdf: %w", err)
	}
	return nil
}

func (s *FileStore) PDF(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pdfPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading pdf for template %s: %w", id, err)
	}
	return data, nil
}

func (s *FileStore) Close() error { return nil }
