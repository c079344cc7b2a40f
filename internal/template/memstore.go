package template

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/formseal/formseal/internal/field"
)

// MemStore keeps templates and PDF bytes in process memory. Useful for tests
// and single-shot runs; nothing survives a restart.
type MemStore struct {
	mu        sync.RWMutex
	templates map[string]*Template
	pdfs      map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		templates: make(map[string]*Template),
		pdfs:      make(map[string][]byte),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) Create(_ context.Context, t *Template, pdf []byte) error {
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

	clone := *t
	clone.Fields = field.Clone(t.Fields)
	s.templates[t.ID] = &clone
	s.pdfs[t.ID] = append([]byte(nil), pdf...)
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	clone := *t
	clone.Fields = field.Clone(t.Fields)
	return &clone, nil
}

func (s *MemStore) List(_ context.Context, query string) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Template, 0, len(s.templates))
	for _, t := range s.templates {
		if !t.Matches(query) {
			continue
		}
		clone := *t
		clone.Fields = field.Clone(t.Fields)
		out = append(out, clone)
	}
	byNewest(out)
	return out, nil
}

func (s *MemStore) UpdateFields(_ context.Context, id string, fields []field.Field) (*Template, error) {
	if err := field.ValidateList(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.Fields = field.Clone(fields)
	t.UpdatedAt = now()

	clone := *t
	clone.Fields = field.Clone(t.Fields)
	return &clone, nil
}

func (s *MemStore) Rename(_ context.Context, id, name, description string) (*Template, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.Name = name
	t.Description = description
	t.UpdatedAt = now()

	clone := *t
	clone.Fields = field.Clone(t.Fields)
	return &clone, nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.templates, id)
	delete(s.pdfs, id)
	return nil
}

func (s *MemStore) PDF(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pdf, ok := s.pdfs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return append([]byte(nil), pdf...), nil
}

func (s *MemStore) Close() error { return nil }
