// Package builder is the service layer tying storage, document inspection,
// and the stamping engine together. All transports (HTTP, MCP) go through it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
	"github.com/formseal/formseal/internal/pdfdoc"
	"github.com/formseal/formseal/internal/stamp"
	"github.com/formseal/formseal/internal/template"
)

var (
	ErrPDFTooLarge   = errors.New("PDF exceeds the maximum file size")
	ErrNoFields      = errors.New("template needs at least one field")
	ErrInvalidValues = errors.New("fill values failed validation")
)

// MissingValuesError lists required fields a fill session left empty.
type MissingValuesError struct {
	Fields []string
}

func (e *MissingValuesError) Error() string {
	return fmt.Sprintf("missing values for required fields: %s", strings.Join(e.Fields, ", "))
}

// Service orchestrates template and generation operations.
type Service struct {
	store       template.Store
	engine      *stamp.Engine
	maxFileSize int64
	logger      *log.Logger
}

// NewService wires a service over the given store. maxFileSize caps uploaded
// PDFs in bytes; zero means no cap.
func NewService(store template.Store, maxFileSize int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:       store,
		engine:      stamp.NewEngine(logger),
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// CreateTemplate validates the uploaded PDF, captures its page geometry and a
// text snippet, and persists the new template with an empty field layout.
func (s *Service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*TemplateResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, template.ErrNameRequired
	}
	if s.maxFileSize > 0 && int64(len(req.PDF)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrPDFTooLarge, len(req.PDF), s.maxFileSize)
	}

	info, err := pdfdoc.Inspect(req.PDF)
	if err != nil {
		return nil, fmt.Errorf("invalid upload: %w", err)
	}

	t := &template.Template{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PDFFileName: req.FileName,
		PDFFileSize: int64(len(req.PDF)),
		Page:        info.Page,
		Snippet:     pdfdoc.Snippet(req.PDF),
	}
	if err := s.store.Create(ctx, t, req.PDF); err != nil {
		return nil, err
	}

	s.logger.Printf("created template %s (%s, %d pages)", t.ID, t.Name, t.Page.Count)
	return &TemplateResult{Template: *t}, nil
}

func (s *Service) GetTemplate(ctx context.Context, req GetTemplateRequest) (*TemplateResult, error) {
	t, err := s.store.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	return &TemplateResult{Template: *t}, nil
}

func (s *Service) ListTemplates(ctx context.Context, req ListTemplatesRequest) (*ListTemplatesResult, error) {
	ts, err := s.store.List(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		ts = []template.Template{}
	}
	return &ListTemplatesResult{Templates: ts, Count: len(ts)}, nil
}

// SaveTemplateFields replaces a template's field layout. The layout must
// contain at least one field, carry unique ids, and have been positioned
// against the same page geometry the template was created with.
func (s *Service) SaveTemplateFields(ctx context.Context, req SaveFieldsRequest) (*TemplateResult, error) {
	if len(req.Fields) == 0 {
		return nil, ErrNoFields
	}

	t, err := s.store.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := geometry.CheckPageDims(t.Page, req.Page); err != nil {
		return nil, err
	}

	fields := field.Clone(req.Fields)
	for i := range fields {
		clampGeometry(&fields[i])
	}
	if err := field.ValidateList(fields); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateFields(ctx, req.TemplateID, fields)
	if err != nil {
		return nil, err
	}
	return &TemplateResult{Template: *updated}, nil
}

func (s *Service) RenameTemplate(ctx context.Context, req RenameTemplateRequest) (*TemplateResult, error) {
	t, err := s.store.Rename(ctx, req.TemplateID, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return nil, err
	}
	return &TemplateResult{Template: *t}, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, req DeleteTemplateRequest) error {
	if err := s.store.Delete(ctx, req.TemplateID); err != nil {
		return err
	}
	s.logger.Printf("deleted template %s", req.TemplateID)
	return nil
}

// GetTemplatePDF returns the stored source document for a template.
func (s *Service) GetTemplatePDF(ctx context.Context, req GetTemplateRequest) (*GeneratePDFResult, error) {
	t, err := s.store.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	pdf, err := s.store.PDF(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	name := t.PDFFileName
	if name == "" {
		name = t.Name + ".pdf"
	}
	return &GeneratePDFResult{PDF: pdf, FileName: name}, nil
}

// GeneratePDF fills a template with the given values and returns the stamped
// document. Required fields must all have values; the stored PDF must still
// match the page geometry the layout was built against.
func (s *Service) GeneratePDF(ctx context.Context, req GeneratePDFRequest) (*GeneratePDFResult, error) {
	t, err := s.store.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	if missing := field.MissingRequired(t.Fields, req.Values); len(missing) > 0 {
		return nil, &MissingValuesError{Fields: missing}
	}
	if err := field.ValidateValues(t.Fields, req.Values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValues, err)
	}

	pdf, err := s.store.PDF(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	info, err := pdfdoc.Inspect(pdf)
	if err != nil {
		return nil, fmt.Errorf("stored PDF unreadable: %w", err)
	}
	if err := geometry.CheckPageDims(t.Page, info.Page); err != nil {
		return nil, err
	}

	out, err := s.engine.Generate(ctx, pdf, t.Fields, req.Values)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(t.PDFFileName, ".pdf")
	if name == "" {
		name = t.Name
	}
	return &GeneratePDFResult{PDF: out, FileName: name + "_filled.pdf"}, nil
}

func (s *Service) ExportTemplates(ctx context.Context, req ExportTemplatesRequest) (*template.ExportEnvelope, error) {
	return template.Export(ctx, s.store, req.TemplateIDs)
}

func (s *Service) ImportTemplates(ctx context.Context, req ImportTemplatesRequest) (*ImportTemplatesResult, error) {
	res, err := template.Import(ctx, s.store, req.Data)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("imported %d templates, skipped %d", res.Imported, res.Skipped)
	return &ImportTemplatesResult{Imported: res.Imported, Skipped: res.Skipped, Errors: res.Errors}, nil
}

// clampGeometry forces a field back into the valid range instead of
// rejecting it; client rounding can push values slightly out of bounds.
func clampGeometry(f *field.Field) {
	if f.X < 0 {
		f.X = 0
	}
	if f.Y < 0 {
		f.Y = 0
	}
	if f.Width < field.MinSize {
		f.Width = field.MinSize
	}
	if f.Height < field.MinSize {
		f.Height = field.MinSize
	}
	if f.FontSize < field.MinFontSize {
		f.FontSize = field.MinFontSize
	}
	if f.FontSize > field.MaxFontSize {
		f.FontSize = field.MaxFontSize
	}
}
