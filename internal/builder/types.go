package builder

import (
	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
	"github.com/formseal/formseal/internal/template"
)

// Request Types

// CreateTemplateRequest carries an uploaded PDF and its template metadata.
type CreateTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FileName    string `json:"fileName"`
	PDF         []byte `json:"-"`
}

// GetTemplateRequest asks for a single template by id.
type GetTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

// ListTemplatesRequest filters the template listing.
type ListTemplatesRequest struct {
	Query string `json:"query,omitempty"`
}

// SaveFieldsRequest replaces a template's field layout. Page carries the
// dimensions the client laid the fields out against.
type SaveFieldsRequest struct {
	TemplateID string            `json:"templateId"`
	Page       geometry.PageDims `json:"page"`
	Fields     []field.Field     `json:"fields"`
}

// RenameTemplateRequest updates template metadata.
type RenameTemplateRequest struct {
	TemplateID  string `json:"templateId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DeleteTemplateRequest removes a template and its PDF.
type DeleteTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

// GeneratePDFRequest fills a template with values.
type GeneratePDFRequest struct {
	TemplateID string       `json:"templateId"`
	Values     field.Values `json:"values"`
}

// ExportTemplatesRequest selects templates to export; empty means all.
type ExportTemplatesRequest struct {
	TemplateIDs []string `json:"templateIds,omitempty"`
}

// ImportTemplatesRequest carries a previously exported envelope.
type ImportTemplatesRequest struct {
	Data []byte `json:"-"`
}

// Response Types

// TemplateResult wraps a single template record.
type TemplateResult struct {
	Template template.Template `json:"template"`
}

// ListTemplatesResult is the filtered template listing, newest first.
type ListTemplatesResult struct {
	Templates []template.Template `json:"templates"`
	Count     int                 `json:"count"`
}

// GeneratePDFResult is the stamped document.
type GeneratePDFResult struct {
	PDF      []byte `json:"-"`
	FileName string `json:"fileName"`
}

// ImportTemplatesResult reports per-record import outcomes.
type ImportTemplatesResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
