package template

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
)

const exportVersion = 1

// ExportEnvelope is the interchange format for moving templates between
// installations. PDF bytes ride along base64-encoded.
type ExportEnvelope struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Templates  []ExportRecord `json:"templates"`
}

// ExportRecord is one template inside an envelope. Fields is a pointer so a
// record missing the key entirely can be told apart from an empty layout.
type ExportRecord struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	PDFFileName string            `json:"pdfFileName"`
	Page        geometry.PageDims `json:"page"`
	Snippet     string            `json:"snippet,omitempty"`
	Fields      *[]field.Field    `json:"fields"`
	PDFBase64   string            `json:"pdfBase64"`
}

// ImportResult reports how an import went. Skipped counts records that were
// malformed or incomplete; they never abort the records around them.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Export bundles the given templates (all of them when ids is empty) with
// their PDFs into an envelope.
func Export(ctx context.Context, store Store, ids []string) (*ExportEnvelope, error) {
	var templates []Template
	if len(ids) == 0 {
		all, err := store.List(ctx, "")
		if err != nil {
			return nil, err
		}
		templates = all
	} else {
		for _, id := range ids {
			t, err := store.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			templates = append(templates, *t)
		}
	}

	env := &ExportEnvelope{
		Version:    exportVersion,
		ExportedAt: now(),
	}
	for i := range templates {
		t := &templates[i]
		pdf, err := store.PDF(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("loading pdf for %s: %w", t.ID, err)
		}
		fields := field.Clone(t.Fields)
		env.Templates = append(env.Templates, ExportRecord{
			Name:        t.Name,
			Description: t.Description,
			PDFFileName: t.PDFFileName,
			Page:        t.Page,
			Snippet:     t.Snippet,
			Fields:      &fields,
			PDFBase64:   base64.StdEncoding.EncodeToString(pdf),
		})
	}
	return env, nil
}

// Import creates templates from an envelope. Each record is validated on its
// own; malformed records are skipped and counted, never aborting the rest.
// Imported templates get fresh ids, so importing the same envelope twice
// yields duplicates rather than overwrites.
func Import(ctx context.Context, store Store, data []byte) (*ImportResult, error) {
	var env ExportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing export envelope: %w", err)
	}
	if env.Version != exportVersion {
		return nil, fmt.Errorf("unsupported export version %d", env.Version)
	}

	res := &ImportResult{}
	for i, rec := range env.Templates {
		if err := importOne(ctx, store, rec); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("record %d (%s): %v", i, rec.Name, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

func importOne(ctx context.Context, store Store, rec ExportRecord) error {
	if rec.Name == "" {
		return ErrNameRequired
	}
	if rec.Fields == nil {
		return fmt.Errorf("missing fields list")
	}
	if err := field.ValidateList(*rec.Fields); err != nil {
		return err
	}
	pdf, err := base64.StdEncoding.DecodeString(rec.PDFBase64)
	if err != nil {
		return fmt.Errorf("decoding pdf: %w", err)
	}
	if len(pdf) == 0 {
		return ErrNoPDF
	}

	t := &Template{
		Name:        rec.Name,
		Description: rec.Description,
		PDFFileName: rec.PDFFileName,
		PDFFileSize: int64(len(pdf)),
		Page:        rec.Page,
		Snippet:     rec.Snippet,
		Fields:      field.Clone(*rec.Fields),
	}
	return store.Create(ctx, t, pdf)
}
