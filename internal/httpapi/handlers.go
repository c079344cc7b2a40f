package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/formseal/formseal/internal/builder"
	"github.com/formseal/formseal/internal/geometry"
	"github.com/formseal/formseal/internal/pdfdoc"
	"github.com/formseal/formseal/internal/template"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("writing response: %v", err)
	}
}

// writeError maps service errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		integrity *geometry.IntegrityError
		missing   *builder.MissingValuesError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, template.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, builder.ErrPDFTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, template.ErrNameRequired),
		errors.Is(err, template.ErrNoPDF),
		errors.Is(err, builder.ErrNoFields),
		errors.Is(err, builder.ErrInvalidValues),
		errors.Is(err, pdfdoc.ErrNotPDF),
		errors.Is(err, pdfdoc.ErrEncrypted),
		errors.As(err, &integrity),
		errors.As(err, &missing):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createTemplateHandler(w http.ResponseWriter, r *http.Request) {
	if s.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxFileSize+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected multipart form upload"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing PDF file field"})
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, fmt.Errorf("reading upload: %w", err))
		return
	}

	res, err := s.service.CreateTemplate(r.Context(), builder.CreateTemplateRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		FileName:    header.Filename,
		PDF:         pdf,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ListTemplates(r.Context(), builder.ListTemplatesRequest{
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) getTemplateHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.GetTemplate(r.Context(), builder.GetTemplateRequest{
		TemplateID: chi.URLParam(r, "templateID"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) renameTemplateHandler(w http.ResponseWriter, r *http.Request) {
	var req builder.RenameTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	req.TemplateID = chi.URLParam(r, "templateID")

	res, err := s.service.RenameTemplate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) deleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteTemplate(r.Context(), builder.DeleteTemplateRequest{
		TemplateID: chi.URLParam(r, "templateID"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveFieldsHandler(w http.ResponseWriter, r *http.Request) {
	var req builder.SaveFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	req.TemplateID = chi.URLParam(r, "templateID")

	res, err := s.service.SaveTemplateFields(r.Context(), req)
	if err != nil {
		// Everything the service rejects here beyond a missing template is a
		// bad layout: empty, duplicate ids, invalid geometry, wrong page dims.
		if errors.Is(err, template.ErrNotFound) {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) templatePDFHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.GetTemplatePDF(r.Context(), builder.GetTemplateRequest{
		TemplateID: chi.URLParam(r, "templateID"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writePDF(w, res.FileName, res.PDF)
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req builder.GeneratePDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	res, err := s.service.GeneratePDF(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writePDF(w, res.FileName, res.PDF)
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		ids = strings.Split(raw, ",")
	}

	env, err := s.service.ExportTemplates(r.Context(), builder.ExportTemplatesRequest{TemplateIDs: ids})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="templates_export.json"`)
	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) importHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, fmt.Errorf("reading import body: %w", err))
		return
	}

	res, err := s.service.ImportTemplates(r.Context(), builder.ImportTemplatesRequest{Data: data})
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
