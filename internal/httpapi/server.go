// Package httpapi exposes the template and generation operations over a JSON
// HTTP API.
package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/formseal/formseal/internal/builder"
)

// Server wires the service layer into an HTTP handler.
type Server struct {
	service     *builder.Service
	logger      *log.Logger
	maxFileSize int64
}

// NewServer creates an HTTP API server over the given service. maxFileSize
// caps multipart uploads in bytes; zero means no cap.
func NewServer(service *builder.Service, maxFileSize int64, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{service: service, logger: logger, maxFileSize: maxFileSize}
}

// Routes sets up the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/templates", s.createTemplateHandler)
		r.Get("/templates", s.listTemplatesHandler)
		r.Get("/templates/{templateID}", s.getTemplateHandler)
		r.Patch("/templates/{templateID}", s.renameTemplateHandler)
		r.Delete("/templates/{templateID}", s.deleteTemplateHandler)
		r.Put("/templates/{templateID}/fields", s.saveFieldsHandler)
		r.Get("/templates/{templateID}/pdf", s.templatePDFHandler)

		r.Post("/generate", s.generateHandler)

		r.Get("/export", s.exportHandler)
		r.Post("/import", s.importHandler)
	})

	return r
}
