// Package mcp exposes template operations as Model Context Protocol tools
// over standard I/O, so agent clients can list, fill and generate documents.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/formseal/formseal/internal/builder"
	"github.com/formseal/formseal/internal/config"
	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/template"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *builder.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *builder.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	templateListTool := mcp.NewTool(
		"template_list",
		mcp.WithDescription("List saved PDF form templates, optionally filtered by a search query"),
		mcp.WithString("query",
			mcp.Description("Optional search query matched against name, description and document text"),
		),
	)
	s.mcpServer.AddTool(templateListTool, s.handleTemplateList)

	templateInfoTool := mcp.NewTool(
		"template_info",
		mcp.WithDescription("Show a template's metadata and its field layout, including which fields are required"),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("Template id as returned by template_list"),
		),
	)
	s.mcpServer.AddTool(templateInfoTool, s.handleTemplateInfo)

	templateDeleteTool := mcp.NewTool(
		"template_delete",
		mcp.WithDescription("Delete a template and its stored PDF"),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("Template id as returned by template_list"),
		),
	)
	s.mcpServer.AddTool(templateDeleteTool, s.handleTemplateDelete)

	pdfGenerateTool := mcp.NewTool(
		"pdf_generate",
		mcp.WithDescription("Fill a template with values and write the stamped PDF to a file"),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("Template id as returned by template_list"),
		),
		mcp.WithObject("values",
			mcp.Description("Field id to value map; booleans for checkboxes, strings otherwise"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("File path to write the generated PDF to"),
		),
	)
	s.mcpServer.AddTool(pdfGenerateTool, s.handlePDFGenerate)
}

// Handler functions
func (s *Server) handleTemplateList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.service.ListTemplates(ctx, builder.ListTemplatesRequest{Query: query})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.Count == 0 {
		if query != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No templates match query: %s", query)), nil
		}
		return mcp.NewToolResultText("No templates saved yet"), nil
	}

	return mcp.NewToolResultText(s.formatTemplateList(result)), nil
}

func (s *Server) handleTemplateInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.GetTemplate(ctx, builder.GetTemplateRequest{TemplateID: id})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatTemplateInfo(&result.Template)), nil
}

func (s *Server) handleTemplateDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.service.DeleteTemplate(ctx, builder.DeleteTemplateRequest{TemplateID: id}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted template %s", id)), nil
}

func (s *Server) handlePDFGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values := field.Values{}
	if raw, ok := request.GetArguments()["values"].(map[string]any); ok {
		for k, v := range raw {
			values[k] = v
		}
	}

	result, err := s.service.GeneratePDF(ctx, builder.GeneratePDFRequest{
		TemplateID: id,
		Values:     values,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := os.WriteFile(outputPath, result.PDF, 0o644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("writing %s: %v", outputPath, err)), nil
	}

	responseText := fmt.Sprintf("Generated PDF written to %s\n", outputPath)
	responseText += fmt.Sprintf("Size: %d bytes\n", len(result.PDF))
	responseText += fmt.Sprintf("Suggested name: %s", filepath.Base(result.FileName))

	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatTemplateList(result *builder.ListTemplatesResult) string {
	text := fmt.Sprintf("Found %d template(s)\n\n", result.Count)

	for i, t := range result.Templates {
		text += fmt.Sprintf("%d. %s\n", i+1, t.Name)
		text += fmt.Sprintf("   ID: %s\n", t.ID)
		if t.Description != "" {
			text += fmt.Sprintf("   Description: %s\n", t.Description)
		}
		text += fmt.Sprintf("   Source: %s (%d bytes)\n", t.PDFFileName, t.PDFFileSize)
		text += fmt.Sprintf("   Fields: %d\n", len(t.Fields))
		text += fmt.Sprintf("   Updated: %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
		if i < result.Count-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatTemplateInfo(t *template.Template) string {
	text := fmt.Sprintf("Template: %s\n", t.Name)
	text += fmt.Sprintf("ID: %s\n", t.ID)
	if t.Description != "" {
		text += fmt.Sprintf("Description: %s\n", t.Description)
	}
	text += fmt.Sprintf("Source PDF: %s (%d bytes)\n", t.PDFFileName, t.PDFFileSize)
	text += fmt.Sprintf("Page: %.0fx%.0f pt, %d page(s)\n", t.Page.Width, t.Page.Height, t.Page.Count)

	if len(t.Fields) == 0 {
		text += "\nNo fields placed yet"
		return text
	}

	text += fmt.Sprintf("\nFields (%d):\n", len(t.Fields))
	for i, f := range t.Fields {
		required := ""
		if f.Required {
			required = " (required)"
		}
		text += fmt.Sprintf("%d. %s [%s]%s\n", i+1, f.Name, f.Type, required)
		text += fmt.Sprintf("   ID: %s\n", f.ID)
		text += fmt.Sprintf("   Position: %.0f,%.0f  Size: %.0fx%.0f\n", f.X, f.Y, f.Width, f.Height)
		if f.Mask != nil && f.Mask.Pattern != "" {
			text += fmt.Sprintf("   Mask: %s\n", f.Mask.Pattern)
		}
		if f.Choice != nil && len(f.Choice.Options) > 0 {
			text += fmt.Sprintf("   Options: %s\n", strings.Join(f.Choice.Options, ", "))
		}
	}

	return text
}

// Run starts the MCP server over standard I/O
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting MCP server in stdio mode")
		log.Printf("Storage backend: %s", s.config.Storage)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
