package mcp

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/formseal/formseal/internal/builder"
	"github.com/formseal/formseal/internal/config"
	"github.com/formseal/formseal/internal/field"
	"github.com/formseal/formseal/internal/geometry"
	"github.com/formseal/formseal/internal/pdftest"
	"github.com/formseal/formseal/internal/template"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:        "stdio",
		Host:        "127.0.0.1",
		Port:        8080,
		Storage:     "memory",
		Version:     "1.0.0",
		ServerName:  "test-server",
		LogLevel:    "info",
		MaxFileSize: 1024 * 1024,
	}
}

func testService() *builder.Service {
	return builder.NewService(template.NewMemStore(), 0, log.New(io.Discard, "", 0))
}

func newTestServer(t *testing.T) (*Server, *builder.Service) {
	t.Helper()

	service := testService()
	srv, err := NewServer(testConfig(), service)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, service
}

func seedTemplate(t *testing.T, service *builder.Service, withField bool) template.Template {
	t.Helper()

	res, err := service.CreateTemplate(context.Background(), builder.CreateTemplateRequest{
		Name:     "visit summary",
		FileName: "visit.pdf",
		PDF:      pdftest.PDF(),
	})
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	tpl := res.Template

	if withField {
		f, err := field.New(field.TypeText, geometry.Point{X: 100, Y: 100})
		if err != nil {
			t.Fatalf("failed to create field: %v", err)
		}
		f.Name = "patient"
		saved, err := service.SaveTemplateFields(context.Background(), builder.SaveFieldsRequest{
			TemplateID: tpl.ID,
			Page:       tpl.Page,
			Fields:     []field.Field{f},
		})
		if err != nil {
			t.Fatalf("failed to save fields: %v", err)
		}
		tpl = saved.Template
	}
	return tpl
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(testConfig(), testService())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv == nil {
		t.Fatal("server should not be nil")
	}
	if srv.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}
}

func TestNewServer_NilService(t *testing.T) {
	if _, err := NewServer(testConfig(), nil); err == nil {
		t.Error("expected error for nil service")
	}
}

func TestServer_HandleTemplateList(t *testing.T) {
	srv, service := newTestServer(t)

	result, err := srv.handleTemplateList(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(extractTextFromResult(result), "No templates saved yet") {
		t.Errorf("expected empty listing, got: %s", extractTextFromResult(result))
	}

	tpl := seedTemplate(t, service, false)

	result, err = srv.handleTemplateList(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := extractTextFromResult(result)
	if !strings.Contains(text, "visit summary") || !strings.Contains(text, tpl.ID) {
		t.Errorf("listing missing template details, got: %s", text)
	}

	result, err = srv.handleTemplateList(context.Background(), callRequest(map[string]any{"query": "zzz"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(extractTextFromResult(result), "No templates match query") {
		t.Errorf("expected no matches, got: %s", extractTextFromResult(result))
	}
}

func TestServer_HandleTemplateInfo(t *testing.T) {
	srv, service := newTestServer(t)
	tpl := seedTemplate(t, service, true)

	result, err := srv.handleTemplateInfo(context.Background(), callRequest(map[string]any{
		"template_id": tpl.ID,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, want := range []string{"visit summary", "612x792", "patient", "[text]"} {
		if !strings.Contains(text, want) {
			t.Errorf("info missing %q, got: %s", want, text)
		}
	}
}

func TestServer_HandleTemplateInfo_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleTemplateInfo(context.Background(), callRequest(map[string]any{
		"template_id": "missing",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for unknown template")
	}
}

func TestServer_HandleTemplateDelete(t *testing.T) {
	srv, service := newTestServer(t)
	tpl := seedTemplate(t, service, false)

	result, err := srv.handleTemplateDelete(context.Background(), callRequest(map[string]any{
		"template_id": tpl.ID,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(extractTextFromResult(result), "Deleted template") {
		t.Errorf("unexpected delete response: %s", extractTextFromResult(result))
	}

	if _, err := service.GetTemplate(context.Background(), builder.GetTemplateRequest{TemplateID: tpl.ID}); err == nil {
		t.Error("template should be gone after delete")
	}
}

func TestServer_HandlePDFGenerate(t *testing.T) {
	srv, service := newTestServer(t)
	tpl := seedTemplate(t, service, true)
	outputPath := filepath.Join(t.TempDir(), "out.pdf")

	result, err := srv.handlePDFGenerate(context.Background(), callRequest(map[string]any{
		"template_id": tpl.ID,
		"output_path": outputPath,
		"values": map[string]any{
			tpl.Fields[0].ID: "Jane Roe",
		},
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", extractTextFromResult(result))
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Error("output file is not a PDF")
	}
}

func TestServer_HandlePDFGenerate_MissingRequired(t *testing.T) {
	srv, service := newTestServer(t)

	tpl := seedTemplate(t, service, false)
	f, err := field.New(field.TypeText, geometry.Point{})
	if err != nil {
		t.Fatalf("failed to create field: %v", err)
	}
	f.Required = true
	if _, err := service.SaveTemplateFields(context.Background(), builder.SaveFieldsRequest{
		TemplateID: tpl.ID,
		Page:       tpl.Page,
		Fields:     []field.Field{f},
	}); err != nil {
		t.Fatalf("failed to save fields: %v", err)
	}

	result, err := srv.handlePDFGenerate(context.Background(), callRequest(map[string]any{
		"template_id": tpl.ID,
		"output_path": filepath.Join(t.TempDir(), "out.pdf"),
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing required values")
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleTemplateInfo(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing template_id")
	}

	result, err = srv.handlePDFGenerate(context.Background(), callRequest(map[string]any{
		"template_id": "x",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing output_path")
	}
}

// Helper function to extract text content from a tool result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
