package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/mcp-pdf-fetcher/internal/config"
	"github.com/a3tai/mcp-pdf-fetcher/internal/contract"
	"github.com/a3tai/mcp-pdf-fetcher/internal/export"
	"github.com/a3tai/mcp-pdf-fetcher/internal/fetch"
	"github.com/a3tai/mcp-pdf-fetcher/internal/fetch/fetchtest"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf"
	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf/pdftest"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pipeline"
)

const (
	driveURL   = "https://drive.google.com/file/d/abc123/view?usp=sharing"
	dropboxURL = "https://www.dropbox.com/s/xyz/contract.pdf?dl=0"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ServerName = "test-server"
	cfg.Version = "1.0.0"
	return cfg
}

func contractPDF() []byte {
	return pdftest.Build(
		pdftest.TextPage(
			"REAL ESTATE PURCHASE AND SALE AGREEMENT",
			`This Agreement is made and entered into on March 3, 2024 by and between`,
			`John A. Smith ("Buyer") and Jane B. Doe ("Seller").`,
			"Property Address: 742 Evergreen Terrace, Springfield, IL 62704",
		),
		pdftest.TextPage(
			"1. Purchase Price. The total purchase price for the Property is $425,000.00.",
			"2. Earnest Money. Buyer shall deposit earnest money of $10,000 with the escrow agent.",
			"3. Closing. Closing shall occur on or before April 30, 2024.",
			"IN WITNESS WHEREOF, the parties have executed this Agreement.",
		),
	)
}

// newTestServer serves body for every download and exports to dest
func newTestServer(t *testing.T, status int, contentType string, body []byte, dest string) *Server {
	t.Helper()

	srv, _ := fetchtest.Server(status, contentType, body)
	t.Cleanup(srv.Close)

	service := pdf.NewService(pdf.ServiceOptions{
		Downloader: fetch.New(fetch.Options{Client: fetchtest.Client(srv)}),
	})
	exporter, err := export.New(context.Background(), export.Config{Destination: dest})
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}

	p := pipeline.NewWithStages(service, contract.NewAnalyzer(contract.DefaultConfig()), exporter)
	server, err := NewServer(testConfig(), p)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

func urlRequest(url string) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"url": url,
			},
		},
	}
}

func TestNewServer(t *testing.T) {
	p, err := pipeline.New(context.Background(), pipeline.Config{})
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	tests := []struct {
		name        string
		config      *config.Config
		pipeline    *pipeline.Pipeline
		expectError bool
	}{
		{"valid config", testConfig(), p, false},
		{"nil config", nil, p, true},
		{"nil pipeline", testConfig(), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, tt.pipeline)

			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.config != tt.config {
				t.Error("server config not set correctly")
			}
			if server.pipeline != tt.pipeline {
				t.Error("server pipeline not set correctly")
			}
			if server.mcpServer == nil {
				t.Error("mcpServer should be initialized")
			}
		})
	}
}

func TestServer_HandlePDFFetchExtract(t *testing.T) {
	body := pdftest.Build(pdftest.TextPage("First page"), pdftest.TextPage("Second page"))
	server := newTestServer(t, http.StatusOK, "application/pdf", body, "")

	result, err := server.handlePDFFetchExtract(context.Background(), urlRequest(driveURL))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	if !strings.HasPrefix(text, "Successfully extracted text from PDF:\n\n--- Page 1 ---\n") {
		t.Errorf("unexpected result prefix: %q", text)
	}
	if !strings.Contains(text, "--- Page 2 ---") {
		t.Errorf("result should label page 2, got: %s", text)
	}
}

func TestServer_HandlePDFFetchExtract_Errors(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		status      int
		contentType string
		body        []byte
		prefix      string
	}{
		{
			name:   "unsupported source",
			url:    "https://example.com/contract.pdf",
			status: http.StatusOK,
			prefix: "Error: ",
		},
		{
			name:   "drive link without id",
			url:    "https://drive.google.com/drive/folders",
			status: http.StatusOK,
			prefix: "Error: ",
		},
		{
			name:        "not found",
			url:         dropboxURL,
			status:      http.StatusNotFound,
			contentType: "text/plain",
			body:        []byte("gone"),
			prefix:      "Network error while downloading PDF: ",
		},
		{
			name:        "html interstitial",
			url:         driveURL,
			status:      http.StatusOK,
			contentType: "text/html",
			body:        []byte("<!DOCTYPE html><html><body>Virus scan warning</body></html>"),
			prefix:      "Error processing PDF: ",
		},
		{
			name:        "image only",
			url:         driveURL,
			status:      http.StatusOK,
			contentType: "application/pdf",
			body:        pdftest.Build(pdftest.BlankPage()),
			prefix:      "Error: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.status, tt.contentType, tt.body, "")

			result, err := server.handlePDFFetchExtract(context.Background(), urlRequest(tt.url))
			if err != nil {
				t.Fatalf("handler should report failures in the result, got: %v", err)
			}
			if !result.IsError {
				t.Error("result should be flagged as an error")
			}

			text := extractTextFromResult(result)
			if !strings.HasPrefix(text, tt.prefix) {
				t.Errorf("expected prefix %q, got: %s", tt.prefix, text)
			}
			if strings.Contains(text, "[") {
				t.Errorf("kind tag should not leak into the message: %s", text)
			}
		})
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	server := newTestServer(t, http.StatusOK, "application/pdf", nil, "")

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"pdf_fetch_extract":       server.handlePDFFetchExtract,
		"pdf_resolve_url":         server.handlePDFResolveURL,
		"contract_extract_fields": server.handleContractExtractFields,
		"contract_export_json":    server.handleContractExportJSON,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), mcp.CallToolRequest{})
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if !result.IsError {
				t.Error("missing url should produce an error result")
			}
		})
	}
}

func TestServer_HandlePDFResolveURL(t *testing.T) {
	server := newTestServer(t, http.StatusOK, "application/pdf", nil, "")

	result, err := server.handlePDFResolveURL(context.Background(), urlRequest(driveURL))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"Source: google_drive",
		"Download URL: https://drive.google.com/uc?export=download&id=abc123",
		"File ID: abc123",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result should contain %q, got: %s", want, text)
		}
	}

	result, err = server.handlePDFResolveURL(context.Background(), urlRequest("https://example.com/a.pdf"))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("unsupported source should produce an error result")
	}
}

func TestServer_HandleContractExtractFields(t *testing.T) {
	server := newTestServer(t, http.StatusOK, "application/pdf", contractPDF(), "")

	result, err := server.handleContractExtractFields(context.Background(), urlRequest(dropboxURL))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", extractTextFromResult(result))
	}

	var fields contract.Fields
	if err := json.Unmarshal([]byte(extractTextFromResult(result)), &fields); err != nil {
		t.Fatalf("result should be contract JSON: %v", err)
	}
	if fields.DocumentType != contract.DocumentTypeRealEstateContract {
		t.Errorf("expected real estate contract, got %s", fields.DocumentType)
	}
	if fields.PurchasePrice != "$425,000.00" {
		t.Errorf("expected purchase price $425,000.00, got %q", fields.PurchasePrice)
	}
}

func TestServer_HandleContractExportJSON(t *testing.T) {
	dir := t.TempDir()
	server := newTestServer(t, http.StatusOK, "application/pdf", contractPDF(), dir)

	result, err := server.handleContractExportJSON(context.Background(), urlRequest(dropboxURL))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	if !strings.HasPrefix(text, "Export written to: "+dir) {
		t.Errorf("result should name the export location, got: %s", text)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read export dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one export file, got %d", len(entries))
	}

	data := text[strings.Index(text, "{"):]
	var rec export.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("result should end with the export JSON: %v", err)
	}
	if rec.Source.Kind != "dropbox" {
		t.Errorf("expected dropbox source, got %q", rec.Source.Kind)
	}
}

func TestServer_HandleContractExportJSON_NoDestination(t *testing.T) {
	server := newTestServer(t, http.StatusOK, "application/pdf", contractPDF(), "")

	result, err := server.handleContractExportJSON(context.Background(), urlRequest(dropboxURL))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	if !strings.HasPrefix(text, "{") {
		t.Errorf("without a destination only the JSON is returned, got: %s", text)
	}
}

func TestServer_HandlePDFServerInfo(t *testing.T) {
	server := newTestServer(t, http.StatusOK, "application/pdf", nil, "")

	result, err := server.handlePDFServerInfo(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"test-server v1.0.0",
		"Source Policy: strict (google_drive, dropbox)",
		"Max File Size: 100 MB",
		"pdf_fetch_extract",
		"contract_export_json",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("server info should contain %q, got: %s", want, text)
		}
	}
}

func TestFormatExtraction_SkippedPages(t *testing.T) {
	result := &pdf.PDFFetchExtractResult{
		Document: &pdf.Document{
			PageCount: 3,
			Pages:     []pdf.Page{{Number: 1, Text: "one"}, {Number: 3, Text: "three"}},
			Skipped:   []pdf.PageDiagnostic{{Page: 2, Reason: "invalid content stream"}},
		},
	}

	text := formatExtraction(result)

	want := "Successfully extracted text from PDF:\n\n--- Page 1 ---\none\n\n--- Page 3 ---\nthree"
	if !strings.HasPrefix(text, want) {
		t.Errorf("unexpected text: %q", text)
	}
	if !strings.Contains(text, "1 of 3 page(s) could not be read") {
		t.Errorf("skipped page note missing: %s", text)
	}
	if !strings.Contains(text, "- page 2: invalid content stream") {
		t.Errorf("skipped page reason missing: %s", text)
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "network",
			err:  pdferrors.Wrap(pdferrors.KindNetwork, "request failed", context.DeadlineExceeded),
			want: "Network error while downloading PDF: request failed: context deadline exceeded",
		},
		{
			name: "malformed inside stage error",
			err:  &pipeline.StageError{Stage: pipeline.StageDocument, Err: pdferrors.New(pdferrors.KindMalformedDocument, "not a PDF")},
			want: "Error processing PDF: not a PDF",
		},
		{
			name: "unsupported",
			err:  pdferrors.New(pdferrors.KindUnsupportedSource, "only Google Drive and Dropbox links are supported"),
			want: "Error: only Google Drive and Dropbox links are supported",
		},
		{
			name: "export stage",
			err:  &pipeline.StageError{Stage: pipeline.StageExport, Err: export.ErrSchemaViolation},
			want: "Error in export stage: export does not match schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatError(tt.err); got != tt.want {
				t.Errorf("formatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Helper function to extract text from a CallToolResult
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
