package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-fetcher/internal/config"
	"github.com/a3tai/mcp-pdf-fetcher/internal/descriptions"
	"github.com/a3tai/mcp-pdf-fetcher/internal/metrics"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf"
	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pipeline"
)

const (
	mcpPath     = "/mcp"
	metricsPath = "/metrics"

	shutdownTimeout = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	pipeline  *pipeline.Pipeline
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, p *pipeline.Pipeline) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if p == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		pipeline:  p,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

func urlArgument(description string) mcp.ToolOption {
	return mcp.WithString("url",
		mcp.Required(),
		mcp.Description(description),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_fetch_extract",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_fetch_extract")),
		urlArgument("Public Google Drive or Dropbox sharing link to a PDF"),
	), s.handlePDFFetchExtract)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_resolve_url",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_resolve_url")),
		urlArgument("Sharing link to classify"),
	), s.handlePDFResolveURL)

	s.mcpServer.AddTool(mcp.NewTool(
		"contract_extract_fields",
		mcp.WithDescription(descriptions.GetToolDescription("contract_extract_fields")),
		urlArgument("Public Google Drive or Dropbox sharing link to a contract PDF"),
	), s.handleContractExtractFields)

	s.mcpServer.AddTool(mcp.NewTool(
		"contract_export_json",
		mcp.WithDescription(descriptions.GetToolDescription("contract_export_json")),
		urlArgument("Public Google Drive or Dropbox sharing link to a contract PDF"),
	), s.handleContractExportJSON)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	), s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFFetchExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pipeline.Service().PDFFetchExtract(ctx, pdf.PDFFetchExtractRequest{URL: url})
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	return mcp.NewToolResultText(formatExtraction(result)), nil
}

func (s *Server) handlePDFResolveURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pipeline.Service().PDFResolveURL(pdf.PDFResolveURLRequest{URL: url})
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	text := fmt.Sprintf("Source: %s\n", result.Kind)
	text += fmt.Sprintf("Download URL: %s\n", result.DownloadURL)
	if result.FileID != "" {
		text += fmt.Sprintf("File ID: %s\n", result.FileID)
	}

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleContractExtractFields(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pipeline.Analyze(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	data, err := json.MarshalIndent(result.Fields, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding contract fields: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleContractExportJSON(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pipeline.Run(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	text := ""
	if result.Export.Location != "" {
		text += fmt.Sprintf("Export written to: %s\n\n", result.Export.Location)
	}
	text += string(result.Export.Data)

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pipeline.Service().PDFServerInfo(pdf.PDFServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatServerInfo(result)), nil
}

// Formatting methods
func formatExtraction(result *pdf.PDFFetchExtractResult) string {
	text := "Successfully extracted text from PDF:\n\n" + result.Text()

	if doc := result.Document; doc != nil && len(doc.Skipped) > 0 {
		text += fmt.Sprintf("\n\nNote: %d of %d page(s) could not be read and were skipped:\n",
			len(doc.Skipped), doc.PageCount)
		for _, d := range doc.Skipped {
			text += fmt.Sprintf("- page %d: %s\n", d.Page, d.Reason)
		}
	}

	return text
}

// formatError renders a failure with the prefix its kind calls for
func formatError(err error) string {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) && stageErr.Stage != pipeline.StageDocument {
		return fmt.Sprintf("Error in %s stage: %v", stageErr.Stage, stageErr.Err)
	}

	detail := err.Error()
	var toolErr *pdferrors.ToolError
	if errors.As(err, &toolErr) {
		detail = toolErr.Message
		if toolErr.Err != nil {
			detail += ": " + toolErr.Err.Error()
		}
	}

	switch pdferrors.KindOf(err) {
	case pdferrors.KindNetwork:
		return "Network error while downloading PDF: " + detail
	case pdferrors.KindMalformedDocument:
		return "Error processing PDF: " + detail
	default:
		return "Error: " + detail
	}
}

func formatServerInfo(result *pdf.PDFServerInfoResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	fmt.Fprintf(&b, "🔒 Source Policy: %s (%s)\n", result.SourcePolicy, strings.Join(result.SupportedSources, ", "))
	fmt.Fprintf(&b, "📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	fmt.Fprintf(&b, "⏱️  Fetch Timeout: %s\n\n", result.FetchTimeout)

	b.WriteString("🛠️  Available Tools:\n")
	for _, tool := range result.AvailableTools {
		fmt.Fprintf(&b, "\n• %s\n", tool.Name)
		fmt.Fprintf(&b, "  Usage: %s\n", tool.Usage)
		fmt.Fprintf(&b, "  Parameters: %s\n", tool.Parameters)
	}

	b.WriteString("\n" + result.UsageGuidance)
	return b.String()
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	log.Debug().Msg("starting MCP server in stdio mode")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// Handler returns the HTTP routes served in server mode
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(mcpPath, server.NewStreamableHTTPServer(s.mcpServer))
	mux.Handle(metricsPath, metrics.Handler())
	return mux
}

// runServerMode serves streamable HTTP until ctx is canceled
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("mcp", mcpPath).Str("metrics", metricsPath).
			Msg("starting MCP server in HTTP mode")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
