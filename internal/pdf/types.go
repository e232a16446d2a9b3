package pdf

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-pdf-fetcher/internal/source"
)

// Page is the extracted text of one page, numbered by its position in the source document
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// PageDiagnostic records why a page was left out of the extracted text
type PageDiagnostic struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// Document is the result of extracting text from a PDF.
// Pages holds only pages that produced text, in source order.
type Document struct {
	PageCount  int              `json:"page_count"`
	Pages      []Page           `json:"pages"`
	Skipped    []PageDiagnostic `json:"skipped,omitempty"`
	EmptyPages []int            `json:"empty_pages,omitempty"`
}

// Text renders the surviving pages as "--- Page <n> ---" blocks separated by a blank line
func (d *Document) Text() string {
	blocks := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", p.Number, p.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// PageNumbers returns the original positions of the pages that produced text
func (d *Document) PageNumbers() []int {
	nums := make([]int, len(d.Pages))
	for i, p := range d.Pages {
		nums[i] = p.Number
	}
	return nums
}

// Metadata holds structural information read by pdfcpu
type Metadata struct {
	PageCount int    `json:"page_count"`
	Version   string `json:"version,omitempty"`
	MIMEType  string `json:"mime_type"`
	Size      int64  `json:"size"`
}

// Request Types

// PDFFetchExtractRequest represents a request to download a shared PDF and extract its text
type PDFFetchExtractRequest struct {
	URL string `json:"url"`
}

// PDFResolveURLRequest represents a request to classify and rewrite a sharing URL
type PDFResolveURLRequest struct {
	URL string `json:"url"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct{}

// Response Types

// PDFFetchExtractResult represents the result of a fetch-and-extract operation
type PDFFetchExtractResult struct {
	Source   source.Resolved `json:"source"`
	Size     int64           `json:"size"`
	Document *Document       `json:"document"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Text returns the joined page text
func (r *PDFFetchExtractResult) Text() string {
	if r.Document == nil {
		return ""
	}
	return r.Document.Text()
}

// PDFResolveURLResult represents the result of URL resolution
type PDFResolveURLResult struct {
	source.Resolved
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName       string     `json:"server_name"`
	Version          string     `json:"version"`
	SourcePolicy     string     `json:"source_policy"`
	SupportedSources []string   `json:"supported_sources"`
	MaxFileSize      int64      `json:"max_file_size"`
	FetchTimeout     string     `json:"fetch_timeout"`
	AvailableTools   []ToolInfo `json:"available_tools"`
	UsageGuidance    string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
