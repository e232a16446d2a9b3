package export

import (
	"time"

	"github.com/a3tai/mcp-pdf-fetcher/internal/contract"
)

// SchemaVersion is written into every record
const SchemaVersion = "1"

// Record is the JSON document produced for one processed URL
type Record struct {
	SchemaVersion string           `json:"schema_version"`
	ID            string           `json:"id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Source        SourceInfo       `json:"source"`
	Document      DocumentInfo     `json:"document"`
	Contract      *contract.Fields `json:"contract"`
}

// SourceInfo describes where the document came from
type SourceInfo struct {
	URL         string `json:"url"`
	Kind        string `json:"kind"`
	DownloadURL string `json:"download_url"`
	FileID      string `json:"file_id,omitempty"`
}

// DocumentInfo summarizes the extraction
type DocumentInfo struct {
	PageCount      int           `json:"page_count"`
	PagesExtracted []int         `json:"pages_extracted"`
	EmptyPages     []int         `json:"empty_pages"`
	SkippedPages   []SkippedPage `json:"skipped_pages"`
	Size           int64         `json:"size"`
	PDFVersion     string        `json:"pdf_version,omitempty"`
}

// SkippedPage is a page whose text could not be read
type SkippedPage struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}
