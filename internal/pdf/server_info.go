package pdf

import (
	"fmt"

	"github.com/a3tai/mcp-pdf-fetcher/internal/descriptions"
	"github.com/a3tai/mcp-pdf-fetcher/internal/source"
)

// SourcePolicy names the accepted-source policy of this server
const SourcePolicy = "strict"

// PDFServerInfo returns server information and usage guidance
func (s *Service) PDFServerInfo(_ PDFServerInfoRequest, serverName, version string) (*PDFServerInfoResult, error) {
	return &PDFServerInfoResult{
		ServerName:       serverName,
		Version:          version,
		SourcePolicy:     SourcePolicy,
		SupportedSources: []string{string(source.KindGoogleDrive), string(source.KindDropbox)},
		MaxFileSize:      s.maxFileSize,
		FetchTimeout:     s.fetchTimeout.String(),
		AvailableTools:   availableTools(),
		UsageGuidance:    s.usageGuidance(),
	}, nil
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "pdf_fetch_extract",
			Description: descriptions.GetToolDescription("pdf_fetch_extract"),
			Usage:       "Use this tool to download a shared PDF and get its text, page by page.",
			Parameters:  "url (required): Public Google Drive or Dropbox sharing link",
		},
		{
			Name:        "pdf_resolve_url",
			Description: descriptions.GetToolDescription("pdf_resolve_url"),
			Usage:       "Use this tool to check whether a link is supported and see its direct-download form.",
			Parameters:  "url (required): Sharing link to classify",
		},
		{
			Name:        "contract_extract_fields",
			Description: descriptions.GetToolDescription("contract_extract_fields"),
			Usage:       "Use this tool to pull parties, property, prices and dates out of a shared contract PDF.",
			Parameters:  "url (required): Public Google Drive or Dropbox sharing link",
		},
		{
			Name:        "contract_export_json",
			Description: descriptions.GetToolDescription("contract_export_json"),
			Usage:       "Use this tool to run the whole workflow and get a schema-validated JSON export.",
			Parameters:  "url (required): Public Google Drive or Dropbox sharing link",
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Use this tool to get server information and available capabilities.",
			Parameters:  "No parameters required",
		},
	}
}

func (s *Service) usageGuidance() string {
	maxFileSizeMB := s.maxFileSize / (1024 * 1024)

	return fmt.Sprintf(`PDF Fetcher Usage Guide:

1. CHECK THE LINK:
   - Use 'pdf_resolve_url' to confirm a link is a supported Google Drive or Dropbox share
   - Other hosts are rejected; direct links to arbitrary sites are not fetched

2. READ CONTENT:
   - Use 'pdf_fetch_extract' to download the PDF and extract its text
   - Each page is labelled "--- Page <n> ---" with its original page number
   - Pages that cannot be read are skipped and listed as warnings

3. ANALYZE CONTRACTS:
   - Use 'contract_extract_fields' for parties, property address, amounts and dates
   - Use 'contract_export_json' to produce the validated JSON export

IMPORTANT NOTES:
- Links must be publicly shared; no sign-in flows are supported
- Downloads are limited to %dMB and %s
- Scanned (image-only) PDFs have no extractable text`, maxFileSizeMB, s.fetchTimeout)
}
