package descriptions

// Tool descriptions with practical examples and use cases

const (
	PDFFetchExtractDescription = `Download a PDF from a public Google Drive or Dropbox sharing link and extract its text.

**When to use:** You have a sharing link to a PDF (contract, agreement, report) and need its text content.

**Why it's useful:** Rewrites the sharing link into a direct download, fetches the file and returns the text of every readable page labelled with its original page number.

**Examples:**
• Contract review: "Get the text of https://drive.google.com/file/d/<id>/view"
• Dropbox share: "Read https://www.dropbox.com/s/<key>/agreement.pdf?dl=0"

**Common workflows:**
1. Contract Processing: Fetch text → Extract fields → Export JSON
2. Document Review: Fetch text → Summarize → Answer questions

**Best practices:** Links must be publicly shared. Scanned PDFs have no extractable text; unreadable pages are skipped and reported.`

	PDFResolveURLDescription = `Classify a sharing link and show its direct-download form without downloading anything.

**When to use:** Before fetching, to check that a link points at a supported source.

**Why it's useful:** Fails fast on unsupported hosts or Drive links without a file ID, and shows exactly which URL will be requested.

**Examples:**
• "Is https://example.com/file.pdf supported?" → unsupported source
• "What will be downloaded for https://drive.google.com/file/d/abc/view?"

**Best practices:** Only Google Drive and Dropbox links are accepted.`

	ContractExtractFieldsDescription = `Extract contract fields from a shared PDF: parties, property address, prices and dates.

**When to use:** The document is a contract or agreement and you need its key terms as structured data.

**Why it's useful:** Combines download, text extraction and rule-based field detection in one call, returning JSON with evidence for each field.

**Examples:**
• Real estate: "Get buyer, seller, purchase price and closing date from this Dropbox contract"
• Agreements: "List the dates and amounts mentioned in this Drive document"

**Best practices:** Check the confidence score; documents below the threshold are reported as "unknown".`

	ContractExportJSONDescription = `Run the full workflow and produce a schema-validated JSON export of a shared contract PDF.

**When to use:** You need a machine-readable record of a contract for downstream systems.

**Why it's useful:** The export is validated against the configured JSON Schema before it is written, so consumers can rely on its shape.

**Examples:**
• "Export the contract at <link> as JSON"

**Best practices:** Configure the export destination (directory or s3://bucket/prefix) to persist results.`

	PDFServerInfoDescription = `Get server information, source policy, limits and available tools.

**When to use:** Starting work with the server or checking which links and sizes are accepted.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_fetch_extract":       PDFFetchExtractDescription,
	"pdf_resolve_url":         PDFResolveURLDescription,
	"contract_extract_fields": ContractExtractFieldsDescription,
	"contract_export_json":    ContractExportJSONDescription,
	"pdf_server_info":         PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
