package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/a3tai/mcp-pdf-fetcher/internal/fetch"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf"
	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
)

var (
	diagnosticMode = flag.Bool("diagnostic", false, "Show structure and per-page diagnostics")
	outputFormat   = flag.String("format", "text", "Output format: text, json")
	help           = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	result, err := extractFile(flag.Arg(0), *diagnosticMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(os.Stdout, result, *outputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("PDF Extract Text - Run the fetcher's text extraction on a local PDF")
	fmt.Println()
	fmt.Println("Useful for checking why a downloaded document loses pages or yields no text:")
	fmt.Println("the same extractor and structure check used by the MCP tools are applied.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -diagnostic    Include pdfcpu structure information and per-page diagnostics")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  pdf_extract_text contract.pdf")
	fmt.Println("  pdf_extract_text -diagnostic -format json scans/agreement.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  pdf_extract_text [OPTIONS] <pdf_file>")
}

// ExtractionResult is the outcome of extracting one local file
type ExtractionResult struct {
	FilePath string        `json:"file_path"`
	Success  bool          `json:"success"`
	Kind     string        `json:"kind,omitempty"`
	Error    string        `json:"error,omitempty"`
	Document *pdf.Document `json:"document,omitempty"`
	Metadata *pdf.Metadata `json:"metadata,omitempty"`
}

func extractFile(path string, diagnostic bool) (*ExtractionResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result := &ExtractionResult{FilePath: absPath}

	if diagnostic {
		if meta, err := pdf.NewValidator(fetch.DefaultMaxBytes).Inspect(data); err == nil {
			result.Metadata = meta
		}
	}

	doc, err := pdf.NewExtractor().Extract(data)
	if err != nil {
		// Extraction failures are reported in the result
		result.Kind = pdferrors.KindOf(err).String()
		result.Error = err.Error()
		return result, nil
	}

	result.Success = true
	result.Document = doc
	return result, nil
}

func outputResults(w io.Writer, result *ExtractionResult, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputText(w io.Writer, result *ExtractionResult) error {
	if result.Metadata != nil {
		fmt.Fprintf(w, "PDF Version: %s\n", result.Metadata.Version)
		fmt.Fprintf(w, "Page Count: %d\n", result.Metadata.PageCount)
		fmt.Fprintf(w, "Size: %d bytes\n\n", result.Metadata.Size)
	}

	if !result.Success {
		fmt.Fprintf(w, "❌ Extraction failed (%s): %s\n", result.Kind, result.Error)
		return nil
	}

	doc := result.Document
	fmt.Fprintln(w, doc.Text())

	if result.Metadata == nil {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "📊 %d of %d page(s) extracted\n", len(doc.Pages), doc.PageCount)
	for _, d := range doc.Skipped {
		fmt.Fprintf(w, "  ⚠️  page %d skipped: %s\n", d.Page, d.Reason)
	}
	for _, n := range doc.EmptyPages {
		fmt.Fprintf(w, "  • page %d has no text\n", n)
	}
	return nil
}

func init() {
	flag.Usage = func() {
		printHelp()
	}
}
