package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-fetcher/internal/metrics"
	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
)

const pdfMIMEType = "application/pdf"

var errPageMissing = errors.New("page object is missing")

// pageSource is the minimal view of a parsed document the extractor walks
type pageSource interface {
	NumPage() int
	PageText(pageNum int) (string, error)
}

// Extractor turns downloaded PDF bytes into page-labelled text
type Extractor struct{}

// NewExtractor creates a new text extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses data as a PDF and extracts the text of every page in order.
// Pages that fail or yield only whitespace are left out and reported on the Document.
func (e *Extractor) Extract(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, pdferrors.New(pdferrors.KindMalformedDocument, "downloaded content is empty")
	}

	if mt := mimetype.Detect(data); !mt.Is(pdfMIMEType) {
		return nil, pdferrors.Newf(pdferrors.KindMalformedDocument,
			"downloaded content is %s, not a PDF", mt.String())
	}

	src, err := openLedongthuc(data)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindMalformedDocument, "failed to parse PDF", err)
	}

	return e.extractPages(src)
}

func (e *Extractor) extractPages(src pageSource) (*Document, error) {
	doc := &Document{PageCount: src.NumPage()}

	for pageNum := 1; pageNum <= doc.PageCount; pageNum++ {
		text, err := src.PageText(pageNum)
		if err != nil {
			log.Debug().Err(err).Int("page", pageNum).Msg("skipping unreadable page")
			doc.Skipped = append(doc.Skipped, PageDiagnostic{Page: pageNum, Reason: err.Error()})
			continue
		}

		if strings.TrimSpace(text) == "" {
			doc.EmptyPages = append(doc.EmptyPages, pageNum)
			continue
		}

		doc.Pages = append(doc.Pages, Page{Number: pageNum, Text: text})
	}

	metrics.ObservePages(len(doc.Pages), len(doc.Skipped), len(doc.EmptyPages))

	if strings.TrimSpace(doc.Text()) == "" {
		return nil, pdferrors.Newf(pdferrors.KindNoExtractableText,
			"no text could be extracted from %d page(s); the file might be image-based or corrupted",
			doc.PageCount)
	}

	return doc, nil
}

// ledongthucSource adapts ledongthuc/pdf, turning its panics into errors
type ledongthucSource struct {
	reader *pdf.Reader
	pages  int
}

func openLedongthuc(data []byte) (src *ledongthucSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	// NumPage walks the page tree, which is where a broken trailer usually surfaces
	return &ledongthucSource{reader: reader, pages: reader.NumPage()}, nil
}

func (s *ledongthucSource) NumPage() int {
	return s.pages
}

func (s *ledongthucSource) PageText(pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()

	page := s.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", errPageMissing
	}

	return page.GetPlainText(nil)
}
