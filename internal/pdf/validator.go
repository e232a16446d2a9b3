package pdf

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator reads structural information from downloaded PDF bytes with pdfcpu.
// It complements the text extractor: a document pdfcpu cannot read may still yield text.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Inspect validates data and returns page count and header version
func (v *Validator) Inspect(data []byte) (meta *Metadata, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	if int64(len(data)) > v.maxFileSize {
		return nil, fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize)
	}

	mt := mimetype.Detect(data)
	if !mt.Is(pdfMIMEType) {
		return nil, fmt.Errorf("content is %s, not a PDF", mt.String())
	}

	defer func() {
		if r := recover(); r != nil {
			meta = nil
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to determine page count: %w", err)
	}

	return &Metadata{
		PageCount: ctx.PageCount,
		Version:   ctx.HeaderVersion.String(),
		MIMEType:  mt.String(),
		Size:      int64(len(data)),
	}, nil
}

// IsValidPDF performs a quick check to see if data is a readable PDF
func (v *Validator) IsValidPDF(data []byte) bool {
	_, err := v.Inspect(data)
	return err == nil
}
