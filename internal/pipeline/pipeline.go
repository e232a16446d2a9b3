// Package pipeline runs the document, contract and export stages for one URL.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-fetcher/internal/contract"
	"github.com/a3tai/mcp-pdf-fetcher/internal/export"
	"github.com/a3tai/mcp-pdf-fetcher/internal/metrics"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf"
)

// Stage names a step of the pipeline
type Stage string

const (
	StageDocument Stage = "document"
	StageContract Stage = "contract"
	StageExport   Stage = "export"
)

// StageError reports which stage stopped the pipeline
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config holds one configuration struct per stage
type Config struct {
	Document pdf.ServiceOptions
	Contract contract.Config
	Export   export.Config
}

// Result collects the output of every stage that ran
type Result struct {
	Extraction *pdf.PDFFetchExtractResult
	Fields     *contract.Fields
	Export     *export.Result
}

// Pipeline sequences fetch-and-extract, contract analysis and export
type Pipeline struct {
	service  *pdf.Service
	analyzer *contract.Analyzer
	exporter *export.Exporter
}

// New builds every stage from cfg
func New(ctx context.Context, cfg Config) (*Pipeline, error) {
	exporter, err := export.New(ctx, cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("configure export stage: %w", err)
	}

	return NewWithStages(pdf.NewService(cfg.Document), contract.NewAnalyzer(cfg.Contract), exporter), nil
}

// NewWithStages assembles a pipeline from already built stages
func NewWithStages(service *pdf.Service, analyzer *contract.Analyzer, exporter *export.Exporter) *Pipeline {
	return &Pipeline{service: service, analyzer: analyzer, exporter: exporter}
}

// Service returns the document stage
func (p *Pipeline) Service() *pdf.Service {
	return p.service
}

// Analyze runs the document and contract stages
func (p *Pipeline) Analyze(ctx context.Context, url string) (*Result, error) {
	result := &Result{}

	err := runStage(ctx, StageDocument, func(ctx context.Context) error {
		var err error
		result.Extraction, err = p.service.PDFFetchExtract(ctx, pdf.PDFFetchExtractRequest{URL: url})
		return err
	})
	if err != nil {
		return result, err
	}

	err = runStage(ctx, StageContract, func(ctx context.Context) error {
		var err error
		result.Fields, err = p.analyzer.Analyze(ctx, result.Extraction.Text())
		return err
	})
	return result, err
}

// Run executes all stages in order and stops at the first failure
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	result, err := p.Analyze(ctx, url)
	if err != nil {
		return result, err
	}

	err = runStage(ctx, StageExport, func(ctx context.Context) error {
		var err error
		result.Export, err = p.exporter.Export(ctx, BuildRecord(result.Extraction, result.Fields))
		return err
	})
	return result, err
}

func runStage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	logger := log.With().Str("stage", string(stage)).Logger()
	logger.Debug().Msg("stage started")

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveStage(string(stage), err == nil)

	if err != nil {
		logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("stage failed")
		return &StageError{Stage: stage, Err: err}
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("stage finished")
	return nil
}

// BuildRecord converts stage output into an export record
func BuildRecord(extraction *pdf.PDFFetchExtractResult, fields *contract.Fields) *export.Record {
	rec := &export.Record{
		Source: export.SourceInfo{
			URL:         extraction.Source.Original,
			Kind:        string(extraction.Source.Kind),
			DownloadURL: extraction.Source.DownloadURL,
			FileID:      extraction.Source.FileID,
		},
		Document: export.DocumentInfo{
			PagesExtracted: []int{},
			EmptyPages:     []int{},
			SkippedPages:   []export.SkippedPage{},
			Size:           extraction.Size,
		},
		Contract: fields,
	}

	if doc := extraction.Document; doc != nil {
		rec.Document.PageCount = doc.PageCount
		rec.Document.PagesExtracted = append(rec.Document.PagesExtracted, doc.PageNumbers()...)
		rec.Document.EmptyPages = append(rec.Document.EmptyPages, doc.EmptyPages...)
		for _, d := range doc.Skipped {
			rec.Document.SkippedPages = append(rec.Document.SkippedPages, export.SkippedPage{Page: d.Page, Reason: d.Reason})
		}
	}
	if extraction.Metadata != nil {
		rec.Document.PDFVersion = extraction.Metadata.Version
	}

	return rec
}
