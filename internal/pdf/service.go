package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-fetcher/internal/fetch"
	"github.com/a3tai/mcp-pdf-fetcher/internal/source"
)

// Downloader is the network side of the service
type Downloader interface {
	FetchSource(ctx context.Context, url, source string) (*fetch.Content, error)
}

// Service sequences URL resolution, download and text extraction
type Service struct {
	maxFileSize  int64
	fetchTimeout time.Duration
	downloader   Downloader
	extractor    *Extractor
	validator    *Validator
}

// ServiceOptions configures a Service
type ServiceOptions struct {
	MaxFileSize  int64
	FetchTimeout time.Duration
	UserAgent    string

	// Downloader overrides the HTTP fetcher built from the options above
	Downloader Downloader
}

// NewService creates a new PDF service with all components
func NewService(opts ServiceOptions) *Service {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = fetch.DefaultMaxBytes
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = fetch.DefaultTimeout
	}

	downloader := opts.Downloader
	if downloader == nil {
		downloader = fetch.New(fetch.Options{
			Timeout:   opts.FetchTimeout,
			UserAgent: opts.UserAgent,
			MaxBytes:  opts.MaxFileSize,
		})
	}

	return &Service{
		maxFileSize:  opts.MaxFileSize,
		fetchTimeout: opts.FetchTimeout,
		downloader:   downloader,
		extractor:    NewExtractor(),
		validator:    NewValidator(opts.MaxFileSize),
	}
}

// PDFResolveURL classifies a sharing URL and returns its direct-download form without fetching it
func (s *Service) PDFResolveURL(req PDFResolveURLRequest) (*PDFResolveURLResult, error) {
	resolved, err := source.Resolve(req.URL)
	if err != nil {
		return nil, err
	}
	return &PDFResolveURLResult{Resolved: *resolved}, nil
}

// PDFFetchExtract downloads the PDF behind a sharing URL and extracts its text.
// Errors are *errors.ToolError values carrying the failure Kind.
func (s *Service) PDFFetchExtract(ctx context.Context, req PDFFetchExtractRequest) (*PDFFetchExtractResult, error) {
	reqID := uuid.New().String()
	logger := log.With().Str("req_id", reqID).Logger()

	resolved, err := source.Resolve(req.URL)
	if err != nil {
		logger.Info().Err(err).Str("url", req.URL).Msg("rejected source url")
		return nil, err
	}
	logger.Info().Str("source", string(resolved.Kind)).Str("download_url", resolved.DownloadURL).
		Msg("resolved source url")

	content, err := s.downloader.FetchSource(ctx, resolved.DownloadURL, string(resolved.Kind))
	if err != nil {
		return nil, err
	}

	doc, err := s.extractor.Extract(content.Body)
	if err != nil {
		logger.Warn().Err(err).Int("bytes", len(content.Body)).Msg("text extraction failed")
		return nil, err
	}

	result := &PDFFetchExtractResult{
		Source:   *resolved,
		Size:     int64(len(content.Body)),
		Document: doc,
	}

	meta, err := s.validator.Inspect(content.Body)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("structure check failed: %v", err))
	} else {
		result.Metadata = meta
	}

	for _, d := range doc.Skipped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("page %d skipped: %s", d.Page, d.Reason))
	}

	logger.Info().Int("pages", doc.PageCount).Int("extracted", len(doc.Pages)).
		Int("skipped", len(doc.Skipped)).Int("empty", len(doc.EmptyPages)).
		Msg("extraction complete")

	return result, nil
}

// GetMaxFileSize returns the maximum download size
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetFetchTimeout returns the per-request download timeout
func (s *Service) GetFetchTimeout() time.Duration {
	return s.fetchTimeout
}
