// Package fetch downloads documents from direct-download URLs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-fetcher/internal/metrics"
	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultMaxBytes  = 100 * 1024 * 1024 // 100MB
)

// Options configures a Fetcher
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64

	// Client overrides the HTTP client. Its Timeout is replaced by Options.Timeout.
	Client *http.Client
}

// Content is the raw response of a single download
type Content struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher issues one GET per call: no retries, no streaming, the body is buffered in memory
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// New creates a Fetcher, filling unset options with defaults
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	client := &http.Client{}
	if opts.Client != nil {
		c := *opts.Client
		client = &c
	}
	client.Timeout = opts.Timeout

	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

// Fetch downloads url. Connection failures, timeouts, oversized bodies and non-2xx
// responses all surface as a NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Content, error) {
	return f.fetch(ctx, url, "direct")
}

// FetchSource is Fetch with the source kind attached to logs and metrics
func (f *Fetcher) FetchSource(ctx context.Context, url, source string) (*Content, error) {
	return f.fetch(ctx, url, source)
}

func (f *Fetcher) fetch(ctx context.Context, url, source string) (*Content, error) {
	start := time.Now()

	content, err := f.do(ctx, url)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ObserveFetch(source, "error", elapsed, 0)
		log.Warn().Err(err).Str("url", url).Str("source", source).
			Dur("elapsed", elapsed).Msg("fetch failed")
		return nil, err
	}

	metrics.ObserveFetch(source, "success", elapsed, len(content.Body))
	log.Debug().Str("url", url).Str("final_url", content.FinalURL).Str("source", source).
		Int("status", content.StatusCode).Int("bytes", len(content.Body)).
		Dur("elapsed", elapsed).Msg("fetch complete")
	return content, nil
}

func (f *Fetcher) do(ctx context.Context, url string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindNetwork, "failed to build request", err).WithURL(url)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindNetwork, "request failed", err).WithURL(url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pdferrors.Newf(pdferrors.KindNetwork, "unexpected HTTP status %s", resp.Status).WithURL(url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindNetwork, "failed to read response body", err).WithURL(url)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, pdferrors.Newf(pdferrors.KindNetwork,
			"response too large: more than %d bytes", f.maxBytes).WithURL(url)
	}

	return &Content{
		URL:         url,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// String summarizes the content without its body
func (c *Content) String() string {
	return fmt.Sprintf("Content{URL: %s, Status: %d, Type: %s, Bytes: %d}",
		c.URL, c.StatusCode, c.ContentType, len(c.Body))
}
