// Package fetchtest routes real sharing URLs to a local test server.
package fetchtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
)

// Request records what the test server received
type Request struct {
	Host      string
	Path      string
	RawQuery  string
	UserAgent string
}

// rewriteTransport sends every request to target while keeping the original host visible
type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Original-Host", req.URL.Host)
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return t.base.RoundTrip(out)
}

// Client returns an HTTP client whose requests all land on srv
func Client(srv *httptest.Server) *http.Client {
	target, err := url.Parse(srv.URL)
	if err != nil {
		panic(err)
	}
	return &http.Client{Transport: &rewriteTransport{target: target, base: http.DefaultTransport}}
}

// Server serves status and body for every request and records each one on the returned channel
func Server(status int, contentType string, body []byte) (*httptest.Server, <-chan Request) {
	seen := make(chan Request, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- Request{
			Host:      r.Header.Get("X-Original-Host"),
			Path:      r.URL.Path,
			RawQuery:  r.URL.RawQuery,
			UserAgent: r.Header.Get("User-Agent"),
		}:
		default:
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	return srv, seen
}
