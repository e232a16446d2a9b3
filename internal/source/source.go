// Package source classifies cloud-storage sharing links and rewrites them into
// direct-download URLs.
package source

import (
	"net/url"
	"regexp"
	"strings"

	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
)

// Kind identifies which download strategy applies to a URL
type Kind string

const (
	KindGoogleDrive Kind = "google_drive"
	KindDropbox     Kind = "dropbox"
	KindUnsupported Kind = "unsupported"
)

const (
	driveHost        = "drive.google.com"
	dropboxHost      = "dropbox.com"
	driveDownloadURL = "https://" + driveHost + "/uc?export=download&id="
	dropboxFlag      = "dl"
)

var driveFileIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
var driveIDParamPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Resolved is the outcome of classifying and rewriting a sharing URL
type Resolved struct {
	Original    string `json:"original"`
	Kind        Kind   `json:"kind"`
	DownloadURL string `json:"download_url"`
	FileID      string `json:"file_id,omitempty"`
}

// Classify inspects the URL host and selects a download strategy.
// Unparseable URLs and URLs without an http(s) scheme are Unsupported.
func Classify(raw string) Kind {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return KindUnsupported
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return KindUnsupported
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == driveHost:
		return KindGoogleDrive
	case host == dropboxHost || strings.HasSuffix(host, "."+dropboxHost):
		return KindDropbox
	default:
		return KindUnsupported
	}
}

// Resolve classifies raw and produces its direct-download form.
// Only Google Drive and Dropbox links are accepted; everything else is UnsupportedSource.
func Resolve(raw string) (*Resolved, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, pdferrors.New(pdferrors.KindInvalidURLFormat, "url cannot be empty")
	}

	kind := Classify(raw)
	switch kind {
	case KindGoogleDrive:
		id, err := DriveFileID(raw)
		if err != nil {
			return nil, err
		}
		return &Resolved{Original: raw, Kind: kind, DownloadURL: driveDownloadURL + id, FileID: id}, nil

	case KindDropbox:
		direct, err := DropboxDirectURL(raw)
		if err != nil {
			return nil, err
		}
		return &Resolved{Original: raw, Kind: kind, DownloadURL: direct}, nil

	default:
		return nil, pdferrors.Newf(pdferrors.KindUnsupportedSource,
			"only Google Drive and Dropbox sharing links are supported").WithURL(raw)
	}
}

// DriveFileID extracts the file identifier from a Google Drive link. The /d/<id> path form is
// preferred; an id query parameter (open?id=, uc?id=) is accepted as well.
func DriveFileID(raw string) (string, error) {
	if m := driveFileIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}

	if u, err := url.Parse(raw); err == nil {
		if id := u.Query().Get("id"); id != "" && driveIDParamPattern.MatchString(id) {
			return id, nil
		}
	}

	return "", pdferrors.New(pdferrors.KindInvalidURLFormat,
		"could not extract file ID from Google Drive URL").WithURL(raw)
}

// DropboxDirectURL forces the dl flag to 1, keeping every other query parameter in place.
// Applying it to its own output returns the same URL.
func DropboxDirectURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", pdferrors.Wrap(pdferrors.KindInvalidURLFormat, "could not parse Dropbox URL", err).WithURL(raw)
	}

	if u.RawQuery == "" {
		u.RawQuery = dropboxFlag + "=1"
		return u.String(), nil
	}

	params := strings.Split(u.RawQuery, "&")
	found := false
	for i, p := range params {
		key, _, _ := strings.Cut(p, "=")
		if key == dropboxFlag {
			params[i] = dropboxFlag + "=1"
			found = true
		}
	}
	if !found {
		params = append(params, dropboxFlag+"=1")
	}
	u.RawQuery = strings.Join(params, "&")

	return u.String(), nil
}
