package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the category of a fetch-and-extract failure
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURLFormat
	KindUnsupportedSource
	KindNetwork
	KindMalformedDocument
	KindNoExtractableText
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindInvalidURLFormat:
		return "INVALID_URL_FORMAT"
	case KindUnsupportedSource:
		return "UNSUPPORTED_SOURCE"
	case KindNetwork:
		return "NETWORK_ERROR"
	case KindMalformedDocument:
		return "MALFORMED_DOCUMENT"
	case KindNoExtractableText:
		return "NO_EXTRACTABLE_TEXT"
	default:
		return "UNKNOWN"
	}
}

// IsInputError reports whether the failure was caused by the URL the caller supplied
// rather than by the remote side or the document itself.
func (k Kind) IsInputError() bool {
	return k == KindInvalidURLFormat || k == KindUnsupportedSource
}

// ToolError is the typed error returned by every stage of the fetch-and-extract flow
type ToolError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is matches any ToolError of the same Kind, so errors.Is(err, &ToolError{Kind: k}) works
func (e *ToolError) Is(target error) bool {
	t, ok := target.(*ToolError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a ToolError without an underlying cause
func New(kind Kind, message string) *ToolError {
	return &ToolError{Kind: kind, Message: message}
}

// Newf creates a ToolError with a formatted message
func Newf(kind Kind, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a ToolError around an existing error
func Wrap(kind Kind, message string, err error) *ToolError {
	return &ToolError{Kind: kind, Message: message, Err: err}
}

// WithURL attaches the URL being processed
func (e *ToolError) WithURL(url string) *ToolError {
	e.URL = url
	return e
}

// KindOf returns the Kind carried by err, or KindUnknown when err is not a ToolError
func KindOf(err error) Kind {
	var te *ToolError
	if stderrors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// Sentinels for errors.Is checks
var (
	ErrInvalidURLFormat  = &ToolError{Kind: KindInvalidURLFormat, Message: "invalid URL format"}
	ErrUnsupportedSource = &ToolError{Kind: KindUnsupportedSource, Message: "unsupported source"}
	ErrNetwork           = &ToolError{Kind: KindNetwork, Message: "network error"}
	ErrMalformedDocument = &ToolError{Kind: KindMalformedDocument, Message: "malformed document"}
	ErrNoExtractableText = &ToolError{Kind: KindNoExtractableText, Message: "no extractable text"}
)
