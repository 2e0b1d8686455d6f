package engine

import (
	"context"
	"net/http"
	"time"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier ("http" or "browser").
	Name() string

	// Fetch retrieves the page for the given request. A non-nil error means
	// the page could not be retrieved at all; HTTP error statuses are
	// reported through FetchResult.StatusCode so callers can inspect them.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Cookies []http.Cookie
	Timeout time.Duration
}

// FetchResult is the output of an engine fetch.
type FetchResult struct {
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FinalURL    string
	EngineName  string
}

// Default browser-like request headers. Callers override them per platform
// through FetchRequest.Headers.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// DefaultHeaders returns a fresh copy of the default header set.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      DefaultUserAgent,
		"Accept":          DefaultAccept,
		"Accept-Language": DefaultAcceptLanguage,
	}
}
