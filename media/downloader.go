package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/facecards/engine"
)

// minImageBytes is the smallest download accepted as a real photo.
const minImageBytes = 1000

// Reasons reported by Download. They are shown to the user verbatim.
const (
	ReasonNoURL            = "No image URL found"
	ReasonPlaceholder      = "Image appears to be a placeholder, not a real profile photo"
	ReasonSVG              = "Image is an SVG (LinkedIn default avatar), not a real photo"
	ReasonTooSmall         = "Image is too small (likely a placeholder)"
	ReasonDownloadTooSmall = "Downloaded image is too small (likely a placeholder)"
	ReasonTooLarge         = "Image is too large"
)

// DownloadError explains why a candidate image was not stored.
type DownloadError struct {
	Reason     string
	StatusCode int // non-zero when the server answered with an error status
	Err        error
}

func (e *DownloadError) Error() string { return e.Reason }

func (e *DownloadError) Unwrap() error { return e.Err }

// Forbidden reports whether the image host refused the request.
func (e *DownloadError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden || strings.Contains(e.Reason, "403")
}

// Downloader fetches candidate profile photos and hands accepted ones to
// an Optimizer.
type Downloader struct {
	client  *http.Client
	store   Optimizer
	timeout time.Duration
}

// NewDownloader creates a Downloader. A nil client uses the fingerprinted
// engine transport.
func NewDownloader(client *http.Client, store Optimizer, timeout time.Duration) *Downloader {
	if client == nil {
		client = &http.Client{
			Transport:     engine.NewTransport(),
			CheckRedirect: engine.CheckRedirect,
		}
	}
	return &Downloader{client: client, store: store, timeout: timeout}
}

// Download validates and stores the image at imageURL. Exactly one of the
// returned filename and error is set; the error is always a *DownloadError.
func (d *Downloader) Download(ctx context.Context, imageURL string, cookies []http.Cookie) (string, error) {
	if imageURL == "" {
		return "", &DownloadError{Reason: ReasonNoURL}
	}
	if !IsValidProfileImage(imageURL) {
		return "", &DownloadError{Reason: ReasonPlaceholder}
	}
	return d.fetch(ctx, imageURL, cookies, true)
}

// DownloadUnchecked stores the image at imageURL without the placeholder
// and content checks. Used for bulk imports where the user chose the URL.
func (d *Downloader) DownloadUnchecked(ctx context.Context, imageURL string) (string, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", &DownloadError{Reason: ReasonNoURL}
	}
	return d.fetch(ctx, imageURL, nil, false)
}

func (d *Downloader) fetch(ctx context.Context, imageURL string, cookies []http.Cookie, validate bool) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	// ── 1. Request ──────────────────────────────────────────────────
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", &DownloadError{Reason: "Failed to download image: " + err.Error(), Err: err}
	}
	engine.ApplyHeaders(req, nil)
	for i := range cookies {
		req.AddCookie(&cookies[i])
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &DownloadError{Reason: "Failed to download image: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &DownloadError{
			Reason:     fmt.Sprintf("Failed to download image: %d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), imageURL),
			StatusCode: resp.StatusCode,
		}
	}

	// ── 2. Header checks ────────────────────────────────────────────
	if validate {
		ct := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "image/") {
			return "", &DownloadError{Reason: fmt.Sprintf("URL returned %s, not an image", ct)}
		}
		if strings.Contains(ct, "svg") {
			return "", &DownloadError{Reason: ReasonSVG}
		}
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if n, convErr := strconv.Atoi(cl); convErr == nil && n < minImageBytes {
				return "", &DownloadError{Reason: ReasonTooSmall}
			}
		}
	}
	if resp.ContentLength > MaxImageBytes {
		return "", &DownloadError{Reason: ReasonTooLarge, Err: ErrImageTooLarge}
	}

	// ── 3. Stream to a temp file ────────────────────────────────────
	tmp, err := os.CreateTemp("", "face-*.img")
	if err != nil {
		return "", &DownloadError{Reason: "Failed to download image: " + err.Error(), Err: err}
	}
	defer os.Remove(tmp.Name())

	n, copyErr := io.Copy(tmp, io.LimitReader(resp.Body, MaxImageBytes+1))
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", &DownloadError{Reason: "Failed to download image: " + copyErr.Error(), Err: copyErr}
	}
	if closeErr != nil {
		return "", &DownloadError{Reason: "Failed to download image: " + closeErr.Error(), Err: closeErr}
	}
	if n > MaxImageBytes {
		return "", &DownloadError{Reason: ReasonTooLarge, Err: ErrImageTooLarge}
	}
	if validate && n < minImageBytes {
		return "", &DownloadError{Reason: ReasonDownloadTooSmall}
	}

	// ── 4. Optimise and store ───────────────────────────────────────
	name, err := d.store.OptimizeAndStore(ctx, tmp.Name())
	if err != nil {
		return "", &DownloadError{Reason: "Failed to process image: " + err.Error(), Err: err}
	}
	return name, nil
}
