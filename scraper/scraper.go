package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/facecards/cleaner"
	"github.com/use-agent/facecards/engine"
	"github.com/use-agent/facecards/media"
	"github.com/use-agent/facecards/models"
)

// MaxContextRunes is the length of the context field pre-filled from a
// scraped description.
const MaxContextRunes = 300

// User-facing warnings and hints.
const (
	WarnNoName        = "Could not extract name from this page"
	WarnNoDescription = "No description/bio found on this page"
	WarnNoImage       = "No profile image found. You can copy the photo from your browser and paste here with Cmd+V."
	WarnImageBlocked  = "Found the profile photo but the download was blocked. Copy the image from your browser (right-click > Copy Image) and paste it here with Cmd+V."

	hintNoCookie      = "Set LINKEDIN_LI_AT in your .env to enable authenticated scraping. Get this cookie from your browser dev tools (Application > Cookies > li_at)."
	hintCookieExpired = "Your LinkedIn session cookie may have expired. Refresh it from your browser."
	hintTwitter404    = " This account may not exist or may have a different handle."
)

// statusAuthWall is LinkedIn's non-standard "request denied" status.
const statusAuthWall = 999

// ImageDownloader stores a candidate profile photo and returns its filename.
// Errors carry a user-facing reason; *media.DownloadError adds the status.
type ImageDownloader interface {
	Download(ctx context.Context, imageURL string, cookies []http.Cookie) (string, error)
}

// Options configures a Scraper.
type Options struct {
	// LinkedInCookie is the li_at session value. Empty means anonymous.
	LinkedInCookie string

	// FetchTimeout bounds the page fetch.
	FetchTimeout time.Duration
}

// Scraper turns a profile URL into pre-filled person fields. It holds no
// per-request state and is safe for concurrent use.
type Scraper struct {
	fetcher  engine.Engine
	renderer engine.Engine
	images   ImageDownloader
	registry map[Platform]ProfileScraper
	opts     Options
}

// New creates a Scraper. extractor may be nil; generic pages then rely on
// metadata and markup heuristics alone.
func New(fetcher engine.Engine, images ImageDownloader, extractor ProfileExtractor, opts Options) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		images:  images,
		opts:    opts,
		registry: map[Platform]ProfileScraper{
			PlatformLinkedIn:  ProfileScraperFunc(scrapeLinkedIn),
			PlatformTwitter:   ProfileScraperFunc(scrapeTwitter),
			PlatformInstagram: ProfileScraperFunc(scrapeInstagram),
			PlatformFacebook:  ProfileScraperFunc(scrapeFacebook),
			PlatformOther:     &genericScraper{extractor: extractor, pageText: cleaner.PageText},
		},
	}
}

// SetRenderer enables browser rendering of generic pages that arrive as an
// empty JavaScript shell.
func (s *Scraper) SetRenderer(r engine.Engine) {
	s.renderer = r
}

// DoScrape fetches rawURL and extracts a name, description and photo.
//
// Lifecycle:
//
//  1. Validate     – empty input is rejected before any I/O
//  2. Normalise    – scheme, platform, canonical twitter URL
//  3. Fetch        – platform headers and session cookie
//  4. Status       – auth wall, 404, other error statuses
//  5. Render       – generic JS shells only, when a renderer is set
//  6. Extract      – platform scraper from the registry
//  7. Photo        – download, validate, optimise, store
//  8. Respond      – warnings in extraction order
func (s *Scraper) DoScrape(ctx context.Context, rawURL string) (*models.ScrapeResponse, error) {
	// ── 1. Validate ─────────────────────────────────────────────────
	if strings.TrimSpace(rawURL) == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "URL is required", nil)
	}

	// ── 2. Normalise ────────────────────────────────────────────────
	target := NormalizeURL(rawURL)
	platform := DetectPlatform(target)
	if platform == PlatformTwitter {
		target = CanonicalTwitterURL(target)
	}

	// ── 3. Fetch ────────────────────────────────────────────────────
	res, err := s.fetcher.Fetch(ctx, fetchRequest(target, platform, s.opts.LinkedInCookie, s.opts.FetchTimeout))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, "Failed to fetch URL: "+err.Error(), err)
	}

	// ── 4. Status ───────────────────────────────────────────────────
	if err := s.checkStatus(platform, res); err != nil {
		return nil, err
	}

	// ── 5. Render ───────────────────────────────────────────────────
	if platform == PlatformOther {
		res = s.maybeRender(ctx, target, res)
	}

	// ── 6. Extract ──────────────────────────────────────────────────
	page, err := NewPage(target, res.HTML, res.Title)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, "Failed to fetch URL: "+err.Error(), err)
	}
	result := s.registry[platform].Scrape(ctx, page)

	// ── 7. Photo + 8. Respond ───────────────────────────────────────
	var warnings []string
	if result.Name == "" {
		warnings = append(warnings, WarnNoName)
	}
	if result.Description == "" {
		warnings = append(warnings, WarnNoDescription)
	}

	var faceFilename *string
	if result.ImageURL != "" {
		name, dlErr := s.images.Download(ctx, result.ImageURL, sessionCookies(platform, s.opts.LinkedInCookie))
		if dlErr != nil {
			warnings = append(warnings, imageWarning(platform, dlErr))
			slog.Info("profile photo not stored", "url", target, "image", result.ImageURL, "reason", dlErr.Error())
		} else {
			faceFilename = &name
		}
	} else {
		warnings = append(warnings, WarnNoImage)
	}

	slog.Info("profile scraped",
		"url", target,
		"platform", platform,
		"engine", res.EngineName,
		"name_found", result.Name != "",
		"photo_stored", faceFilename != nil,
		"warnings", len(warnings),
	)

	if warnings == nil {
		warnings = []string{}
	}
	return &models.ScrapeResponse{
		Name:           result.Name,
		FaceFilename:   faceFilename,
		Context1:       truncateRunes(result.Description, MaxContextRunes),
		RawDescription: result.RawDescription,
		Source:         string(platform),
		SourceURL:      target,
		Warnings:       warnings,
	}, nil
}

// checkStatus maps blocked and failed responses to user-facing errors.
func (s *Scraper) checkStatus(p Platform, res *engine.FetchResult) error {
	if res.StatusCode == statusAuthWall || (p == PlatformLinkedIn && strings.Contains(strings.ToLower(res.HTML), "authwall")) {
		hint := hintNoCookie
		if s.opts.LinkedInCookie != "" {
			hint = hintCookieExpired
		}
		return models.NewScrapeError(models.ErrCodeBlocked, "LinkedIn blocked this request (auth wall). "+hint, nil)
	}
	if res.StatusCode == http.StatusNotFound {
		msg := "Page not found (404)."
		if p == PlatformTwitter {
			msg += hintTwitter404
		}
		return models.NewScrapeError(models.ErrCodePageNotFound, msg, nil)
	}
	if res.StatusCode >= 400 {
		return models.NewScrapeError(models.ErrCodeHTTPStatus, fmt.Sprintf("Page returned HTTP %d", res.StatusCode), nil)
	}
	return nil
}

// maybeRender re-fetches a generic page through the browser when the plain
// fetch produced an empty shell with no OpenGraph title. The plain result is
// kept on any rendering failure.
func (s *Scraper) maybeRender(ctx context.Context, target string, res *engine.FetchResult) *engine.FetchResult {
	if s.renderer == nil || !engine.LooksLikeShell(res.HTML) {
		return res
	}
	if page, err := NewPage(target, res.HTML, res.Title); err == nil && OpenGraph(page.Doc).Get("title") != "" {
		return res
	}

	rendered, err := s.renderer.Fetch(ctx, &engine.FetchRequest{
		URL:     target,
		Headers: engine.DefaultHeaders(),
		Timeout: s.opts.FetchTimeout,
	})
	if err != nil {
		slog.Warn("browser render failed, using plain fetch", "url", target, "error", err)
		return res
	}
	if rendered.StatusCode >= 400 {
		slog.Warn("browser render returned error status, using plain fetch", "url", target, "status", rendered.StatusCode)
		return res
	}
	slog.Debug("rendered JavaScript shell", "url", target)
	return rendered
}

// imageWarning turns a download failure into the warning shown to the user.
func imageWarning(p Platform, err error) string {
	var dlErr *media.DownloadError
	if errors.As(err, &dlErr) && dlErr.Forbidden() {
		switch p {
		case PlatformLinkedIn, PlatformInstagram, PlatformFacebook:
			return WarnImageBlocked
		}
	}
	return err.Error()
}
