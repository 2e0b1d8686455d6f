package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/models"
)

// ProfileScraper turns a profile URL into form-ready fields.
type ProfileScraper interface {
	DoScrape(ctx context.Context, rawURL string) (*models.ScrapeResponse, error)
}

// Summarizer condenses a scraped description into a short context note.
type Summarizer interface {
	Summarize(ctx context.Context, description, name string) (string, bool)
}

// Scrape returns a handler for POST /scrape/url.
//
// Flow:
//  1. Parse the body. A missing body is treated as an empty URL so the
//     scraper reports "URL is required".
//  2. Scraper.DoScrape fetches, extracts and stores the photo.
//  3. Respond 200 with the outcome, or 400 with the user-facing message.
func Scrape(sc ProfileScraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if !bindOptionalJSON(c, &req) {
			return
		}

		// ── 2. Scrape ───────────────────────────────────────────────
		resp, err := sc.DoScrape(c.Request.Context(), req.URL)
		if err != nil {
			slog.Info("scrape failed", "url", req.URL, "error", err)
			respondError(c, err)
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, resp)
	}
}

// Summarize returns a handler for POST /scrape/summarize. It always answers
// 200; an empty summary means no summary is available.
func Summarize(sum Summarizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, models.SummarizeResponse{})
			return
		}
		req.Defaults()

		if req.Description == "" || sum == nil {
			c.JSON(http.StatusOK, models.SummarizeResponse{})
			return
		}

		summary, ok := sum.Summarize(c.Request.Context(), req.Description, req.Name)
		if !ok {
			summary = ""
		}
		c.JSON(http.StatusOK, models.SummarizeResponse{Summary: summary})
	}
}

// bindOptionalJSON decodes the body into dst. An empty body leaves dst at
// its zero value; malformed JSON is answered with 400 and returns false.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "Invalid JSON body", err))
		return false
	}
	return true
}

// respondError maps an error to its HTTP status and writes the JSON error
// body. Errors that are not a *ScrapeError become a generic 500.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "Internal server error", err)
	}
	c.AbortWithStatusJSON(mapErrorToStatus(scrapeErr), scrapeErr.ToResponse())
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput,
		models.ErrCodeFetchFailed,
		models.ErrCodeBlocked,
		models.ErrCodePageNotFound,
		models.ErrCodeHTTPStatus:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
