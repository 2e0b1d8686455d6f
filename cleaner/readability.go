package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the shortest TextContent (in characters) accepted as
// a real main-content extraction.
const minContentLength = 50

// ExtractContent runs the Mozilla Readability algorithm on rawHTML. ok is
// false when the URL is invalid, readability fails, or the extracted text is
// too short to be the page's main content; personal home pages often fall
// in the last group and are rendered whole instead.
func ExtractContent(rawHTML string, sourceURL string) (article readability.Article, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("readability: invalid source URL", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}

	article, err = readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability: extraction failed", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("readability: extracted content too short", "url", sourceURL, "length", len(article.TextContent))
		return article, false
	}
	return article, true
}
