// Package cleaner turns fetched HTML into compact page text for the
// profile extractor.
package cleaner

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PageText renders rawHTML as compact Markdown.
//
// Flow:
//  1. Strip navigation, scripts and other chrome.
//  2. Readability extracts the main content; when it cannot, the whole
//     stripped page is used.
//  3. The content is converted to Markdown, prefixed with the article
//     title and byline when readability found them.
//  4. If conversion fails, plain text lines are returned instead.
func PageText(rawHTML, pageURL string) string {
	// ── 1. Noise ────────────────────────────────────────────────────
	stripped := StripNoise(rawHTML)

	// ── 2. Main content ─────────────────────────────────────────────
	content := stripped
	var header []string
	if article, ok := ExtractContent(stripped, pageURL); ok {
		content = article.Content
		if article.Title != "" {
			header = append(header, "# "+strings.TrimSpace(article.Title))
		}
		if article.Byline != "" {
			header = append(header, strings.TrimSpace(article.Byline))
		}
	}

	// ── 3. Markdown ─────────────────────────────────────────────────
	md, err := ToMarkdown(content, pageURL)
	if err != nil || strings.TrimSpace(md) == "" {
		if err != nil {
			slog.Debug("markdown conversion failed, using plain text", "url", pageURL, "error", err)
		}
		// ── 4. Plain text ───────────────────────────────────────────
		return TextLines(stripped)
	}

	if len(header) == 0 {
		return strings.TrimSpace(md)
	}
	return strings.Join(header, "\n") + "\n\n" + strings.TrimSpace(md)
}

// TextLines returns every non-blank text node of the document body on its
// own line, trimmed.
func TextLines(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	var lines []string
	for _, n := range doc.Find("body").Nodes {
		collectText(n, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*lines = append(*lines, text)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}
