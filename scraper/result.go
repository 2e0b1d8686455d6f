package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is what a platform scraper extracts from one page.
type Result struct {
	Name           string
	RawDescription string
	Description    string
	ImageURL       string

	// Authenticated is set by the LinkedIn scraper when the page was the
	// logged-in view rather than the public OpenGraph view.
	Authenticated bool
}

// Page is a fetched, parsed document.
type Page struct {
	URL   string
	HTML  string
	Title string
	Doc   *goquery.Document
}

// NewPage parses rawHTML. title is the fetch layer's <title>, used when
// non-empty; otherwise it is read from the document.
func NewPage(url, rawHTML, title string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = doc.Find("title").First().Text()
	}
	return &Page{URL: url, HTML: rawHTML, Title: title, Doc: doc}, nil
}

// ProfileScraper extracts a profile from a page of one platform.
type ProfileScraper interface {
	Scrape(ctx context.Context, page *Page) Result
}

// ProfileScraperFunc adapts a function to ProfileScraper.
type ProfileScraperFunc func(ctx context.Context, page *Page) Result

func (f ProfileScraperFunc) Scrape(ctx context.Context, page *Page) Result { return f(ctx, page) }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
