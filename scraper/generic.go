package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/facecards/llm"
)

// ProfileExtractor is the optional language-model fallback for generic
// pages. ok is false whenever no usable answer was produced.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, pageText string, images []llm.PageImage, pageURL string) (profile *llm.ProfileExtraction, ok bool)
}

// TextExtractor renders a page to plain text for the extractor.
type TextExtractor func(rawHTML, pageURL string) string

var profileImageKeywords = []string{"profile", "photo", "headshot", "avatar", "portrait", "pfp"}

// genericScraper handles personal sites and anything without dedicated
// rules: metadata first, then the extractor, then markup heuristics.
type genericScraper struct {
	extractor ProfileExtractor
	pageText  TextExtractor
}

func (g *genericScraper) Scrape(ctx context.Context, page *Page) Result {
	og := OpenGraph(page.Doc)
	tw := TwitterCard(page.Doc)

	name := CleanName(firstNonEmpty(og.Get("title"), tw.Get("title"), page.Title), PlatformOther)
	description := firstNonEmpty(og.Get("description"), tw.Get("description"))
	base, _ := url.Parse(page.URL)
	image := firstNonEmpty(og.Get("image"), tw.Get("image"))
	if image != "" {
		image = resolveURL(base, image)
	}

	images := collectPageImages(page, base)

	if name != "" && description != "" && image != "" {
		return Result{Name: name, RawDescription: description, Description: description, ImageURL: image}
	}

	// ── Extractor fallback (fills only missing fields) ───────────────
	if g.extractor != nil {
		text := ""
		if g.pageText != nil {
			text = g.pageText(page.HTML, page.URL)
		}
		if profile, ok := g.extractor.ExtractProfile(ctx, text, images, page.URL); ok {
			if name == "" {
				name = profile.Name
			}
			if description == "" {
				description = profile.Context
			}
			if image == "" {
				image = profile.ImageURL
			}
		} else {
			slog.Debug("profile extractor unavailable", "url", page.URL)
		}
	}

	// ── Markup heuristics ────────────────────────────────────────────
	if name == "" {
		name = headingName(page)
	}
	if image == "" {
		image = findProfileImage(images, name)
	}

	return Result{Name: name, RawDescription: description, Description: description, ImageURL: image}
}

// collectPageImages lists <img> sources resolved against the page URL,
// skipping empty and inline data: sources.
func collectPageImages(page *Page, base *url.URL) []llm.PageImage {
	var images []llm.PageImage
	page.Doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		images = append(images, llm.PageImage{
			Src: resolveURL(base, src),
			Alt: s.AttrOr("alt", ""),
		})
	})
	return images
}

func resolveURL(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// headingName returns the first h1/h2 whose text is 3 to 59 runes long.
func headingName(page *Page) string {
	name := ""
	page.Doc.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strippedText(s)
		if n := utf8.RuneCountInString(text); n > 2 && n < 60 {
			name = text
			return false
		}
		return true
	})
	return name
}

// findProfileImage picks the first image whose alt text mentions the
// person or whose src/alt contains a profile-photo keyword.
func findProfileImage(images []llm.PageImage, name string) string {
	nameLower := strings.ToLower(name)
	for _, img := range images {
		src := strings.ToLower(img.Src)
		alt := strings.ToLower(img.Alt)
		if nameLower != "" && strings.Contains(alt, nameLower) {
			return img.Src
		}
		for _, kw := range profileImageKeywords {
			if strings.Contains(src, kw) || strings.Contains(alt, kw) {
				return img.Src
			}
		}
	}
	return ""
}
