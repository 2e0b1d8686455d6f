package scraper

import (
	"context"
	"strings"
)

// scrapeTwitter reads the OpenGraph tags X serves to link-preview bots.
func scrapeTwitter(_ context.Context, page *Page) Result {
	og := OpenGraph(page.Doc)
	tw := TwitterCard(page.Doc)

	name := nameFromHandleTitle(firstNonEmpty(og.Get("title"), tw.Get("title")), PlatformTwitter)
	description := firstNonEmpty(og.Get("description"), tw.Get("description"))

	image := firstNonEmpty(og.Get("image"), tw.Get("image:src"), tw.Get("image"))
	image = strings.ReplaceAll(image, "_200x200", "_400x400")

	return Result{
		Name:           name,
		RawDescription: description,
		Description:    description,
		ImageURL:       image,
	}
}
