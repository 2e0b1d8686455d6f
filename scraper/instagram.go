package scraper

import (
	"context"
	"regexp"
	"strings"
)

// Instagram's meta description reads like
// `313 Followers, 358 Following, 0 Posts - Jane (@jane) on Instagram: "bio"`.
var reQuotedBio = regexp.MustCompile(`["“”](.+?)["“”]`)

func scrapeInstagram(_ context.Context, page *Page) Result {
	og := OpenGraph(page.Doc)
	name := nameFromHandleTitle(og.Get("title"), PlatformInstagram)

	raw := metaByName(page.Doc, "description")
	description := raw
	if m := reQuotedBio.FindStringSubmatch(raw); m != nil {
		description = m[1]
	}

	image := strings.ReplaceAll(og.Get("image"), "s100x100", "s320x320")

	return Result{
		Name:           name,
		RawDescription: raw,
		Description:    description,
		ImageURL:       image,
	}
}
