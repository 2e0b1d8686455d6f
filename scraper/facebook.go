package scraper

import (
	"context"
	"strings"
)

// facebookBoilerplate marks the generic description Facebook serves for
// every profile.
const facebookBoilerplate = "is on Facebook"

func scrapeFacebook(_ context.Context, page *Page) Result {
	og := OpenGraph(page.Doc)

	raw := og.Get("description")
	description := ""
	if raw != "" && !strings.Contains(raw, facebookBoilerplate) {
		description = raw
	}

	return Result{
		Name:           CleanName(og.Get("title"), PlatformFacebook),
		RawDescription: raw,
		Description:    description,
		ImageURL:       og.Get("image"),
	}
}
