package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors never carry profile information.
var noiseSelectors = []string{
	"script", "style", "noscript", "template", "svg", "iframe",
	"nav", "footer", "form",
	"[aria-hidden=true]", "[role=navigation]", ".cookie-banner", "#cookie-banner",
}

// StripNoise removes navigation chrome, scripts and similar elements that
// would otherwise crowd the page text. The input is returned unchanged if it
// cannot be parsed.
func StripNoise(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}
	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
