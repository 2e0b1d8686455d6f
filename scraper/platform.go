package scraper

import (
	"regexp"
	"strings"
)

// Platform is the closed set of sites with dedicated scraping rules.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformOther     Platform = "other"
)

// Platforms lists every Platform in detection order.
var Platforms = []Platform{PlatformLinkedIn, PlatformTwitter, PlatformInstagram, PlatformFacebook, PlatformOther}

// platformFragments is checked in order; the first match wins.
var platformFragments = []struct {
	platform  Platform
	fragments []string
}{
	{PlatformLinkedIn, []string{"linkedin.com"}},
	{PlatformTwitter, []string{"twitter.com", "x.com"}},
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformFacebook, []string{"facebook.com", "fb.com"}},
}

// DetectPlatform classifies a URL by case-insensitive substring match.
// Unmatched URLs are PlatformOther.
func DetectPlatform(url string) Platform {
	lower := strings.ToLower(url)
	for _, pf := range platformFragments {
		for _, frag := range pf.fragments {
			if strings.Contains(lower, frag) {
				return pf.platform
			}
		}
	}
	return PlatformOther
}

// usesBotUserAgent reports whether the platform serves full OpenGraph tags
// only to a recognised link-preview crawler.
func (p Platform) usesBotUserAgent() bool {
	return p == PlatformTwitter || p == PlatformInstagram || p == PlatformFacebook
}

// NormalizeURL trims s and adds an https scheme when none is present.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	return s
}

var reTwitterHandle = regexp.MustCompile(`(?:twitter\.com|x\.com)/([A-Za-z0-9_]+)`)

// CanonicalTwitterURL rewrites any twitter.com or x.com profile URL to
// https://x.com/<handle>. URLs without a handle are returned unchanged.
func CanonicalTwitterURL(url string) string {
	m := reTwitterHandle.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return "https://x.com/" + m[1]
}
