package scraper

import (
	"net/http"
	"time"

	"github.com/use-agent/facecards/engine"
)

// BotUserAgent is the link-preview crawler identity. Twitter, Instagram
// and Facebook serve complete OpenGraph tags to it without a login wall.
const BotUserAgent = "facebookexternalhit/1.1"

const linkedInSessionCookie = "li_at"

// fetchRequest builds the page request for a platform.
func fetchRequest(target string, p Platform, sessionCookie string, timeout time.Duration) *engine.FetchRequest {
	headers := engine.DefaultHeaders()
	if p.usesBotUserAgent() {
		headers["User-Agent"] = BotUserAgent
	}
	return &engine.FetchRequest{
		URL:     target,
		Headers: headers,
		Cookies: sessionCookies(p, sessionCookie),
		Timeout: timeout,
	}
}

// sessionCookies returns the LinkedIn session cookie when one is configured
// and the platform is LinkedIn. It is sent with both the page and the image
// request.
func sessionCookies(p Platform, sessionCookie string) []http.Cookie {
	if p != PlatformLinkedIn || sessionCookie == "" {
		return nil
	}
	return []http.Cookie{{Name: linkedInSessionCookie, Value: sessionCookie}}
}
