package engine

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	reNoscript   = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)
	emptyRoots   = []string{`<div id="root"></div>`, `<div id="app"></div>`, `<div id="__next"></div>`}
	shellMinText = 200
)

// LooksLikeShell reports whether fetched HTML is probably a client-rendered
// shell with no server-side content: almost no visible body text, an empty
// SPA mount point, a "requires JavaScript" noscript, or a script-heavy page
// with little text.
func LooksLikeShell(rawHTML string) bool {
	text := VisibleText(rawHTML)
	if len(text) < shellMinText {
		return true
	}

	lower := strings.ToLower(rawHTML)
	for _, root := range emptyRoots {
		if strings.Contains(lower, root) {
			return true
		}
	}
	if reNoscript.MatchString(lower) {
		return true
	}
	return strings.Count(lower, "<script") > 10 && len(text) < 500
}

// VisibleText returns the text inside <body>, skipping script, style and
// noscript content. Text runs are separated by single spaces.
func VisibleText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(buf.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "body":
				inBody = true
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
