package scraper

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reTitleSuffix     = regexp.MustCompile(`\s*[|\-–—].*$`)
	reOnPlatform      = regexp.MustCompile(`(?i)\s*on (LinkedIn|Twitter|Facebook|X).*$`)
	reCredential      = regexp.MustCompile(`,\s*(PhD|MD|MBA|CPA|PE|PMP|CFA|JD|Esq)\.?.*$`)
	reConnections     = regexp.MustCompile(`(?i)\s*·\s*\d+\+?\s*connections?\s*`)
	reConnectTail     = regexp.MustCompile(`(?i)\s*·\s*Connect\s*$`)
	reLabelOnly       = regexp.MustCompile(`(?i)^(Location|Connections):`)
	reLeadingLabel    = regexp.MustCompile(`^(Experience|Education|Location):\s*`)
	reHandleInTitle   = regexp.MustCompile(`^(.+?)\s*\(@\w+\)`)
	linkedInSeparator = "·"
)

// CleanName turns a page title into a person's name: site suffixes,
// "on <Platform>" phrases and trailing credentials are removed, and an
// all-lower or all-upper result is title-cased. The platform is accepted
// for future per-site rules; all platforms currently share one rule set.
func CleanName(title string, _ Platform) string {
	if title == "" {
		return ""
	}
	name := strings.TrimSpace(title)
	name = reTitleSuffix.ReplaceAllString(name, "")
	name = reOnPlatform.ReplaceAllString(name, "")
	name = reCredential.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if name == strings.ToLower(name) || name == strings.ToUpper(name) {
		name = titleCase(name)
	}
	return name
}

// nameFromHandleTitle extracts "Jane Doe" from titles like
// "Jane Doe (@jane) / X", falling back to CleanName.
func nameFromHandleTitle(title string, p Platform) string {
	if m := reHandleInTitle.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	return CleanName(title, p)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}

// CleanLinkedInDescription reduces LinkedIn's
// "Experience: X · Education: Y · Location: Z · N connections" format to
// the meaningful segments. Input that cleans to nothing is returned trimmed.
func CleanLinkedInDescription(desc string) string {
	if desc == "" {
		return ""
	}
	d := reConnections.ReplaceAllString(desc, "")
	d = reConnectTail.ReplaceAllString(d, "")

	var kept []string
	for _, part := range strings.Split(d, linkedInSeparator) {
		part = strings.TrimSpace(part)
		if part == "" || reLabelOnly.MatchString(part) {
			continue
		}
		part = reLeadingLabel.ReplaceAllString(part, "")
		if part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return strings.TrimSpace(desc)
	}
	return strings.Join(kept, " "+linkedInSeparator+" ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
