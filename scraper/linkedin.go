package scraper

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/facecards/media"
	"golang.org/x/net/html"
)

// The logged-in profile view has no OpenGraph description. Its profile card
// is found by walking up from the "Contact info" link; this depends on
// LinkedIn's markup and is expected to need adjusting when it changes.
const (
	contactInfoAnchor = "Contact info"
	profileCardDepth  = 6
	minFieldRunes     = 3
	maxFieldRunes     = 200
)

var profileCardSkip = map[string]bool{
	"contact info": true,
	"he/him":       true,
	"she/her":      true,
	"they/them":    true,
	"message":      true,
	"more":         true,
	"connect":      true,
	"follow":       true,
	"pending":      true,
}

var (
	reDegreeMarker  = regexp.MustCompile(`^[\s·\x{00c2}]*(1st|2nd|3rd|\d+th)`)
	reLeadingDots   = regexp.MustCompile(`^[\s·\x{00c2}]+`)
	rePhotoRoot     = regexp.MustCompile(`(https://media\.licdn\.com/dms/image/v2/[A-Za-z0-9_-]+/profile-displayphoto-)`)
	photoSizes      = []string{"400_400", "800_800", "200_200", "100_100"}
	rePhotoSuffixes = compilePhotoSuffixes(photoSizes)
)

func compilePhotoSuffixes(sizes []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(sizes))
	for i, size := range sizes {
		out[i] = regexp.MustCompile(`shrink_` + size + `(/[^"\\<>\s]+(?:\\u0026[^"\\<>\s]+)*)`)
	}
	return out
}

// profileCard holds the first three fields of the logged-in profile card.
// The order is best-effort.
type profileCard struct {
	Headline string
	Company  string
	Location string
}

func scrapeLinkedIn(_ context.Context, page *Page) Result {
	og := OpenGraph(page.Doc)
	tw := TwitterCard(page.Doc)

	name := CleanName(firstNonEmpty(og.Get("title"), tw.Get("title"), page.Title), PlatformLinkedIn)

	raw := firstNonEmpty(og.Get("description"), tw.Get("description"))
	description := CleanLinkedInDescription(raw)

	authenticated := og.Get("description") == ""
	if authenticated {
		card := extractProfileCard(page.Doc, name)
		slog.Debug("linkedin profile card",
			"headline", card.Headline,
			"company", card.Company,
			"location", card.Location,
		)
		if card.Headline != "" && description == "" {
			parts := []string{card.Headline}
			if card.Company != "" {
				parts = append(parts, card.Company)
			}
			description = strings.Join(parts, " · ")
			raw = description
		}
	}

	image := firstNonEmpty(og.Get("image"), tw.Get("image"))
	if !media.IsValidProfileImage(image) {
		image = ""
	}
	if image == "" && authenticated {
		image = extractLinkedInPhotoURL(page.HTML)
	}

	branch := "public"
	if authenticated {
		branch = "authenticated"
	}
	slog.Info("linkedin profile scraped",
		"branch", branch,
		"url", page.URL,
		"hasName", name != "",
		"hasDescription", description != "",
		"hasImage", image != "",
	)

	return Result{
		Name:           name,
		RawDescription: raw,
		Description:    description,
		ImageURL:       image,
		Authenticated:  authenticated,
	}
}

// extractProfileCard mines the logged-in profile card for headline,
// company and location, skipping boilerplate and the person's own name.
func extractProfileCard(doc *goquery.Document, name string) profileCard {
	var card profileCard
	if doc == nil || len(doc.Nodes) == 0 {
		return card
	}

	anchor := findTextNode(doc.Nodes[0], contactInfoAnchor)
	if anchor == nil {
		return card
	}
	container := anchor
	for i := 0; i < profileCardDepth && container.Parent != nil; i++ {
		container = container.Parent
	}
	if container.Type != html.ElementNode && container.Type != html.DocumentNode {
		return card
	}

	nameLower := strings.ToLower(name)
	var fields []string
	goquery.NewDocumentFromNode(container).Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strippedText(p)
		n := utf8.RuneCountInString(text)
		if n < minFieldRunes || n > maxFieldRunes {
			return
		}
		lower := strings.ToLower(text)
		if profileCardSkip[lower] {
			return
		}
		if nameLower != "" && lower == nameLower {
			return
		}
		if reDegreeMarker.MatchString(text) {
			return
		}
		if reLeadingDots.MatchString(text) && n < 15 {
			return
		}
		fields = append(fields, text)
	})

	if len(fields) > 0 {
		card.Headline = fields[0]
	}
	if len(fields) > 1 {
		card.Company = fields[1]
	}
	if len(fields) > 2 {
		card.Location = fields[2]
	}
	return card
}

// findTextNode returns the first text node, in document order, containing
// substr.
func findTextNode(n *html.Node, substr string) *html.Node {
	if n.Type == html.TextNode && strings.Contains(n.Data, substr) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTextNode(c, substr); found != nil {
			return found
		}
	}
	return nil
}

// strippedText joins the trimmed text nodes under s without separators.
func strippedText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}

// extractLinkedInPhotoURL rebuilds the profile photo URL embedded in the
// JSON of a logged-in profile page, preferring larger sizes.
func extractLinkedInPhotoURL(rawHTML string) string {
	root := rePhotoRoot.FindStringSubmatch(rawHTML)
	if root == nil {
		return ""
	}
	for i, re := range rePhotoSuffixes {
		m := re.FindStringSubmatch(rawHTML)
		if m == nil {
			continue
		}
		return unescapeJSONString(root[1] + "shrink_" + photoSizes[i] + m[1])
	}
	return ""
}

// unescapeJSONString decodes \uXXXX escapes. The input never contains
// quotes or other backslash escapes, so it can be unquoted as a Go string.
func unescapeJSONString(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	out, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return strings.ReplaceAll(s, `\u0026`, "&")
	}
	return out
}
