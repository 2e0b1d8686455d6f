package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var metaMatcher = cascadia.MustCompile("meta")

// Tags maps metadata keys (prefix removed) to their content.
type Tags map[string]string

// Get returns the value for key, or "" when absent.
func (t Tags) Get(key string) string { return t[key] }

// First returns the first non-empty value among keys.
func (t Tags) First(keys ...string) string {
	for _, k := range keys {
		if v := t[k]; v != "" {
			return v
		}
	}
	return ""
}

// OpenGraph collects og:* tags. The key comes from the property attribute,
// or from name when property is empty; later duplicates overwrite earlier
// ones.
func OpenGraph(doc *goquery.Document) Tags {
	return collectMeta(doc, "og:", "property", "name")
}

// TwitterCard collects twitter:* tags, keyed by name then property.
func TwitterCard(doc *goquery.Document) Tags {
	return collectMeta(doc, "twitter:", "name", "property")
}

func collectMeta(doc *goquery.Document, prefix, primary, secondary string) Tags {
	tags := Tags{}
	doc.FindMatcher(metaMatcher).Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr(primary, "")
		if key == "" {
			key = s.AttrOr(secondary, "")
		}
		if !strings.HasPrefix(key, prefix) {
			return
		}
		tags[key[len(prefix):]] = s.AttrOr("content", "")
	})
	return tags
}

// metaByName returns the content of the first <meta name="..."> tag.
func metaByName(doc *goquery.Document, name string) string {
	content := ""
	doc.FindMatcher(metaMatcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.AttrOr("name", "") == name {
			content = s.AttrOr("content", "")
			return false
		}
		return true
	})
	return content
}
