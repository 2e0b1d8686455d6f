package engine

import (
	"strings"
	"testing"
)

func TestLooksLikeShell(t *testing.T) {
	prose := strings.Repeat("Jane writes about painting and light in Lisbon. ", 12)
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"empty body", `<html><body></body></html>`, true},
		{"spa root", `<html><body><p>` + prose + `</p><div id="root"></div></body></html>`, true},
		{"noscript warning", `<html><body><p>` + prose + `</p><noscript>You need to enable JavaScript to run this app.</noscript></body></html>`, true},
		{"server rendered", `<html><body><main><p>` + prose + `</p></main></body></html>`, false},
		{"script text ignored", `<html><body><script>` + prose + `</script></body></html>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeShell(tt.html); got != tt.want {
				t.Errorf("LooksLikeShell = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleText(t *testing.T) {
	got := VisibleText(`<html><head><title>T</title></head><body><h1>Jane</h1><style>h1{}</style><p> Painter </p></body></html>`)
	if got != "Jane Painter" {
		t.Errorf("VisibleText = %q", got)
	}
}

func TestIsTrackerDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"www.google-analytics.com", true},
		{"pagead2.googlesyndication.com", true},
		{"HOTJAR.COM", true},
		{"example.com", false},
		{"notsegment.com", false},
	}
	for _, tt := range tests {
		if got := isTrackerDomain(tt.host); got != tt.want {
			t.Errorf("isTrackerDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
