package scraper

import "testing"

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://www.linkedin.com/in/janedoe/", PlatformLinkedIn},
		{"HTTPS://WWW.LINKEDIN.COM/in/x", PlatformLinkedIn},
		{"https://twitter.com/janedoe", PlatformTwitter},
		{"https://x.com/janedoe", PlatformTwitter},
		{"https://www.instagram.com/janedoe/", PlatformInstagram},
		{"https://www.facebook.com/janedoe", PlatformFacebook},
		{"https://fb.com/janedoe", PlatformFacebook},
		{"https://janedoe.dev/about", PlatformOther},
		{"", PlatformOther},
	}
	for _, tt := range tests {
		if got := DetectPlatform(tt.url); got != tt.want {
			t.Errorf("DetectPlatform(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  linkedin.com/in/jane  ", "https://linkedin.com/in/jane"},
		{"http://example.com", "http://example.com"},
		{"https://example.com", "https://example.com"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalTwitterURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://twitter.com/jane_doe", "https://x.com/jane_doe"},
		{"https://mobile.twitter.com/jane_doe/status/123", "https://x.com/jane_doe"},
		{"https://x.com/jane_doe?s=20", "https://x.com/jane_doe"},
		{"https://x.com/", "https://x.com/"},
	}
	for _, tt := range tests {
		if got := CanonicalTwitterURL(tt.in); got != tt.want {
			t.Errorf("CanonicalTwitterURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBotUserAgentPlatforms(t *testing.T) {
	want := map[Platform]bool{
		PlatformLinkedIn:  false,
		PlatformTwitter:   true,
		PlatformInstagram: true,
		PlatformFacebook:  true,
		PlatformOther:     false,
	}
	for _, p := range Platforms {
		if got := p.usesBotUserAgent(); got != want[p] {
			t.Errorf("%s.usesBotUserAgent() = %v, want %v", p, got, want[p])
		}
	}
}
