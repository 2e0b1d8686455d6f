package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/facecards/cache"
)

type fakeCompleter struct {
	reply string
	err   error

	calls     int
	system    string
	user      string
	maxTokens int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, maxTokens int) (string, error) {
	f.calls++
	f.system, f.user, f.maxTokens = system, user, maxTokens
	return f.reply, f.err
}

func TestInactiveServiceReportsNothing(t *testing.T) {
	for _, s := range []*Service{nil, NewService(nil, nil, time.Second)} {
		if s.Enabled() {
			t.Fatal("service without completer reported enabled")
		}
		if _, ok := s.ExtractProfile(context.Background(), "text", nil, "https://example.com"); ok {
			t.Fatal("inactive ExtractProfile returned ok")
		}
		if _, ok := s.Summarize(context.Background(), "bio", "name"); ok {
			t.Fatal("inactive Summarize returned ok")
		}
	}
}

func TestExtractProfileStripsFences(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"name\": \"Ada Lovelace\", \"context\": \"Analyst\", \"image_url\": \"https://example.com/ada.jpg\"}\n```"}
	s := NewService(fc, nil, time.Second)

	got, ok := s.ExtractProfile(context.Background(), "About Ada", []PageImage{{Src: "https://example.com/ada.jpg", Alt: "Ada"}}, "https://example.com")
	if !ok {
		t.Fatal("ExtractProfile returned !ok")
	}
	if got.Name != "Ada Lovelace" || got.Context != "Analyst" || got.ImageURL != "https://example.com/ada.jpg" {
		t.Errorf("got %+v", got)
	}
	if fc.maxTokens != 200 {
		t.Errorf("maxTokens = %d, want 200", fc.maxTokens)
	}
	if !strings.Contains(fc.user, `  - src="https://example.com/ada.jpg" alt="Ada"`) {
		t.Errorf("image line missing from message:\n%s", fc.user)
	}
	if !strings.HasPrefix(fc.user, "Page URL: https://example.com\n\nPage text:\nAbout Ada\n\nImages on page:\n") {
		t.Errorf("unexpected message layout:\n%s", fc.user)
	}
}

func TestExtractProfileFailures(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"invalid json", &fakeCompleter{reply: "Ada Lovelace, analyst"}},
		{"completer error", &fakeCompleter{err: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.fc, nil, time.Second)
			if _, ok := s.ExtractProfile(context.Background(), "", nil, "https://example.com"); ok {
				t.Fatal("expected !ok")
			}
		})
	}
}

func TestExtractionMessageLimits(t *testing.T) {
	images := make([]PageImage, 25)
	for i := range images {
		images[i] = PageImage{Src: "s", Alt: "a"}
	}
	text := strings.Repeat("é", MaxPageTextRunes+100)

	msg := extractionMessage(text, images, "u")
	if n := strings.Count(msg, `  - src="s"`); n != MaxPageImages {
		t.Errorf("image lines = %d, want %d", n, MaxPageImages)
	}
	if n := strings.Count(msg, "é"); n != MaxPageTextRunes {
		t.Errorf("text runes = %d, want %d", n, MaxPageTextRunes)
	}
}

func TestSummarizeStripsQuotesAndCaches(t *testing.T) {
	fc := &fakeCompleter{reply: `  "CEO of Stripe"  `}
	s := NewService(fc, cache.New(10, time.Hour), time.Second)

	got, ok := s.Summarize(context.Background(), "Long bio about payments", "Patrick")
	if !ok || got != "CEO of Stripe" {
		t.Fatalf("Summarize = %q, %v", got, ok)
	}
	if fc.user != "Person: Patrick\nBio: Long bio about payments" {
		t.Errorf("user message = %q", fc.user)
	}
	if fc.maxTokens != 150 {
		t.Errorf("maxTokens = %d, want 150", fc.maxTokens)
	}

	if got, ok := s.Summarize(context.Background(), "Long bio about payments", "Patrick"); !ok || got != "CEO of Stripe" {
		t.Fatalf("cached Summarize = %q, %v", got, ok)
	}
	if fc.calls != 1 {
		t.Errorf("completer calls = %d, want 1", fc.calls)
	}
}

func TestSummarizeBlankDescription(t *testing.T) {
	fc := &fakeCompleter{reply: "x"}
	s := NewService(fc, nil, time.Second)
	if _, ok := s.Summarize(context.Background(), "   ", "Ada"); ok {
		t.Fatal("blank description returned ok")
	}
	if fc.calls != 0 {
		t.Fatal("completer called for blank description")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```\n{\"a\":1}\n```", "{\"a\":1}\n"},
		{"```json\n{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewCompleter(t *testing.T) {
	if NewCompleter("anthropic", "", "m", "") != nil {
		t.Error("empty key should yield nil completer")
	}
	if _, ok := NewCompleter("openai", "k", "m", "http://x").(*OpenAICompleter); !ok {
		t.Error("openai provider should yield OpenAICompleter")
	}
	if _, ok := NewCompleter("anthropic", "k", "m", "").(*AnthropicCompleter); !ok {
		t.Error("anthropic provider should yield AnthropicCompleter")
	}
}
