// Package llm is the optional language-model layer: it fills gaps on
// generic profile pages and condenses long bios into a one-line context.
// Every operation degrades to "no answer" instead of failing the caller.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/facecards/cache"
)

// Limits applied to every extraction request.
const (
	MaxPageTextRunes = 3000
	MaxPageImages    = 20

	extractMaxTokens   = 200
	summarizeMaxTokens = 150
)

const summarizePrompt = `You condense a person's social-profile bio into a memory aid.

Reply with one short line, under 100 characters, naming their role and organisation or the single most distinctive fact about them. Leave out filler and praise words such as "experienced" or "passionate".

Examples:
- "ML researcher at DeepMind, works on language models"
- "CEO of Stripe"
- "Philosophy professor at NYU"
- "Cofounder of Reddit, investor"

Many of these people work in AI safety. The organisation name is usually enough; only name the role when the organisation is large enough that it is ambiguous. Write Google DeepMind as "GDM".`

const extractPrompt = `You read the visible text and image list of a personal web page and extract profile details:
1. the person's full name
2. a context line under 100 characters: their role, organisation or most identifying fact
3. the URL of their profile photo or headshot, if there is one

Reply with only a JSON object and no markdown:
{"name": "...", "context": "...", "image_url": "..."}

For image_url choose the image most likely to be a headshot from its filename or alt text (words such as "profile", "photo", "headshot", "avatar", or the person's name). Use an empty string when no image fits.

Use an empty string for any field you cannot determine.`

// Completer sends one system+user exchange to a model and returns the
// text of its reply.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// PageImage is an <img> found on a scraped page.
type PageImage struct {
	Src string
	Alt string
}

// ProfileExtraction is the model's reading of a generic profile page.
type ProfileExtraction struct {
	Name     string `json:"name"`
	Context  string `json:"context"`
	ImageURL string `json:"image_url"`
}

// Service wraps a Completer with the profile prompts. A Service with no
// completer is inactive: every call reports no result.
type Service struct {
	completer Completer
	summaries *cache.Cache
	timeout   time.Duration
}

// NewService creates a Service. completer may be nil; summaries may be nil
// to disable caching.
func NewService(completer Completer, summaries *cache.Cache, timeout time.Duration) *Service {
	return &Service{completer: completer, summaries: summaries, timeout: timeout}
}

// Enabled reports whether a model is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.completer != nil
}

// ExtractProfile asks the model for the name, context and photo on a
// generic page. ok is false when the service is inactive or the reply is
// unusable.
func (s *Service) ExtractProfile(ctx context.Context, pageText string, images []PageImage, pageURL string) (*ProfileExtraction, bool) {
	if !s.Enabled() {
		return nil, false
	}

	reply, err := s.complete(ctx, extractPrompt, extractionMessage(pageText, images, pageURL), extractMaxTokens)
	if err != nil {
		slog.Warn("profile extraction failed", "url", pageURL, "error", err)
		return nil, false
	}

	var out ProfileExtraction
	if err := json.Unmarshal([]byte(stripFences(reply)), &out); err != nil {
		slog.Warn("profile extraction returned invalid JSON", "url", pageURL, "error", err)
		return nil, false
	}
	return &out, true
}

// Summarize condenses a bio into one line. ok is false when the service is
// inactive, the description is blank, or the model call fails.
func (s *Service) Summarize(ctx context.Context, description, name string) (string, bool) {
	if !s.Enabled() || strings.TrimSpace(description) == "" {
		return "", false
	}

	key := cache.Key(name, description)
	if s.summaries != nil {
		if summary, ok := s.summaries.Get(key); ok {
			slog.Debug("summary cache hit", "name", name)
			return summary, true
		}
	}

	reply, err := s.complete(ctx, summarizePrompt, fmt.Sprintf("Person: %s\nBio: %s", name, description), summarizeMaxTokens)
	if err != nil {
		slog.Warn("summarize failed", "name", name, "error", err)
		return "", false
	}
	summary := stripQuotes(reply)
	if summary == "" {
		return "", false
	}
	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}
	return summary, true
}

func (s *Service) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.completer.Complete(ctx, system, user, maxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// extractionMessage renders the user turn of an extraction request.
func extractionMessage(pageText string, images []PageImage, pageURL string) string {
	if len(images) > MaxPageImages {
		images = images[:MaxPageImages]
	}
	lines := make([]string, len(images))
	for i, img := range images {
		lines[i] = fmt.Sprintf(`  - src="%s" alt="%s"`, img.Src, img.Alt)
	}
	return fmt.Sprintf("Page URL: %s\n\nPage text:\n%s\n\nImages on page:\n%s",
		pageURL, truncateRunes(pageText, MaxPageTextRunes), strings.Join(lines, "\n"))
}

// stripFences removes a surrounding ``` block (with optional language tag).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = s[3:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return s
}

// stripQuotes removes one pair of surrounding double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// NewCompleter builds the completer for provider, or nil when apiKey is
// empty.
func NewCompleter(provider, apiKey, model, openAIBaseURL string) Completer {
	if apiKey == "" {
		return nil
	}
	if provider == "openai" {
		return NewOpenAICompleter(nil, apiKey, model, openAIBaseURL)
	}
	return NewAnthropicCompleter(apiKey, model)
}
