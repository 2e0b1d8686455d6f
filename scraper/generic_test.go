package scraper

import (
	"context"
	"testing"

	"github.com/use-agent/facecards/llm"
)

type fakeExtractor struct {
	profile *llm.ProfileExtraction
	ok      bool

	calls  int
	text   string
	images []llm.PageImage
}

func (f *fakeExtractor) ExtractProfile(_ context.Context, pageText string, images []llm.PageImage, _ string) (*llm.ProfileExtraction, bool) {
	f.calls++
	f.text = pageText
	f.images = images
	return f.profile, f.ok
}

func staticText(text string) TextExtractor {
	return func(string, string) string { return text }
}

func TestGenericCompleteMetadataSkipsExtractor(t *testing.T) {
	fx := &fakeExtractor{ok: true, profile: &llm.ProfileExtraction{Name: "Wrong"}}
	g := &genericScraper{extractor: fx, pageText: staticText("text")}
	page := mustPage(t, "https://ada.example.com/", `<html><head>
		<meta property="og:title" content="Ada Lovelace | Home">
		<meta property="og:description" content="Analyst of the Analytical Engine">
		<meta property="og:image" content="https://ada.example.com/ada.jpg">
	</head></html>`)

	got := g.Scrape(context.Background(), page)
	if fx.calls != 0 {
		t.Errorf("extractor called %d times with complete metadata", fx.calls)
	}
	want := Result{
		Name:           "Ada Lovelace",
		RawDescription: "Analyst of the Analytical Engine",
		Description:    "Analyst of the Analytical Engine",
		ImageURL:       "https://ada.example.com/ada.jpg",
	}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestGenericExtractorFillsOnlyMissingFields(t *testing.T) {
	fx := &fakeExtractor{ok: true, profile: &llm.ProfileExtraction{
		Name:     "Someone Else",
		Context:  "Mathematician",
		ImageURL: "https://ada.example.com/img/headshot.jpg",
	}}
	g := &genericScraper{extractor: fx, pageText: staticText("About Ada")}
	page := mustPage(t, "https://ada.example.com/about/", `<html><head>
		<title>Ada Lovelace</title>
	</head><body>
		<img src="img/headshot.jpg" alt="Ada">
		<img src="data:image/png;base64,AAAA" alt="inline">
		<img src="" alt="empty">
		<img src="https://cdn.example.com/logo.png">
	</body></html>`)

	got := g.Scrape(context.Background(), page)
	if fx.calls != 1 {
		t.Fatalf("extractor calls = %d, want 1", fx.calls)
	}
	if fx.text != "About Ada" {
		t.Errorf("extractor text = %q", fx.text)
	}
	wantImages := []llm.PageImage{
		{Src: "https://ada.example.com/about/img/headshot.jpg", Alt: "Ada"},
		{Src: "https://cdn.example.com/logo.png", Alt: ""},
	}
	if len(fx.images) != len(wantImages) {
		t.Fatalf("images = %+v", fx.images)
	}
	for i := range wantImages {
		if fx.images[i] != wantImages[i] {
			t.Errorf("images[%d] = %+v, want %+v", i, fx.images[i], wantImages[i])
		}
	}

	if got.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want title to win over extractor", got.Name)
	}
	if got.Description != "Mathematician" || got.RawDescription != "Mathematician" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.ImageURL != "https://ada.example.com/img/headshot.jpg" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
}

func TestGenericHeuristicsWithoutExtractor(t *testing.T) {
	g := &genericScraper{}
	page := mustPage(t, "https://ada.example.com/", `<html><body>
		<h1>Hi</h1>
		<h2>Ada Lovelace</h2>
		<img src="/logo.png" alt="Site logo">
		<img src="/images/ada.jpg" alt="ada lovelace at her desk">
	</body></html>`)

	got := g.Scrape(context.Background(), page)
	if got.Name != "Ada Lovelace" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.ImageURL != "https://ada.example.com/images/ada.jpg" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	if got.Description != "" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestGenericExtractorUnavailable(t *testing.T) {
	fx := &fakeExtractor{ok: false}
	g := &genericScraper{extractor: fx, pageText: staticText("")}
	page := mustPage(t, "https://example.com/", `<html><body>
		<h1>A heading that is far too long to be anybody's name on a personal page</h1>
		<img src="https://cdn.example.com/team/avatar-42.png">
	</body></html>`)

	got := g.Scrape(context.Background(), page)
	if fx.calls != 1 {
		t.Errorf("extractor calls = %d", fx.calls)
	}
	if got.Name != "" {
		t.Errorf("Name = %q, want empty", got.Name)
	}
	if got.ImageURL != "https://cdn.example.com/team/avatar-42.png" {
		t.Errorf("ImageURL = %q, want keyword match", got.ImageURL)
	}
}

func TestFindProfileImage(t *testing.T) {
	images := []llm.PageImage{
		{Src: "https://x/banner.jpg", Alt: "banner"},
		{Src: "https://x/me.jpg", Alt: "Portrait of me"},
		{Src: "https://x/jane.jpg", Alt: "Jane Doe"},
	}
	if got := findProfileImage(images, "Jane Doe"); got != "https://x/me.jpg" {
		t.Errorf("got %q, want first match in page order", got)
	}
	if got := findProfileImage(images[:1], "Jane Doe"); got != "" {
		t.Errorf("got %q, want none", got)
	}
}
