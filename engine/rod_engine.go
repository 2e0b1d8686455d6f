package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// RodOptions configures the headless browser.
type RodOptions struct {
	Headless   bool
	NoSandbox  bool
	BrowserBin string
	Timeout    time.Duration
}

// RodEngine renders pages in headless Chrome. The browser is launched on
// first use and reused until Close.
type RodEngine struct {
	opts RodOptions

	mu      sync.Mutex
	browser *rod.Browser
}

// NewRodEngine creates a RodEngine. No browser is started until Fetch.
func NewRodEngine(opts RodOptions) *RodEngine {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &RodEngine{opts: opts}
}

func (e *RodEngine) Name() string { return "browser" }

// connect launches and connects the browser once.
func (e *RodEngine) connect() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New().
		Headless(e.opts.Headless).
		NoSandbox(e.opts.NoSandbox)
	if e.opts.BrowserBin != "" {
		l = l.Bin(e.opts.BrowserBin)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)
	e.browser = browser
	return browser, nil
}

// Fetch navigates a fresh stealth tab to req.URL and returns the rendered
// DOM.
//
// Headers and cookies must be installed before navigation or the first
// request goes out without them.
func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	browser, err := e.connect()
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer func() { _ = page.Close() }()

	// ── 1. Stealth + request identity ───────────────────────────────
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}
	if len(req.Headers) > 0 {
		if ua, ok := req.Headers["User-Agent"]; ok {
			_ = proto.NetworkSetUserAgentOverride{UserAgent: ua}.Call(page)
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(req.Headers)}.Call(page)
	}
	for _, cookie := range req.Cookies {
		domain := cookie.Domain
		if domain == "" {
			if u, parseErr := url.Parse(req.URL); parseErr == nil {
				domain = u.Hostname()
			}
		}
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   "/",
		}.Call(page)
	}

	router := setupHijack(page)
	defer func() { _ = router.Stop() }()

	// ── 2. Navigate and let the DOM settle ──────────────────────────
	p := page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
	}

	// ── 3. Extract ──────────────────────────────────────────────────
	rawHTML, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read rendered html: %w", err)
	}
	statusCode := 200
	if res, evalErr := p.Eval(`() => {
		const e = performance.getEntriesByType("navigation");
		return e.length > 0 ? (e[0].responseStatus || 0) : 0;
	}`); evalErr == nil && res.Value.Int() > 0 {
		statusCode = res.Value.Int()
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &FetchResult{
		HTML:        rawHTML,
		Title:       evalStringOrEmpty(p, `() => document.title`),
		StatusCode:  statusCode,
		ContentType: "text/html",
		FinalURL:    finalURL,
		EngineName:  e.Name(),
	}, nil
}

// Close kills the browser process if one was started.
func (e *RodEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser == nil {
		return
	}
	if err := e.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	e.browser = nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
