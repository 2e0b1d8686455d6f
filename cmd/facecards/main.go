package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/facecards/api"
	"github.com/use-agent/facecards/api/handler"
	"github.com/use-agent/facecards/cache"
	"github.com/use-agent/facecards/config"
	"github.com/use-agent/facecards/engine"
	"github.com/use-agent/facecards/importer"
	"github.com/use-agent/facecards/llm"
	"github.com/use-agent/facecards/media"
	"github.com/use-agent/facecards/scraper"
	"github.com/use-agent/facecards/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("facecards starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"dataDir", cfg.Storage.DataDir,
	)

	// ── 3. Storage ──────────────────────────────────────────────────
	var mirror media.Mirror
	if cfg.S3.Enabled {
		m, err := media.NewS3Mirror(context.Background(), media.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			slog.Error("failed to initialise S3 mirror", "error", err)
			os.Exit(1)
		}
		mirror = m
		slog.Info("S3 photo mirror enabled", "bucket", cfg.S3.Bucket)
	}

	photos, err := media.NewFileStore(cfg.Storage.MediaDir(), mirror)
	if err != nil {
		slog.Error("failed to initialise media store", "error", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.Storage.DatabasePath())
	if err != nil {
		slog.Error("failed to open database", "path", cfg.Storage.DatabasePath(), "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// ── 4. LLM ──────────────────────────────────────────────────────
	completer := llm.NewCompleter(cfg.LLM.Provider, cfg.LLM.APIKey(), cfg.LLM.Model, cfg.LLM.OpenAIBaseURL)
	summaries := cache.New(cfg.Summary.MaxEntries, cfg.Summary.TTL)
	llmService := llm.NewService(completer, summaries, cfg.LLM.Timeout)
	var extractor scraper.ProfileExtractor
	if llmService.Enabled() {
		extractor = llmService
		slog.Info("LLM enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	} else {
		slog.Info("LLM disabled: no API key for provider", "provider", cfg.LLM.Provider)
	}

	// ── 5. Scraper ──────────────────────────────────────────────────
	downloader := media.NewDownloader(nil, photos, cfg.Scraper.ImageTimeout)
	sc := scraper.New(engine.NewHTTPEngine(), downloader, extractor, scraper.Options{
		LinkedInCookie: cfg.Scraper.LinkedInSessionCookie,
		FetchTimeout:   cfg.Scraper.FetchTimeout,
	})

	var browser *engine.RodEngine
	if cfg.Browser.Enabled {
		browser = engine.NewRodEngine(engine.RodOptions{
			Headless:   cfg.Browser.Headless,
			NoSandbox:  cfg.Browser.NoSandbox,
			BrowserBin: cfg.Browser.BrowserBin,
			Timeout:    cfg.Browser.Timeout,
		})
		defer browser.Close()
		sc.SetRenderer(browser)
		slog.Info("browser rendering enabled for JavaScript-only pages")
	}

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(api.Deps{
		Scraper:    sc,
		Summarizer: llmService,
		People:     db,
		Photos:     photos,
		Importer:   importer.New(db, downloader, cfg.Scraper.ImportPhotoTimeout),
		Health: handler.HealthInfo{
			LLM:             llmService,
			LinkedInSession: cfg.Scraper.LinkedInSessionCookie != "",
			Browser:         cfg.Browser.Enabled,
		},
	}, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Deferred: browser.Close kills Chrome, db.Close flushes SQLite.
	slog.Info("facecards stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
