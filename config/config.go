package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	S3        S3Config
	Scraper   ScraperConfig
	Browser   BrowserConfig
	LLM       LLMConfig
	Summary   SummaryCacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 5000
	Mode string // "debug", "release", "test"; default: "release"
}

// StorageConfig locates the on-disk data directory.
type StorageConfig struct {
	// DataDir holds the database and the media directory.
	DataDir string // default: ~/.names-and-faces
}

// MediaDir is where optimised face photos are written.
func (s StorageConfig) MediaDir() string { return filepath.Join(s.DataDir, "media") }

// DatabasePath is the SQLite file backing the people store.
func (s StorageConfig) DatabasePath() string { return filepath.Join(s.DataDir, "names_and_faces.db") }

// S3Config enables an optional S3-compatible mirror for stored photos.
type S3Config struct {
	Enabled         bool // default: false
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool   // default: false
	Prefix          string // default: "faces/"
}

// ScraperConfig controls profile scraping.
type ScraperConfig struct {
	// LinkedInSessionCookie is the li_at cookie value. Empty disables
	// authenticated LinkedIn scraping.
	LinkedInSessionCookie string

	// FetchTimeout bounds the profile page fetch.
	FetchTimeout time.Duration // default: 15s

	// ImageTimeout bounds a single image download.
	ImageTimeout time.Duration // default: 15s

	// ImportPhotoTimeout bounds photo downloads during CSV import.
	ImportPhotoTimeout time.Duration // default: 10s
}

// BrowserConfig controls the optional headless browser used to render
// JavaScript-only generic pages.
type BrowserConfig struct {
	Enabled    bool          // default: false
	Headless   bool          // default: true
	NoSandbox  bool          // default: false
	BrowserBin string        // overrides the Chromium binary path
	Timeout    time.Duration // default: 20s
}

// LLMConfig selects the language model used for fallback extraction and
// summarisation. An empty key for the selected provider disables both.
type LLMConfig struct {
	Provider        string // "anthropic" or "openai"; default: "anthropic"
	Model           string // default depends on provider
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string        // default: "https://api.openai.com/v1"
	Timeout         time.Duration // default: 15s
}

// APIKey returns the credential for the selected provider.
func (l LLMConfig) APIKey() string {
	if l.Provider == "openai" {
		return l.OpenAIAPIKey
	}
	return l.AnthropicAPIKey
}

// SummaryCacheConfig controls the summary cache.
type SummaryCacheConfig struct {
	MaxEntries int           // default: 1000
	TTL        time.Duration // default: 24h
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication. The app is single-user and
	// binds to localhost by default, so this is off unless exposed.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig throttles outbound scrapes per client.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	provider := envOr("FACES_LLM_PROVIDER", "anthropic")
	return &Config{
		Server: ServerConfig{
			Host: envOr("FACES_HOST", "127.0.0.1"),
			Port: envIntOr("FACES_PORT", 5000),
			Mode: envOr("FACES_MODE", "release"),
		},
		Storage: StorageConfig{
			DataDir: expandHome(envOr("NAMES_AND_FACES_DATA_DIR", "~/.names-and-faces")),
		},
		S3: S3Config{
			Enabled:         envBoolOr("FACES_S3_ENABLED", false),
			Endpoint:        os.Getenv("FACES_S3_ENDPOINT"),
			Region:          os.Getenv("FACES_S3_REGION"),
			Bucket:          os.Getenv("FACES_S3_BUCKET"),
			AccessKeyID:     os.Getenv("FACES_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("FACES_S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    envBoolOr("FACES_S3_PATH_STYLE", false),
			Prefix:          envOr("FACES_S3_PREFIX", "faces/"),
		},
		Scraper: ScraperConfig{
			LinkedInSessionCookie: strings.TrimSpace(os.Getenv("LINKEDIN_LI_AT")),
			FetchTimeout:          envDurationOr("FACES_FETCH_TIMEOUT", 15*time.Second),
			ImageTimeout:          envDurationOr("FACES_IMAGE_TIMEOUT", 15*time.Second),
			ImportPhotoTimeout:    envDurationOr("FACES_IMPORT_PHOTO_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Enabled:    envBoolOr("FACES_BROWSER_ENABLED", false),
			Headless:   envBoolOr("FACES_BROWSER_HEADLESS", true),
			NoSandbox:  envBoolOr("FACES_BROWSER_NO_SANDBOX", false),
			BrowserBin: os.Getenv("FACES_BROWSER_BIN"),
			Timeout:    envDurationOr("FACES_BROWSER_TIMEOUT", 20*time.Second),
		},
		LLM: LLMConfig{
			Provider:        provider,
			Model:           envOr("FACES_LLM_MODEL", defaultModel(provider)),
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Timeout:         envDurationOr("FACES_LLM_TIMEOUT", 15*time.Second),
		},
		Summary: SummaryCacheConfig{
			MaxEntries: envIntOr("FACES_SUMMARY_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("FACES_SUMMARY_CACHE_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FACES_AUTH_ENABLED", false),
			APIKeys: envSliceOr("FACES_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FACES_RATE_RPS", 1.0),
			Burst:             envIntOr("FACES_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("FACES_LOG_LEVEL", "info"),
			Format: envOr("FACES_LOG_FORMAT", "text"),
		},
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "claude-sonnet-4-6"
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
