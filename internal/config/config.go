package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for everything the environment leaves unset.
const (
	DefaultPort           = "8080"
	DefaultGitHubBaseURL  = "https://api.github.com"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnalyzeTimeout = 60 * time.Second
	DefaultCacheTTL       = 5 * time.Minute
)

// Config holds everything read from the environment. It is loaded once at
// startup and never re-read.
type Config struct {
	Port string

	// GitHub REST API. Token is optional; absence just means the
	// unauthenticated rate ceiling.
	GitHubBaseURL string
	GitHubToken   string

	// LLM provider, reached through its OpenAI-compatible endpoint.
	GeminiBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	// AnalyzeProxyURL points at a same-origin deployment that holds the
	// credential server-side. Used only when GeminiAPIKey is empty.
	AnalyzeProxyURL string

	TargetYear     int
	AnalyzeTimeout time.Duration
	CacheTTL       time.Duration
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", DefaultPort),
		GitHubBaseURL:   getEnvOrDefault("GITHUB_BASE_URL", DefaultGitHubBaseURL),
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		GeminiBaseURL:   getEnvOrDefault("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnvOrDefault("GEMINI_MODEL", DefaultGeminiModel),
		AnalyzeProxyURL: os.Getenv("ANALYZE_PROXY_URL"),
		TargetYear:      getEnvInt("TARGET_YEAR", time.Now().Year()),
		AnalyzeTimeout:  getEnvDuration("ANALYZE_TIMEOUT", DefaultAnalyzeTimeout),
		CacheTTL:        getEnvDuration("CACHE_TTL", DefaultCacheTTL),
	}

	cfg.GitHubBaseURL = strings.TrimSuffix(cfg.GitHubBaseURL, "/")
	cfg.GeminiBaseURL = strings.TrimSuffix(cfg.GeminiBaseURL, "/")
	cfg.AnalyzeProxyURL = strings.TrimSuffix(cfg.AnalyzeProxyURL, "/")

	return cfg
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
