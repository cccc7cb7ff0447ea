package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string
	GinMode  string
	LogLevel string

	FedditBaseURL     string
	UpstreamTimeout   time.Duration
	CommentPageSize   int
	SubfedditPageSize int

	DefaultCommentLimit int
	ScoreWorkers        int

	DirectoryRefreshInterval time.Duration
	HealthcheckInterval      time.Duration

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	ScoreCacheTTL  time.Duration
}

func Default() *Config {
	return &Config{
		HTTPAddr: ":5000",
		GinMode:  "release",
		LogLevel: "info",

		FedditBaseURL:     "http://localhost:8080",
		UpstreamTimeout:   20 * time.Second,
		CommentPageSize:   22000,
		SubfedditPageSize: 1000,

		DefaultCommentLimit: 25,
		ScoreWorkers:        4,

		HealthcheckInterval: 15 * time.Second,
		ScoreCacheTTL:       24 * time.Hour,
	}
}

// Load reads the process environment on top of Default. Malformed values are
// logged and fall back to their default.
func Load() *Config {
	cfg := Default()

	cfg.HTTPAddr = getString("HTTP_ADDR", cfg.HTTPAddr)
	cfg.GinMode = getString("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getString("LOG_LEVEL", cfg.LogLevel)

	cfg.FedditBaseURL = getString("FEDDIT_BASE_URL", cfg.FedditBaseURL)
	cfg.UpstreamTimeout = getDuration("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.CommentPageSize = getInt("COMMENT_PAGE_SIZE", cfg.CommentPageSize)
	cfg.SubfedditPageSize = getInt("SUBFEDDIT_PAGE_SIZE", cfg.SubfedditPageSize)

	cfg.DefaultCommentLimit = getInt("DEFAULT_COMMENT_LIMIT", cfg.DefaultCommentLimit)
	cfg.ScoreWorkers = getInt("SCORE_WORKERS", cfg.ScoreWorkers)

	cfg.DirectoryRefreshInterval = getDuration("DIRECTORY_REFRESH_INTERVAL", cfg.DirectoryRefreshInterval)
	cfg.HealthcheckInterval = getDuration("HEALTHCHECK_INTERVAL", cfg.HealthcheckInterval)

	cfg.ValkeyAddress = os.Getenv("VALKEY_INIT_ADDRESS")
	cfg.ValkeyPassword = os.Getenv("VALKEY_PASSWORD")
	cfg.ValkeyTLS = os.Getenv("VALKEY_TLS") == "true"
	cfg.ScoreCacheTTL = getDuration("SCORE_CACHE_TTL", cfg.ScoreCacheTTL)

	return cfg
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key), slog.String("value", raw), slog.Int("default", fallback))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key), slog.String("value", raw), slog.Duration("default", fallback))
		return fallback
	}
	return v
}
