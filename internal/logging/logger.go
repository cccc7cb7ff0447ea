package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
)

func InitLogger(level string) {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})

	slog.SetDefault(slog.New(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestLogger logs one line per request through the default slog logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Int("status", status),
			slog.Duration("elapsed", time.Since(start)),
		}

		switch {
		case status >= 500:
			slog.Error("[API] Request failed", attrs...)
		case status >= 400:
			slog.Warn("[API] Request rejected", attrs...)
		default:
			slog.Info("[API] Request served", attrs...)
		}
	}
}
