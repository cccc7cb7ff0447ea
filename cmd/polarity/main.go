package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/spacesedan/polarity/config"
	"github.com/spacesedan/polarity/internal/api"
	"github.com/spacesedan/polarity/internal/clients"
	"github.com/spacesedan/polarity/internal/directory"
	"github.com/spacesedan/polarity/internal/logging"
	"github.com/spacesedan/polarity/internal/monitoring"
	"github.com/spacesedan/polarity/internal/processing"
	"github.com/spacesedan/polarity/internal/sentiment"
)

type serveFlags struct {
	env       string
	addr      string
	fedditURL string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := serveFlags{}

	cmd := &cobra.Command{
		Use:   "polarity",
		Short: "Serve sentiment polarity of recent subfeddit comments",
		Long: `polarity resolves a subfeddit by name, fetches its most recent comments
from the Feddit API, scores each one with VADER and serves the result on
GET /polarity/{subfeddit}?sort&limit&date_range.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags)
		},
	}
	cmd.Version = "0.1.0"

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	cmd.Flags().StringVar(&flags.env, "env", env, "environment name, loads config/envs/.env.<env>")
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&flags.fedditURL, "feddit-url", "", "Feddit base URL (overrides FEDDIT_BASE_URL)")

	return cmd
}

func run(parent context.Context, flags serveFlags) error {
	if parent == nil {
		parent = context.Background()
	}

	config.LoadEnv(flags.env)
	cfg := config.Load()
	if flags.addr != "" {
		cfg.HTTPAddr = flags.addr
	}
	if flags.fedditURL != "" {
		cfg.FedditBaseURL = flags.fedditURL
	}

	logging.InitLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fedditClient := clients.NewFedditClient(cfg.FedditBaseURL, cfg.UpstreamTimeout, cfg.SubfedditPageSize)

	// Every request depends on the directory; without it there is nothing to serve.
	dir, err := directory.Build(ctx, fedditClient)
	if err != nil {
		slog.Error("[Main] Failed to build subfeddit directory",
			slog.String("feddit", cfg.FedditBaseURL),
			slog.String("error", err.Error()))
		return err
	}

	var scorer sentiment.Scorer = sentiment.NewVaderScorer()
	if cfg.ValkeyAddress != "" {
		valkeyClient, err := clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			UseTLS:   cfg.ValkeyTLS,
			TTL:      cfg.ScoreCacheTTL,
		})
		if err != nil {
			slog.Warn("[Main] Score cache disabled", slog.String("error", err.Error()))
		} else {
			defer valkeyClient.Close()
			scorer = sentiment.NewCachedScorer(scorer, valkeyClient, "vader")
		}
	}

	pipeline := processing.NewPipeline(dir, fedditClient, scorer, processing.Options{
		PageSize:     cfg.CommentPageSize,
		DefaultLimit: cfg.DefaultCommentLimit,
		Workers:      cfg.ScoreWorkers,
	})

	upstreamHealthy := &atomic.Bool{}
	upstreamHealthy.Store(true)
	go monitoring.MonitorUpstreamHealth(ctx, fedditClient, upstreamHealthy, cfg.HealthcheckInterval)
	go dir.RunRefresher(ctx, cfg.DirectoryRefreshInterval)

	handlers := api.NewPolarityHandlers(pipeline, dir, upstreamHealthy)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("[Main] Server running", slog.String("addr", srv.Addr), slog.Int("subfeddits", dir.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		slog.Info("[Main] Shutting down server gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Server shutdown error", slog.String("error", err.Error()))
		return err
	}

	slog.Info("[Main] HTTP server stopped")
	return nil
}
