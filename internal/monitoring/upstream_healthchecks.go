package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorUpstreamHealth probes the upstream immediately and then every
// interval, storing the outcome in healthy until ctx is done.
func MonitorUpstreamHealth(ctx context.Context, pinger Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check(ctx, pinger, healthy, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check(ctx, pinger, healthy, interval)
		}
	}
}

func check(ctx context.Context, pinger Pinger, healthy *atomic.Bool, timeout time.Duration) {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := pinger.Ping(pingCtx)
	wasHealthy := healthy.Swap(err == nil)

	switch {
	case err != nil && wasHealthy:
		slog.Warn("[HealthCheck] Upstream is unhealthy", slog.String("error", err.Error()))
	case err == nil && !wasHealthy:
		slog.Info("[HealthCheck] Upstream recovered")
	}
}
