package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 60

// HealthChecker is anything that can report whether its backend answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

func MonitorChatHealth(ctx context.Context, healthy *atomic.Bool, checker HealthChecker) {
	monitor(ctx, healthy, checker, time.Second*HEALTHCHECK_TIMER)
}

func monitor(ctx context.Context, healthy *atomic.Bool, checker HealthChecker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := checker.HealthCheck(ctx)
			wasHealthy := healthy.Swap(isHealthy)
			switch {
			case !isHealthy && wasHealthy:
				slog.Warn("[HealthCheck] DeepSeek API is unhealthy, AI chat disabled")
			case isHealthy && !wasHealthy:
				slog.Info("[HealthCheck] DeepSeek API recovered, AI chat enabled")
			}
		}
	}
}
