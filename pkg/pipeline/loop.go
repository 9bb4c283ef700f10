package pipeline

import (
	"context"
	"time"
)

// Default trigger timings
const (
	DefaultInterval     = 15 * time.Minute
	DefaultInitialDelay = 10 * time.Second
)

// Loop runs a cycle after initialDelay and then every interval until ctx is
// done. Ticks that land while a cycle is running are dropped.
func (o *Orchestrator) Loop(ctx context.Context, initialDelay, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		o.TryRun(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			o.TryRun(ctx)
		}
	}
}
