package sessions

import (
	"context"
	"time"

	"career-booster/internal/shared/telemetry"
)

// RunJanitor purges expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, p Purger, interval time.Duration) {
	if p == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				telemetry.Warn("sessions.purge.failed", map[string]any{"error": err})
				continue
			}
			if n > 0 {
				telemetry.Info("sessions.purged", map[string]any{"count": n})
			}
		}
	}
}
