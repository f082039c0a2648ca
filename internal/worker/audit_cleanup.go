package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/pkg/metrics"
)

// AuditPurger deletes audit events created before a cutoff.
type AuditPurger interface {
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

// AuditCleanupWorker enforces the audit retention period.
type AuditCleanupWorker struct {
	purger          AuditPurger
	retention       time.Duration
	cleanupInterval time.Duration
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewAuditCleanupWorker(purger AuditPurger, retention, cleanupInterval time.Duration, m *metrics.Metrics) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		purger:          purger,
		retention:       retention,
		cleanupInterval: cleanupInterval,
		metrics:         m,
		now:             time.Now,
	}
}

// Start purges once immediately and then on every tick until ctx is done.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("worker", "audit_cleanup").Logger()
	if w.retention <= 0 || w.cleanupInterval <= 0 {
		logger.Info().Msg("audit cleanup disabled")
		return
	}

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		if err := w.cleanup(ctx); err != nil {
			// Log error but continue
			logger.Error().Err(err).Msg("audit cleanup failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *AuditCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := w.now().Add(-w.retention)

	rows, err := w.purger.Cleanup(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup audit events: %w", err)
	}

	w.metrics.AuditPurged(rows)
	zerolog.Ctx(ctx).Info().Int64("deleted", rows).Time("cutoff", cutoff).Msg("audit events purged")
	return nil
}
