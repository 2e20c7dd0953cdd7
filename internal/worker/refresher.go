package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/sessionize"
)

// ScheduleSyncer runs one upstream schedule sync.
type ScheduleSyncer interface {
	Sync(ctx context.Context) (*sessionize.Stats, error)
}

// Refresher periodically re-pulls the upstream schedule so the local
// reference tables track Sessionize without an admin having to trigger the
// sync by hand. Failures are logged and retried on the next tick; the sync
// is a full idempotent upsert, so a missed run costs nothing but staleness.
type Refresher struct {
	syncer   ScheduleSyncer
	interval time.Duration
	logger   *zap.Logger
}

// NewRefresher creates a schedule refresher.
func NewRefresher(syncer ScheduleSyncer, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{syncer: syncer, interval: interval, logger: logger}
}

// Run syncs once immediately, then on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("schedule refresher started", zap.Duration("interval", r.interval))
	r.syncOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("schedule refresher stopped")
			return
		case <-ticker.C:
			r.syncOnce(ctx)
		}
	}
}

func (r *Refresher) syncOnce(ctx context.Context) {
	if _, err := r.syncer.Sync(ctx); err != nil {
		r.logger.Warn("scheduled sync failed", zap.Error(err))
	}
}
