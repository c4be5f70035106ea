package rates

import (
	"context"
	"time"

	"github.com/iwvelando/finance-schedule/pkg/metrics"
	"go.uber.org/zap"
)

// Refresher pulls tables from a Provider into a Store.
type Refresher struct {
	provider Provider
	store    *Store
	interval time.Duration
	logger   *zap.Logger
}

// NewRefresher creates a refresher. A non-positive interval fetches once.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewRefresher(provider Provider, store *Store, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{provider: provider, store: store, interval: interval, logger: logger}
}

// Refresh performs one fetch and applies its result. A failed fetch keeps
// the previous table; there is no retry.
func (r *Refresher) Refresh(ctx context.Context) error {
	seq := r.store.Begin()
	table, err := r.provider.Fetch(ctx)
	if err != nil {
		metrics.RateRefreshes.WithLabelValues("error").Inc()
		r.logger.Error("failed to fetch rate table",
			zap.String("op", "rates.Refresher.Refresh"),
			zap.Uint64("seq", seq),
			zap.Error(err),
		)
		return err
	}

	if !r.store.Apply(seq, table) {
		metrics.RateRefreshes.WithLabelValues("stale").Inc()
		r.logger.Debug("discarding stale rate table",
			zap.String("op", "rates.Refresher.Refresh"),
			zap.Uint64("seq", seq),
			zap.Uint64("applied", r.store.Sequence()),
		)
		return nil
	}

	metrics.RateRefreshes.WithLabelValues("applied").Inc()
	metrics.RateTableSequence.Set(float64(seq))
	r.logger.Info("rate table updated",
		zap.String("op", "rates.Refresher.Refresh"),
		zap.Uint64("seq", seq),
		zap.String("base", table.Base),
		zap.Int("currencies", len(table.Rates)),
	)
	return nil
}

// Run refreshes immediately and then on every interval tick until ctx is
// cancelled. Fetch errors are logged and do not stop the loop.
func (r *Refresher) Run(ctx context.Context) error {
	_ = r.Refresh(ctx)
	if r.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = r.Refresh(ctx)
		}
	}
}
