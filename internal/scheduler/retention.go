package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes history rows older than a cutoff.
type Pruner interface {
	PruneHistory(ctx context.Context, before time.Time) (int64, error)
}

// RetentionPolicy resolves the configured retention horizon in days.
// A negative value means keep forever.
type RetentionPolicy interface {
	HistoryRetentionDays(ctx context.Context) int
}

// Janitor prunes the certificate history log on a slow cadence. It is
// independent of the refresh timer so disabling auto refresh does not
// stop retention enforcement.
type Janitor struct {
	pruner     Pruner
	policy     RetentionPolicy
	checkEvery time.Duration
	logger     *zap.Logger
}

func NewJanitor(pruner Pruner, policy RetentionPolicy, logger *zap.Logger) *Janitor {
	return &Janitor{
		pruner:     pruner,
		policy:     policy,
		checkEvery: 12 * time.Hour,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled. One prune pass runs immediately,
// then one per cadence period.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.checkEvery)
	defer ticker.Stop()

	j.prune(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.prune(ctx)
		}
	}
}

func (j *Janitor) prune(ctx context.Context) {
	days := j.policy.HistoryRetentionDays(ctx)
	if days < 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := j.pruner.PruneHistory(ctx, cutoff)
	if err != nil {
		j.logger.Error("History prune failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.logger.Info("History pruned", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
