package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
	"github.com/certwatch-io/certwatch/internal/metrics"
	"github.com/certwatch-io/certwatch/internal/watchlist"
)

// Target is the watch list surface the scheduler drives.
type Target interface {
	RefreshAll(ctx context.Context) watchlist.RefreshSummary
	List() []core.WatchedDomain
	Notifications() []core.NotificationItem
}

// Scheduler owns the periodic refresh timer. At most one timer exists
// at any moment: Configure replaces the previous one atomically, so
// rapid reconfiguration can never stack tick loops.
type Scheduler struct {
	target  Target
	metrics *metrics.Collector
	logger  *zap.Logger

	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(target Target, collector *metrics.Collector, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		target:  target,
		metrics: collector,
		logger:  logger,
	}
}

// Configure sets the refresh interval in milliseconds. Zero (or
// negative) disables periodic refresh. The running timer, if any, is
// stopped before a new one starts.
func (s *Scheduler) Configure(intervalMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if intervalMS <= 0 {
		s.interval = 0
		s.logger.Info("Auto refresh disabled")
		return
	}

	interval := time.Duration(intervalMS) * time.Millisecond
	s.interval = interval

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(ctx, interval, done)
	s.logger.Info("Auto refresh configured", zap.Duration("interval", interval))
}

// Stop halts periodic refresh and waits for an in-flight tick.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.interval = 0
}

// Interval returns the active refresh interval, zero when disabled.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running reports whether a timer loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// run is the tick loop. The first refresh happens after one full
// interval, not immediately; startup already loads current state.
func (s *Scheduler) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one full refresh pass. Failures inside the pass are
// already absorbed per record; a tick never kills the loop.
func (s *Scheduler) tick(ctx context.Context) {
	started := time.Now()
	summary := s.target.RefreshAll(ctx)

	if s.metrics != nil {
		s.metrics.RecordSchedulerTick(time.Since(started))
		s.metrics.RecordRefreshRun(summary.Success, summary.Failed)
		s.metrics.UpdateWatchlist(s.target.List())
		s.metrics.SetNotificationsDue(len(s.target.Notifications()))
	}

	s.logger.Debug("Refresh tick finished",
		zap.Int("success", summary.Success),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", time.Since(started)))
}
