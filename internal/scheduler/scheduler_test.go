package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
	"github.com/certwatch-io/certwatch/internal/watchlist"
)

type fakeTarget struct {
	refreshes   atomic.Int64
	inflight    atomic.Int64
	maxInflight atomic.Int64
	delay       time.Duration
}

func (f *fakeTarget) RefreshAll(ctx context.Context) watchlist.RefreshSummary {
	cur := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		max := f.maxInflight.Load()
		if cur <= max || f.maxInflight.CompareAndSwap(max, cur) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.refreshes.Add(1)
	return watchlist.RefreshSummary{Total: 1, Success: 1}
}

func (f *fakeTarget) List() []core.WatchedDomain             { return nil }
func (f *fakeTarget) Notifications() []core.NotificationItem { return nil }

func TestConfigureStartsTimer(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, nil, zap.NewNop())
	defer s.Stop()

	s.Configure(10)
	assert.True(t, s.Running())
	assert.Equal(t, 10*time.Millisecond, s.Interval())

	require.Eventually(t, func() bool {
		return target.refreshes.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestConfigureZeroDisables(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, nil, zap.NewNop())

	s.Configure(10)
	s.Configure(0)
	assert.False(t, s.Running())
	assert.Zero(t, s.Interval())

	before := target.refreshes.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, target.refreshes.Load())
}

func TestReconfigureNeverStacksTimers(t *testing.T) {
	target := &fakeTarget{delay: 15 * time.Millisecond}
	s := NewScheduler(target, nil, zap.NewNop())
	defer s.Stop()

	for i := 0; i < 20; i++ {
		s.Configure(5)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), target.maxInflight.Load(),
		"reconfiguration must never leave more than one active tick loop")
}

func TestStopWaitsForLoop(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, nil, zap.NewNop())

	s.Configure(5)
	s.Stop()
	assert.False(t, s.Running())

	before := target.refreshes.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, target.refreshes.Load())
}

func TestConfigureConcurrentSafe(t *testing.T) {
	target := &fakeTarget{}
	s := NewScheduler(target, nil, zap.NewNop())
	defer s.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Configure(int64(5 + n))
		}(i)
	}
	wg.Wait()

	assert.True(t, s.Running())
	assert.LessOrEqual(t, target.maxInflight.Load(), int64(1))
}
