package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// Sweepable drops expired cache entries.
type Sweepable interface {
	Sweep(ctx context.Context) (int, error)
}

// CacheSweeper periodically evicts expired entries from stores that have
// no native TTL. Redis expires keys itself and needs no sweeper.
type CacheSweeper struct {
	target   Sweepable
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCacheSweeper(target Sweepable, log logger.Logger, interval time.Duration) *CacheSweeper {
	return &CacheSweeper{
		target:   target,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic sweeping.
func (cs *CacheSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(cs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cs.Sweep(ctx)
			case <-cs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper. It is safe to call more than once.
func (cs *CacheSweeper) Stop() {
	cs.stopOnce.Do(func() { close(cs.stopCh) })
}

// Sweep runs a single eviction pass.
func (cs *CacheSweeper) Sweep(ctx context.Context) int {
	removed, err := cs.target.Sweep(ctx)
	if err != nil {
		cs.logger.Warn("cache sweep failed", logger.Error(err))
		return 0
	}
	if removed > 0 {
		cs.logger.Info("expired cache entries evicted", logger.Int("count", removed))
	} else {
		cs.logger.Debug("no expired cache entries")
	}
	return removed
}
