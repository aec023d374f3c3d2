package ingest

import (
	"context"
	"sync"
	"time"

	"skandan/tamilnewsworker/internal/scraper"
	"skandan/tamilnewsworker/logger"
	apperrors "skandan/tamilnewsworker/pkg/errors"
	"skandan/tamilnewsworker/services/cache"
)

const cooldownKeyPrefix = "cooldown:"

// Runner executes a batch of adapters concurrently. Each adapter runs in
// its own goroutine so one failing site never takes down its siblings, and
// adapters that triggered a blocking signal sit out a cooldown window.
type Runner struct {
	coordinator *Coordinator
	cache       cache.CacheService
	cooldown    time.Duration
	log         *logger.Logger
}

// NewRunner creates a runner; cacheSvc may be nil to disable cooldowns
func NewRunner(coordinator *Coordinator, cacheSvc cache.CacheService, cooldown time.Duration) *Runner {
	return &Runner{
		coordinator: coordinator,
		cache:       cacheSvc,
		cooldown:    cooldown,
		log:         logger.ForCoordinator(),
	}
}

// RunAll runs every adapter and returns the per-adapter stats in input order
func (r *Runner) RunAll(ctx context.Context, adapters []scraper.Adapter) []*RunStats {
	results := make([]*RunStats, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter scraper.Adapter) {
			defer wg.Done()
			results[i] = r.runOne(ctx, adapter)
		}(i, adapter)
	}
	wg.Wait()

	return results
}

// runOne runs a single adapter, honoring and arming its cooldown
func (r *Runner) runOne(ctx context.Context, adapter scraper.Adapter) *RunStats {
	if r.onCooldown(adapter.Name()) {
		r.log.Info().Str("adapter", adapter.Name()).Msg("Adapter on cooldown, skipping")
		return &RunStats{
			Adapter:  adapter.Name(),
			Website:  adapter.Website(),
			Category: adapter.Category(),
			Skipped:  true,
		}
	}

	stats, err := r.coordinator.Run(ctx, adapter)
	if err != nil {
		logger.LogError(adapter.Name(), err, "Crawl failed")
		if apperrors.IsBlockingSignal(err) {
			r.armCooldown(adapter.Name())
		}
	}
	return stats
}

func (r *Runner) onCooldown(name string) bool {
	if r.cache == nil {
		return false
	}
	_, err := r.cache.Get(cooldownKeyPrefix + name)
	return err == nil
}

func (r *Runner) armCooldown(name string) {
	if r.cache == nil || r.cooldown <= 0 {
		return
	}
	if err := r.cache.Set(cooldownKeyPrefix+name, []byte("1"), r.cooldown); err != nil {
		r.log.Warn().Err(err).Str("adapter", name).Msg("Error arming cooldown")
	}
}
