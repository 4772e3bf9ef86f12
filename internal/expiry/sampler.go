// Package expiry runs the background sampled-expiry task described in
// spec.md §4.4, adapted from pyredis/expiry.py's
// run_cleanup_in_background: each cycle samples ~20% of the store's keys
// and reads each through the store, which lazily evicts any that have
// expired.
package expiry

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/refactoredjello/pyredis-go/internal/store"
)

// SampleFraction is the share of live keys sampled every cycle.
const SampleFraction = 0.2

// DefaultInterval matches spec.md §4.4's default cycle length.
const DefaultInterval = 300 * time.Second

// Sampler periodically touches a random sample of the store's keys to
// provoke lazy expiry, so keys nobody reads are still eventually evicted.
type Sampler struct {
	store    *store.Store
	interval time.Duration
	log      *zap.Logger
}

// New returns a Sampler with the given cycle interval. A non-positive
// interval falls back to DefaultInterval.
func New(s *store.Store, interval time.Duration, log *zap.Logger) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{store: s, interval: interval, log: log}
}

// Run loops until ctx is cancelled. It is cancellation-safe: a cancelled
// context is observed promptly either between sample reads or during the
// inter-cycle sleep, and the store is never left in an inconsistent state
// since every read it issues is a normal, already-atomic Store.Get.
func (sp *Sampler) Run(ctx context.Context) error {
	sp.log.Info("expiry sampler up", zap.Duration("interval", sp.interval))
	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sp.log.Info("expiry sampler cancelled")
			return nil
		case <-ticker.C:
			sp.runCycle(ctx)
		}
	}
}

func (sp *Sampler) runCycle(ctx context.Context) {
	size := sp.store.Size()
	if size == 0 {
		return
	}
	count := int(math.Ceil(float64(size) * SampleFraction))
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		key, ok := sp.store.RandomKey()
		if !ok {
			return
		}
		sp.store.Get(key)
	}
}
