package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studio-atelier/site-backend/internal/cache"
	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/metrics"
)

const defaultWarmTimeout = 30 * time.Second

// Refresher reloads one cache key; cache.Aside implements it.
type Refresher interface {
	Refresh(ctx context.Context, key string, load cache.Loader) error
}

// Warmer re-populates a fixed set of cache entries.
type Warmer struct {
	cache   Refresher
	targets []cache.Target
	timeout time.Duration
}

func NewWarmer(c Refresher, targets ...[]cache.Target) *Warmer {
	w := &Warmer{cache: c, timeout: defaultWarmTimeout}
	for _, t := range targets {
		w.targets = append(w.targets, t...)
	}
	return w
}

// Keys lists the cache keys the warmer maintains.
func (w *Warmer) Keys() []string {
	keys := make([]string, 0, len(w.targets))
	for _, t := range w.targets {
		keys = append(keys, t.Key)
	}
	return keys
}

// Run refreshes every target and returns how many succeeded. A failing target
// does not stop the others.
func (w *Warmer) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var (
		ok   int
		errs []error
	)
	for _, t := range w.targets {
		if err := w.cache.Refresh(ctx, t.Key, t.Load); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", t.Key, err))
			continue
		}
		ok++
	}

	if len(errs) > 0 {
		metrics.CacheWarmRunsTotal.WithLabelValues("error").Inc()
		logging.NewLogger(ctx).LogWarnf("cache.warm", "refreshed %d/%d keys", ok, len(w.targets))
		return ok, errors.Join(errs...)
	}
	metrics.CacheWarmRunsTotal.WithLabelValues("ok").Inc()
	return ok, nil
}
