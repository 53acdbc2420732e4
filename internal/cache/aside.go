package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/metrics"
)

const (
	keyPrefix        = "site:cache:"    // site:cache:{resource}:{variant}
	genPrefix        = "site:cachegen:" // site:cachegen:{prefix}, outside keyPrefix scans
	defaultRetention = 24 * time.Hour
	loadTimeout      = 30 * time.Second
	scanBatch        = 100
)

// errGenerationChanged aborts a store whose load raced an invalidation.
var errGenerationChanged = errors.New("cache generation changed during load")

// Loader produces the value to cache; it is marshalled to JSON.
type Loader func(ctx context.Context) (any, error)

// Aside is a Redis backed cache-aside store for public API payloads.
type Aside struct {
	client    *redis.Client
	ttl       time.Duration
	retention time.Duration
	group     singleflight.Group
	now       func() time.Time
}

// NewAside creates a cache whose entries are fresh for ttl. Entries stay in
// Redis longer than ttl so stale data can be served while reloading.
func NewAside(client *redis.Client, ttl time.Duration) *Aside {
	retention := defaultRetention
	if ttl > retention {
		retention = 2 * ttl
	}
	return &Aside{
		client:    client,
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
	}
}

func (a *Aside) key(k string) string {
	return keyPrefix + k
}

// Peek returns the stored entry for key, or nil when there is none.
func (a *Aside) Peek(ctx context.Context, key string) (*Entry, error) {
	raw, err := a.client.Get(ctx, a.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &e, nil
}

func encodeEntry(e Entry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return raw, nil
}

// Fetch returns the cached payload for key, calling load when the entry is
// missing or due for a refetch. Concurrent misses for the same key share one load.
func (a *Aside) Fetch(ctx context.Context, key string, load Loader) (json.RawMessage, error) {
	entry, err := a.Peek(ctx, key)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("cache.fetch", "bypassing cache for %s: %v", key, err)
		metrics.CacheResultsTotal.WithLabelValues("error").Inc()
		return marshalLoad(ctx, load)
	}

	if entry != nil && entry.HasData() && !entry.ShouldRefetch(a.now(), a.ttl) {
		if entry.Loading {
			metrics.CacheResultsTotal.WithLabelValues("stale").Inc()
		} else {
			metrics.CacheResultsTotal.WithLabelValues("hit").Inc()
		}
		return entry.Data, nil
	}

	metrics.CacheResultsTotal.WithLabelValues("miss").Inc()
	v, err, _ := a.group.Do(key, func() (any, error) {
		lctx, cancel := loadContext(ctx)
		defer cancel()
		return a.refresh(lctx, key, load)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// Refresh reloads key unconditionally; used by the cache warmer.
func (a *Aside) Refresh(ctx context.Context, key string, load Loader) error {
	_, err, _ := a.group.Do(key, func() (any, error) {
		lctx, cancel := loadContext(ctx)
		defer cancel()
		return a.refresh(lctx, key, load)
	})
	return err
}

// loadContext detaches a shared load from the caller that happened to start
// it, so its cancellation does not fail the callers waiting on the same key.
func loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
}

// refresh loads key and stores the result. The generation is read before the
// previous entry so an invalidation at any point after it is noticed.
func (a *Aside) refresh(ctx context.Context, key string, load Loader) (json.RawMessage, error) {
	logger := logging.NewLogger(ctx)

	gens := generationKeys(key)
	before, err := a.generation(ctx, a.client, gens)
	if err != nil {
		logger.LogWarnf("cache.refresh", "loading %s uncached: %v", key, err)
		return marshalLoad(ctx, load)
	}

	var stale Entry
	prev, err := a.Peek(ctx, key)
	if err != nil {
		logger.LogWarnf("cache.refresh", "ignoring unreadable %s: %v", key, err)
	} else if prev != nil {
		stale = *prev
	}

	marker := stale
	marker.Loading = true
	marker.LoadingSince = a.now()
	if err := a.storeIfCurrent(ctx, key, gens, before, marker); err != nil {
		logger.LogWarnf("cache.refresh", "failed to mark %s as loading: %v", key, err)
	}

	data, err := marshalLoad(ctx, load)
	if err != nil {
		if !stale.HasData() {
			// Nothing worth keeping; misses on unknown keys must not pile up.
			if derr := a.client.Del(ctx, a.key(key)).Err(); derr != nil {
				logger.LogWarnf("cache.refresh", "failed to clear %s: %v", key, derr)
			}
			return nil, err
		}

		failed := stale
		failed.Loading = false
		failed.LoadingSince = time.Time{}
		failed.Error = err.Error()
		if serr := a.storeIfCurrent(ctx, key, gens, before, failed); serr != nil {
			logger.LogWarnf("cache.refresh", "failed to record error for %s: %v", key, serr)
		}

		logger.LogWarnf("cache.refresh", "serving stale %s after load error: %v", key, err)
		metrics.CacheResultsTotal.WithLabelValues("stale").Inc()
		return stale.Data, nil
	}

	fresh := Entry{Data: data, LastFetchedAt: a.now()}
	if err := a.storeIfCurrent(ctx, key, gens, before, fresh); err != nil {
		logger.LogWarnf("cache.refresh", "failed to store %s: %v", key, err)
	}
	return data, nil
}

// storeIfCurrent writes e only while none of gens moved past before. When an
// invalidation got in between, the key is dropped instead so the next read
// loads again.
func (a *Aside) storeIfCurrent(ctx context.Context, key string, gens []string, before string, e Entry) error {
	raw, err := encodeEntry(e)
	if err != nil {
		return err
	}

	err = a.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := a.generation(ctx, tx, gens)
		if err != nil {
			return err
		}
		if current != before {
			return errGenerationChanged
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, a.key(key), raw, a.retention)
			return nil
		})
		return err
	}, gens...)

	if errors.Is(err, errGenerationChanged) || errors.Is(err, redis.TxFailedErr) {
		logging.NewLogger(ctx).LogInfof("cache.refresh", "dropping %s, invalidated while loading", key)
		return a.client.Del(ctx, a.key(key)).Err()
	}
	return err
}

type multiGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// generation snapshots the counters in gens as one comparable string.
func (a *Aside) generation(ctx context.Context, r multiGetter, gens []string) (string, error) {
	vals, err := r.MGet(ctx, gens...).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	return fmt.Sprintf("%v", vals), nil
}

// generationKeys returns the counter of every ':' delimited prefix of key,
// the empty prefix included.
func generationKeys(key string) []string {
	gens := []string{genPrefix}
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			gens = append(gens, genPrefix+key[:i+1])
		}
	}
	return gens
}

// generationKey maps an invalidation prefix to its counter. Prefixes not
// ending in ':' bump the enclosing segment, which invalidates a superset.
func generationKey(prefix string) string {
	return genPrefix + prefix[:strings.LastIndex(prefix, ":")+1]
}

func marshalLoad(ctx context.Context, load Loader) (json.RawMessage, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return data, nil
}

// InvalidatePrefix deletes every entry whose key starts with prefix and
// returns the number of keys removed. Loads under prefix that are still in
// flight will not store their result.
func (a *Aside) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	if err := a.client.Incr(ctx, generationKey(prefix)).Err(); err != nil {
		return 0, fmt.Errorf("failed to bump cache generation: %w", err)
	}

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := a.client.Scan(ctx, cursor, a.key(prefix)+"*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := a.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete cache keys: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	metrics.CacheInvalidationsTotal.Add(float64(removed))
	return removed, nil
}
