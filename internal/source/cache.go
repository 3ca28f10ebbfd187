package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"crvx/internal/infrastructure"
	"crvx/pkg/contracts/domain"
)

const cacheKey = "raw_tables"

// CachedSource keeps the last pull of a Source for a fixed TTL. Concurrent
// callers share one in-flight fetch and each receives its own deep copy.
type CachedSource struct {
	source  Source
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	metrics FetchRecorder
	logger  *slog.Logger

	mu        sync.Mutex
	entry     *domain.RawTables
	expiresAt time.Time
	hitCount  int64
	missCount int64
}

// NewCachedSource wraps source with a TTL cache. A zero TTL disables caching
// but still collapses concurrent fetches.
func NewCachedSource(source Source, ttl time.Duration, metrics FetchRecorder, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "source_cache"),
	}
}

// Fetch returns the cached pull while it is fresh, otherwise pulls again
func (c *CachedSource) Fetch(ctx context.Context) (*domain.RawTables, error) {
	if raw, ok := c.get(); ok {
		c.record(FetchHit)
		c.logger.DebugContext(ctx, "serving cached spreadsheet pull")
		return raw, nil
	}

	v, err, shared := c.group.Do(cacheKey, func() (interface{}, error) {
		// A fetch that finished between get and Do already filled the entry.
		if raw, ok := c.fresh(); ok {
			return raw, nil
		}
		raw, err := c.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.set(raw)
		return raw, nil
	})
	if err != nil {
		c.record(FetchError)
		return nil, err
	}

	c.record(FetchMiss)
	c.logger.DebugContext(ctx, "spreadsheet pulled", slog.Bool("shared", shared))
	return v.(*domain.RawTables).Clone(), nil
}

// Invalidate drops the cached pull so the next Fetch goes to the source
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	c.expiresAt = time.Time{}
	c.group.Forget(cacheKey)
}

// GetStats returns cache statistics
func (c *CachedSource) GetStats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hitCount + c.missCount
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(c.hitCount) / float64(total)
	}
	return map[string]interface{}{
		"cached":      c.entry != nil,
		"hit_count":   c.hitCount,
		"miss_count":  c.missCount,
		"hit_ratio":   hitRatio,
		"ttl_seconds": c.ttl.Seconds(),
	}
}

func (c *CachedSource) get() (*domain.RawTables, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil || !c.now().Before(c.expiresAt) {
		return nil, false
	}
	c.hitCount++
	return c.entry.Clone(), true
}

func (c *CachedSource) fresh() (*domain.RawTables, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil || !c.now().Before(c.expiresAt) {
		return nil, false
	}
	return c.entry, true
}

func (c *CachedSource) set(raw *domain.RawTables) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.missCount++
	if c.ttl <= 0 {
		return
	}
	c.entry = raw.Clone()
	c.expiresAt = c.now().Add(c.ttl)
}

func (c *CachedSource) record(result string) {
	if c.metrics != nil {
		c.metrics.RecordFetch(result)
	}
}
