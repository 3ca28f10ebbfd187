package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"crvx/internal/shared/testutil"
	"crvx/pkg/contracts/domain"
)

type fakeSource struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context) (*domain.RawTables, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return testutil.NewClimbingLogFixtures().RawTables(), nil
}

type fetchCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fetchCounter) RecordFetch(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[result]++
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(src Source, ttl time.Duration) (*CachedSource, *fakeClock, *fetchCounter) {
	clock := &fakeClock{t: time.Date(2023, 2, 21, 9, 0, 0, 0, time.UTC)}
	counter := &fetchCounter{}
	c := NewCachedSource(src, ttl, counter, nil)
	c.now = clock.now
	return c, clock, counter
}

func TestCachedSource_TTL(t *testing.T) {
	src := &fakeSource{}
	cache, clock, counter := newTestCache(src, time.Minute)
	ctx := context.Background()

	_, err := cache.Fetch(ctx)
	require.NoError(t, err)
	_, err = cache.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	clock.t = clock.t.Add(59 * time.Second)
	_, err = cache.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	clock.t = clock.t.Add(time.Second)
	_, err = cache.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "expired entries are re-fetched")

	assert.Equal(t, map[string]int{FetchMiss: 2, FetchHit: 2}, counter.counts)
	stats := cache.GetStats()
	assert.Equal(t, int64(2), stats["hit_count"])
	assert.Equal(t, 0.5, stats["hit_ratio"])
}

func TestCachedSource_Invalidate(t *testing.T) {
	src := &fakeSource{}
	cache, _, _ := newTestCache(src, time.Minute)
	ctx := context.Background()

	_, err := cache.Fetch(ctx)
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Fetch(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_ZeroTTL(t *testing.T) {
	src := &fakeSource{}
	cache, _, _ := newTestCache(src, 0)

	for i := 0; i < 3; i++ {
		_, err := cache.Fetch(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCachedSource_ReturnsIndependentCopies(t *testing.T) {
	cache, _, _ := newTestCache(&fakeSource{}, time.Minute)
	ctx := context.Background()

	first, err := cache.Fetch(ctx)
	require.NoError(t, err)
	first.Climbs[1][1] = "V17"
	first.Sessions = nil

	second, err := cache.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "V3", second.Climbs[1][1])
	assert.NotEmpty(t, second.Sessions)
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	src := &fakeSource{err: errors.New("quota exceeded")}
	cache, _, counter := newTestCache(src, time.Minute)

	_, err := cache.Fetch(context.Background())
	require.Error(t, err)

	src.err = nil
	_, err = cache.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, 1, counter.counts[FetchError])
}

func TestCachedSource_ConcurrentCallersShareFetch(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	cache, _, _ := newTestCache(src, time.Minute)

	const callers = 8
	results := make([]*domain.RawTables, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			raw, err := cache.Fetch(context.Background())
			results[i] = raw
			return err
		})
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Let the other callers join the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), src.calls.Load())
	for i := 1; i < callers; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, results[0], results[i])
		assert.NotSame(t, results[0], results[i])
	}
}
