// ABOUTME: Tests for the delivery dedupe cache
// ABOUTME: Uses a fake clock to cover expiry, eviction, and concurrent marking

package dedupe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(ttl time.Duration, size int) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl, size)
	c.now = clock.Now
	return c, clock
}

func TestCache_CheckAndMark(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)

	assert.False(t, c.CheckAndMark("m1"), "first sighting is new")
	assert.True(t, c.CheckAndMark("m1"), "second sighting is a duplicate")
	assert.False(t, c.CheckAndMark("m2"))
	assert.Len(t, c.index, 2)
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)

	require.False(t, c.CheckAndMark("m1"))
	clock.Advance(30 * time.Second)
	assert.True(t, c.CheckAndMark("m1"))

	clock.Advance(30 * time.Second)
	assert.False(t, c.CheckAndMark("m1"), "expired key counts as new")
	assert.Len(t, c.index, 1)
}

func TestCache_DuplicateDoesNotRefresh(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)

	require.False(t, c.CheckAndMark("m1"))
	clock.Advance(50 * time.Second)
	require.True(t, c.CheckAndMark("m1"))
	clock.Advance(20 * time.Second)

	assert.False(t, c.CheckAndMark("m1"))
}

func TestCache_EvictsOldest(t *testing.T) {
	c, _ := newTestCache(time.Hour, 3)

	for i := range 5 {
		require.False(t, c.CheckAndMark(fmt.Sprintf("m%d", i)))
	}

	assert.Len(t, c.index, 3)
	assert.True(t, c.CheckAndMark("m4"))
	assert.True(t, c.CheckAndMark("m3"))
	assert.True(t, c.CheckAndMark("m2"))
	assert.False(t, c.CheckAndMark("m0"), "evicted key counts as new")
}

func TestCache_Forget(t *testing.T) {
	c, _ := newTestCache(time.Hour, 3)

	require.False(t, c.CheckAndMark("m1"))
	c.Forget("m1")
	c.Forget("never-marked")

	assert.Empty(t, c.index)
	assert.False(t, c.CheckAndMark("m1"))
}

func TestCache_MinimumSize(t *testing.T) {
	c, _ := newTestCache(time.Hour, 0)

	c.CheckAndMark("a")
	c.CheckAndMark("b")
	assert.Len(t, c.index, 1)
	assert.True(t, c.CheckAndMark("b"))
}

func TestCache_ConcurrentCheckAndMark(t *testing.T) {
	c := New(time.Hour, 100)

	var fresh atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.CheckAndMark("same") {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fresh.Load(), "exactly one caller sees the key as new")
}
