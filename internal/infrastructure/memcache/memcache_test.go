package memcache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/driftchat/drift/internal/infrastructure/memcache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests step across TTL boundaries deterministically.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newCache(t *testing.T, maxEntries int) (*memcache.Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1724800000, 0)}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return memcache.New(maxEntries, logger, memcache.WithClock(clock.now)), clock
}

func TestGetReturnsValueUntilTTLElapses(t *testing.T) {
	c, clock := newCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 30*time.Second))

	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// One tick before the deadline the entry is still valid.
	clock.advance(30*time.Second - time.Nanosecond)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// At the deadline it is absent: valid iff now-storedAt < ttl.
	clock.advance(time.Nanosecond)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiredEntryIsEvictedOnAccess(t *testing.T) {
	c, clock := newCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	clock.advance(2 * time.Second)

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSetOverwritesUnconditionally(t *testing.T) {
	c, _ := newCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("old"), time.Minute))
	require.NoError(t, c.Set(ctx, "k", []byte("new"), time.Minute))

	v, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), v)
	assert.Equal(t, 1, c.Len())
}

func TestDeleteIsNoopWhenAbsent(t *testing.T) {
	c, _ := newCache(t, 0)
	assert.NoError(t, c.Delete(context.Background(), "missing"))
}

func TestClearPatternRemovesBySubstring(t *testing.T) {
	c, _ := newCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "friends|user:alice", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "friends.pending|user:alice", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "friends|user:bob", []byte("c"), time.Minute))

	require.NoError(t, c.ClearPattern(ctx, "user:alice"))

	_, ok, _ := c.Get(ctx, "friends|user:alice")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "friends.pending|user:alice")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "friends|user:bob")
	assert.True(t, ok)
}

func TestLRUEvictionAtCapacity(t *testing.T) {
	c, _ := newCache(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute))
	}

	// Touch k0 so k1 becomes the LRU victim.
	_, _, _ = c.Get(ctx, "k0")
	require.NoError(t, c.Set(ctx, "k3", []byte("v"), time.Minute))

	_, ok, _ := c.Get(ctx, "k1")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok, _ = c.Get(ctx, "k0")
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, "k3")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	c, _ := newCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("abc"), time.Minute))
	v, _, _ := c.Get(ctx, "k")
	v[0] = 'x'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}
