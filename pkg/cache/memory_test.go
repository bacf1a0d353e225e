package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour)
	defer mc.Close()

	_, err := mc.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	mc := NewMemoryCache(3, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, mc.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
	}

	// Touch k0 so k1 becomes the least recently used entry.
	_, err := mc.Get(ctx, "k0")
	require.NoError(t, err)

	require.NoError(t, mc.Set(ctx, "k3", []byte("v"), 0))

	_, err = mc.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = mc.Get(ctx, "k0")
	assert.NoError(t, err)

	assert.Equal(t, 3, mc.Len())
	assert.Equal(t, int64(1), mc.Stats().Evictions)
}

func TestMemoryCache_OverwriteKeepsSingleEntry(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("one"), 0))
	require.NoError(t, mc.Set(ctx, "k", []byte("two"), 0))

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, 1, mc.Len())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, mc.Delete(ctx, "a"))
	_, err := mc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, mc.Clear(ctx))
	assert.Equal(t, 0, mc.Len())
	assert.Equal(t, int64(0), mc.Stats().Size)
}

func TestMemoryCache_Stats(t *testing.T) {
	mc := NewMemoryCache(10, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))

	_, _ = mc.Get(ctx, "k")
	_, _ = mc.Get(ctx, "k")
	_, _ = mc.Get(ctx, "absent")

	stats := mc.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 0.001)
}
