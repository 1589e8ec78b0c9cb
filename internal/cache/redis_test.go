package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaker/internal/cache"
	"github.com/oggyb/muzz-matchmaker/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestPendingCountRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, ok, err := c.GetPendingCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetPendingCount(ctx, 1, 4))
	n, ok, err := c.GetPendingCount(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, cache.PendingTTL, mr.TTL(cache.KeyForPendingCount(1)))

	mr.FastForward(cache.PendingTTL)
	_, ok, err = c.GetPendingCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "entry expires after the TTL")
}

func TestInvalidatePending(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.SetPendingCount(ctx, 1, 1))
	require.NoError(t, c.SetPendingCount(ctx, 2, 2))
	require.NoError(t, c.InvalidatePending(ctx, 1, 2, 3))

	assert.False(t, mr.Exists(cache.KeyForPendingCount(1)))
	assert.False(t, mr.Exists(cache.KeyForPendingCount(2)))
	require.NoError(t, c.InvalidatePending(ctx))
}

func TestCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, mr.Set(cache.KeyForPendingCount(1), "abc"))
	_, ok, err := c.GetPendingCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
