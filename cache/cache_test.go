package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestMemoryCache(maxEntries int) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(maxEntries)
	c.now = clock.now
	return c, clock
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	c, clock := newTestMemoryCache(10)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "profile_picture:ana")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "profile_picture:ana", "https://cdn/ana.png", time.Minute))
	v, ok, err := c.Get(ctx, "profile_picture:ana")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://cdn/ana.png", v)

	clock.t = clock.t.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "profile_picture:ana")
	require.NoError(t, err)
	assert.False(t, ok, "过期后应视为未命中")
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_PrunesWhenFull(t *testing.T) {
	c, clock := newTestMemoryCache(3)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", "1", time.Second))
	require.NoError(t, c.Set(ctx, "keep1", "2", time.Hour))
	require.NoError(t, c.Set(ctx, "keep2", "3", time.Hour))

	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, c.Set(ctx, "new", "4", time.Hour))

	assert.Equal(t, 3, c.Len())
	_, ok, _ := c.Get(ctx, "old")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "keep1")
	assert.True(t, ok)
}

func TestMemoryCache_ClearsWhenFullOfLiveEntries(t *testing.T) {
	c, _ := newTestMemoryCache(2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Hour))
	}
	assert.Equal(t, 1, c.Len())
	v, ok, _ := c.Get(ctx, "k2")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestNew_SelectsBackend(t *testing.T) {
	assert.IsType(t, &MemoryCache{}, New(nil, 0))

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	assert.IsType(t, &RedisCache{}, New(rdb, 0))
}

func TestRedisCache_ConnectionErrorSurfaces(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	_, ok, err := NewRedisCache(rdb).Get(context.Background(), "profile_picture:ana")
	assert.Error(t, err)
	assert.False(t, ok)
}
