package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance and a client pointing at it
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

type sample struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	c := NewRedisCacheFromClient(client, time.Minute)
	defer c.Close()

	var got sample
	hit, err := c.Get(ctx, "summary", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "summary", sample{Total: 7, Label: "all"}))
	assert.True(t, mr.Exists(DefaultPrefix+"summary"))
	assert.Equal(t, time.Minute, mr.TTL(DefaultPrefix+"summary"))

	hit, err = c.Get(ctx, "summary", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, sample{Total: 7, Label: "all"}, got)

	mr.FastForward(2 * time.Minute)
	hit, err = c.Get(ctx, "summary", &got)
	require.NoError(t, err)
	assert.False(t, hit, "entry expires after ttl")
}

func TestRedisCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	c := NewRedisCacheFromClient(client, time.Minute)

	require.NoError(t, c.Set(ctx, "summary", sample{Total: 1}))
	require.NoError(t, c.Set(ctx, "categories", sample{Total: 2}))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists(DefaultPrefix+"summary"))
	assert.False(t, mr.Exists(DefaultPrefix+"categories"))
	assert.True(t, mr.Exists("unrelated"))

	require.NoError(t, c.Invalidate(ctx), "invalidating an empty cache is fine")
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	c := NewRedisCacheFromClient(client, time.Minute)
	require.NoError(t, mr.Set(DefaultPrefix+"summary", "{not json"))

	var got sample
	hit, err := c.Get(ctx, "summary", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestNewRedisCache(t *testing.T) {
	mr, _ := setupTestRedis(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = NewRedisCache(context.Background(), "not a url", time.Second)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c StatsCache = Noop{}
	var got sample
	hit, err := c.Get(context.Background(), "summary", &got)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Set(context.Background(), "summary", got))
	assert.NoError(t, c.Invalidate(context.Background()))
}
