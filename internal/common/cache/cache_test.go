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

type remoteKey struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	var out []remoteKey
	found, err := c.Get(ctx, "keys", &out)
	require.NoError(t, err)
	assert.False(t, found)

	keys := []remoteKey{{ID: "k1", Name: "Бумага"}, {ID: "k2", Name: "Мебель"}}
	require.NoError(t, c.Set(ctx, "keys", keys, time.Minute))
	keys[0].Name = "mutated"

	found, err = c.Get(ctx, "keys", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []remoteKey{{ID: "k1", Name: "Бумага"}, {ID: "k2", Name: "Мебель"}}, out)

	require.NoError(t, c.Delete(ctx, "keys"))
	found, err = c.Get(ctx, "keys", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalCache(t *testing.T) {
	exerciseCache(t, NewLocalCache(time.Minute, time.Minute))
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseCache(t, NewRedisCache(client, "test:"))
	assert.False(t, mr.Exists("test:keys"))
}

func TestLocalCacheExpiry(t *testing.T) {
	c := NewLocalCache(time.Minute, time.Minute)
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var out int
	found, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNew(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &LocalCache{}, c)

	_, err = New(Config{Type: TypeRedis})
	assert.Error(t, err)

	_, err = New(Config{Type: "memcached"})
	assert.Error(t, err)
}
