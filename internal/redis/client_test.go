package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(&Config{Address: mr.Addr()})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewClient(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewClient(nil)
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewClient(&Config{Address: "127.0.0.1:1"})
		assert.Error(t, err)
	})

	t.Run("defaults pool size", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		assert.Equal(t, 10, client.config.PoolSize)
		assert.NotNil(t, client.Raw())
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)
	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestClient_ReserveSlot(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)
	window := 10 * time.Second

	for i := 0; i < 3; i++ {
		wait, err := client.ReserveSlot(ctx, "rl:tenders", 3, window, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.Zero(t, wait, "call %d should be admitted", i)
	}

	wait, err := client.ReserveSlot(ctx, "rl:tenders", 3, window, base.Add(4*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, wait)

	members, err := mr.ZMembers("rl:tenders")
	require.NoError(t, err)
	assert.Len(t, members, 3, "a rejected call is not recorded")

	// The first entry has left the window by t=10s.
	wait, err = client.ReserveSlot(ctx, "rl:tenders", 3, window, base.Add(10*time.Second))
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestClient_ReserveSlotSeparateKeys(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	_, err := client.ReserveSlot(ctx, "a", 1, time.Second, now)
	require.NoError(t, err)

	wait, err := client.ReserveSlot(ctx, "b", 1, time.Second, now)
	require.NoError(t, err)
	assert.Zero(t, wait)
}
