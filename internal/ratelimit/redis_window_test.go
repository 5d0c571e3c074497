package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-notifier/internal/redis"
)

func TestRedisWindow_SharedBudget(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	clock := newFakeTime()
	clock.Advance(time.Hour)
	config := Config{Requests: 3, Window: 10 * time.Second}

	first := NewRedisWindow(client, "rl:test", config, WithClock(clock.Now), WithSleeper(clock.Sleep))
	second := NewRedisWindow(client, "rl:test", config, WithClock(clock.Now), WithSleeper(clock.Sleep))
	ctx := context.Background()

	require.NoError(t, first.Admit(ctx))
	require.NoError(t, second.Admit(ctx))
	require.NoError(t, first.Admit(ctx))
	assert.Empty(t, clock.slept)

	require.NoError(t, second.Admit(ctx))
	assert.Equal(t, []time.Duration{10 * time.Second}, clock.slept)
}

type failingReserver struct{ calls int }

func (f *failingReserver) ReserveSlot(context.Context, string, int, time.Duration, time.Time) (time.Duration, error) {
	f.calls++
	return 0, errors.New("connection refused")
}

func TestRedisWindow_FallsBackToLocalWindow(t *testing.T) {
	clock := newFakeTime()
	reserver := &failingReserver{}
	w := NewRedisWindow(reserver, "rl:test", Config{Requests: 1, Window: time.Second}, WithClock(clock.Now), WithSleeper(clock.Sleep))

	require.NoError(t, w.Admit(context.Background()))
	require.NoError(t, w.Admit(context.Background()))

	assert.Equal(t, 2, reserver.calls)
	assert.Equal(t, []time.Duration{time.Second}, clock.slept)
}
