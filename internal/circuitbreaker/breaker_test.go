package circuitbreaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/common/errors"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DeliveryConfig().Validate())
	assert.Error(t, Config{MaxFailures: 0, Timeout: time.Second, MaxConcurrentRequests: 1}.Validate())
	assert.Error(t, Config{MaxFailures: 1, Timeout: 0, MaxConcurrentRequests: 1}.Validate())
	assert.Error(t, Config{MaxFailures: 1, Timeout: time.Second, MaxConcurrentRequests: 0}.Validate())
}

func TestBreaker_OpensOnTransientFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 3, Timeout: time.Hour, MaxConcurrentRequests: 1})
	ctx := context.Background()
	outage := errors.TransientError("provider down", nil)

	for i := 0; i < 3; i++ {
		err := b.Execute(ctx, func() error { return outage })
		assert.Same(t, outage, err)
	}
	require.True(t, b.IsOpen())
	assert.Error(t, b.Health(ctx))

	called := false
	err := b.Execute(ctx, func() error { called = true; return nil })
	assert.False(t, called)
	assert.True(t, errors.IsType(err, errors.ErrTypeTransient))
}

func TestBreaker_IgnoresNonTransientErrors(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, Timeout: time.Hour, MaxConcurrentRequests: 1})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = b.Execute(ctx, func() error { return errors.PermanentError("chat not found", nil) })
		_ = b.Execute(ctx, func() error { return errors.FloodControlError(time.Second, nil) })
	}
	assert.False(t, b.IsOpen())
	assert.NoError(t, b.Health(ctx))
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, Timeout: 50 * time.Millisecond, MaxConcurrentRequests: 1})
	ctx := context.Background()

	_ = b.Execute(ctx, func() error { return errors.TransientError("down", nil) })
	require.True(t, b.IsOpen())

	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, b.Execute(ctx, func() error { return nil }))
	assert.False(t, b.IsOpen())
}

func TestBreaker_InvalidConfigFallsBack(t *testing.T) {
	b := New("test", Config{})
	assert.NoError(t, b.Execute(context.Background(), func() error { return nil }))
}

func TestBreaker_CancelledContext(t *testing.T) {
	b := New("test", DeliveryConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := b.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
