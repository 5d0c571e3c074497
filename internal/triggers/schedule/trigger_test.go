package schedule_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/triggers/schedule"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *schedule.Config
		wantErr bool
	}{
		{"valid", schedule.NewConfig("sync", 30*time.Minute, 10*time.Second), false},
		{"missing name", schedule.NewConfig("", time.Minute, 0), true},
		{"sub-second interval", schedule.NewConfig("sync", 500*time.Millisecond, 0), true},
		{"negative first run", schedule.NewConfig("sync", time.Minute, -time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTrigger_RequiresJob(t *testing.T) {
	_, err := schedule.NewTrigger(schedule.NewConfig("sync", time.Minute, 0), nil)
	assert.Error(t, err)
}

func TestTrigger_FirstRunAfterDelay(t *testing.T) {
	var runs int32
	trigger, err := schedule.NewTrigger(
		schedule.NewConfig("sync", time.Hour, 20*time.Millisecond),
		func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	)
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop()

	assert.True(t, trigger.IsRunning())
	assert.NoError(t, trigger.Health())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, 2*time.Second, 10*time.Millisecond)

	st := trigger.Status()
	assert.Equal(t, 1, st.Runs)
	assert.NotNil(t, st.LastRun)
	require.NotNil(t, st.NextRun)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *st.NextRun, 5*time.Second)
}

func TestTrigger_RecordsFailures(t *testing.T) {
	trigger, err := schedule.NewTrigger(
		schedule.NewConfig("sync", time.Hour, 0),
		func(ctx context.Context) error { return errors.New("boom") },
	)
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop()

	assert.Eventually(t, func() bool { return trigger.Status().Failures == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "boom", trigger.Status().LastErr)
}

func TestTrigger_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	var cancelled int32

	trigger, err := schedule.NewTrigger(
		schedule.NewConfig("sync", time.Hour, 0),
		func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			atomic.StoreInt32(&cancelled, 1)
			return ctx.Err()
		},
	)
	require.NoError(t, err)
	require.NoError(t, trigger.Start(context.Background()))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	trigger.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))
	assert.False(t, trigger.IsRunning())
	assert.Error(t, trigger.Health())

	// Stopping twice is a no-op.
	trigger.Stop()
}

func TestTrigger_StartTwice(t *testing.T) {
	trigger, err := schedule.NewTrigger(
		schedule.NewConfig("sync", time.Hour, time.Hour),
		func(ctx context.Context) error { return nil },
	)
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop()
	assert.Error(t, trigger.Start(context.Background()))
}
