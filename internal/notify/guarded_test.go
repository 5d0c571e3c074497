package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/circuitbreaker"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/tenders"
)

type scriptedNotifier struct {
	errs  []error
	calls int
}

func (s *scriptedNotifier) Send(ctx context.Context, msg tenders.Message) error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func TestGuarded_PassesFloodControlThrough(t *testing.T) {
	flood := errors.FloodControlError(7*time.Second, nil)
	next := &scriptedNotifier{errs: []error{flood}}
	g := NewGuarded(next, circuitbreaker.New("telegram", circuitbreaker.DeliveryConfig()))

	err := g.Send(context.Background(), tenders.Message{UserID: 1, Text: "hi"})
	wait, ok := errors.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, wait)
}

func TestGuarded_FailsFastWhenOpen(t *testing.T) {
	down := errors.TransientError("bad gateway", nil)
	next := &scriptedNotifier{errs: []error{down, down}}
	g := NewGuarded(next, circuitbreaker.New("telegram", circuitbreaker.Config{
		MaxFailures: 2, Timeout: time.Hour, MaxConcurrentRequests: 1,
	}))
	ctx := context.Background()

	assert.Error(t, g.Send(ctx, tenders.Message{UserID: 1}))
	assert.Error(t, g.Send(ctx, tenders.Message{UserID: 1}))

	err := g.Send(ctx, tenders.Message{UserID: 1})
	assert.True(t, errors.IsType(err, errors.ErrTypeTransient))
	assert.Equal(t, 2, next.calls)
}
