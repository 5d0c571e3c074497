// Package ratelimit bounds the rate of outbound tender API calls and paces
// chat deliveries.
package ratelimit

import (
	"context"
	"time"
)

// Limiter admits one outbound call at a time, blocking until the call fits
// the configured budget.
type Limiter interface {
	Admit(ctx context.Context) error
}

// Config describes an N-calls-per-window budget.
type Config struct {
	Requests int
	Window   time.Duration
}

// DefaultConfig allows 250 calls per rolling 10 seconds.
func DefaultConfig() Config {
	return Config{Requests: 250, Window: 10 * time.Second}
}

// Clock and Sleeper are injectable for tests.
type (
	Clock   func() time.Time
	Sleeper func(ctx context.Context, d time.Duration) error
)

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Unlimited admits every call immediately.
type Unlimited struct{}

func (Unlimited) Admit(ctx context.Context) error {
	return ctx.Err()
}
