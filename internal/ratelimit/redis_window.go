package ratelimit

import (
	"context"
	"time"

	"tender-notifier/internal/common/logging"
)

// SlotReserver is the redis operation behind RedisWindow.
type SlotReserver interface {
	ReserveSlot(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (time.Duration, error)
}

// RedisWindow shares the sliding window between instances through a redis
// sorted set. When redis is unreachable it falls back to a local Window so
// fetching never stalls on the coordination layer.
type RedisWindow struct {
	redis    SlotReserver
	key      string
	config   Config
	fallback *Window
	now      Clock
	sleep    Sleeper
	logger   logging.Logger
}

// NewRedisWindow creates a distributed limiter stored under key.
func NewRedisWindow(redis SlotReserver, key string, config Config, opts ...WindowOption) *RedisWindow {
	fallback := NewWindow(config, opts...)
	return &RedisWindow{
		redis:    redis,
		key:      key,
		config:   fallback.config,
		fallback: fallback,
		now:      fallback.now,
		sleep:    fallback.sleep,
		logger:   logging.Component("ratelimit"),
	}
}

func (r *RedisWindow) Admit(ctx context.Context) error {
	for {
		wait, err := r.redis.ReserveSlot(ctx, r.key, r.config.Requests, r.config.Window, r.now())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("Redis rate limiter unavailable, using local window", logging.Err(err))
			return r.fallback.Admit(ctx)
		}
		if wait <= 0 {
			return nil
		}
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
