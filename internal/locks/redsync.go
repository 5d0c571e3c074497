// Package locks provides the cross-instance cycle lock. It uses the Redlock
// implementation from go-redsync/redsync/v4 on top of the shared Redis client.
//
// A lock is taken without waiting: when another instance already runs the
// cycle, TryLock reports acquired=false and the caller skips the run. While
// held, the lock is extended at a third of its expiry so long cycles keep it.
package locks

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/redis"
)

// DefaultExpiry bounds how long a crashed holder can block other instances.
const DefaultExpiry = 2 * time.Minute

type RedsyncManager struct {
	redsync *redsync.Redsync
	expiry  time.Duration
	logger  logging.Logger

	mu    sync.Mutex
	held  map[string]*heldLock
	clock func() time.Time
}

type heldLock struct {
	mutex    *redsync.Mutex
	name     string
	acquired time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRedsyncManager creates a lock manager over the given Redis client.
// A non-positive expiry falls back to DefaultExpiry.
func NewRedsyncManager(redisClient *redis.Client, expiry time.Duration) (*RedsyncManager, error) {
	if redisClient == nil {
		return nil, errors.ConfigError("redis client is required")
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	pool := goredis.NewPool(redisClient.Raw())

	return &RedsyncManager{
		redsync: redsync.New(pool),
		expiry:  expiry,
		logger:  logging.Component("locks"),
		held:    make(map[string]*heldLock),
		clock:   time.Now,
	}, nil
}

// TryLock makes a single acquisition attempt. A lock held elsewhere is not an
// error: it returns acquired=false and a nil release.
func (rm *RedsyncManager) TryLock(ctx context.Context, name string) (func(), bool, error) {
	mutex := rm.redsync.NewMutex(fmt.Sprintf("lock:%s", name),
		redsync.WithExpiry(rm.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isTaken(err) {
			return nil, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, false, errors.InternalError("failed to acquire distributed lock", err)
	}

	renewCtx, cancel := context.WithCancel(context.Background())
	lock := &heldLock{
		mutex:    mutex,
		name:     name,
		acquired: rm.clock(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	rm.mu.Lock()
	rm.held[name] = lock
	rm.mu.Unlock()

	go rm.renew(renewCtx, lock)

	var once sync.Once
	release := func() {
		once.Do(func() { rm.release(lock) })
	}
	return release, true, nil
}

// isTaken reports whether the attempt failed only because another owner
// holds the mutex.
func isTaken(err error) bool {
	if stderrors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	if stderrors.As(err, &taken) {
		return true
	}
	var nodeTaken *redsync.ErrNodeTaken
	return stderrors.As(err, &nodeTaken)
}

func (rm *RedsyncManager) renew(ctx context.Context, lock *heldLock) {
	defer close(lock.done)

	interval := rm.expiry / 3
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			extendCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			ok, err := lock.mutex.ExtendContext(extendCtx)
			cancel()
			if err != nil || !ok {
				rm.logger.Warn("Cycle lock lost",
					logging.String("lock", lock.name),
					logging.Duration("held_for", rm.clock().Sub(lock.acquired)),
				)
				rm.forget(lock)
				return
			}
		}
	}
}

func (rm *RedsyncManager) forget(lock *heldLock) {
	rm.mu.Lock()
	if rm.held[lock.name] == lock {
		delete(rm.held, lock.name)
	}
	rm.mu.Unlock()
}

func (rm *RedsyncManager) release(lock *heldLock) {
	lock.cancel()
	<-lock.done
	rm.forget(lock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := lock.mutex.UnlockContext(ctx); err != nil {
		rm.logger.Warn("Failed to release cycle lock", logging.String("lock", lock.name), logging.Err(err))
	}
}

// Close releases every lock still held by this manager.
func (rm *RedsyncManager) Close() error {
	rm.mu.Lock()
	locks := make([]*heldLock, 0, len(rm.held))
	for _, l := range rm.held {
		locks = append(locks, l)
	}
	rm.mu.Unlock()

	for _, l := range locks {
		rm.release(l)
	}
	return nil
}
