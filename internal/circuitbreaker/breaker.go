// Package circuitbreaker guards outbound delivery with Sony's gobreaker.
// Only transient failures count against the breaker: a rejected recipient
// or a provider-mandated wait says nothing about the provider's health.
package circuitbreaker

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
)

// Config holds the configuration for a circuit breaker
type Config struct {
	// MaxFailures is the number of consecutive transient failures that opens the circuit
	MaxFailures int
	// Timeout is how long the circuit stays open before a trial request
	Timeout time.Duration
	// MaxConcurrentRequests is the number of trial requests allowed while half-open
	MaxConcurrentRequests int
}

// DeliveryConfig suits the chat provider: a short outage opens the circuit
// and the rest of the cycle fails fast instead of timing out per message.
func DeliveryConfig() Config {
	return Config{
		MaxFailures:           5,
		Timeout:               60 * time.Second,
		MaxConcurrentRequests: 1,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.MaxFailures <= 0 {
		return fmt.Errorf("MaxFailures must be positive, got %d", c.MaxFailures)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MaxConcurrentRequests must be positive, got %d", c.MaxConcurrentRequests)
	}
	return nil
}

type Breaker struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

// New creates a breaker. An invalid config falls back to DeliveryConfig.
func New(name string, config Config) *Breaker {
	logger := logging.Component("circuitbreaker").WithFields(logging.String("breaker", name))
	if err := config.Validate(); err != nil {
		logger.Warn("Invalid circuit breaker config, using defaults", logging.Err(err))
		config = DeliveryConfig()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(config.MaxConcurrentRequests),
		Interval:    time.Minute,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.MaxFailures)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.IsType(err, errors.ErrTypeTransient)
		},
	}

	return &Breaker{
		name:    name,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Execute runs fn unless the circuit is open. A rejected call returns a
// transient error so callers treat it like any other outage.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.TransientError(fmt.Sprintf("circuit breaker '%s' is open", b.name), err)
	}
	return err
}

func (b *Breaker) IsOpen() bool {
	return b.breaker.State() == gobreaker.StateOpen
}

// Health fails while the circuit is open.
func (b *Breaker) Health(ctx context.Context) error {
	if b.IsOpen() {
		return errors.TransientError(fmt.Sprintf("circuit breaker '%s' is open", b.name), nil)
	}
	return nil
}
