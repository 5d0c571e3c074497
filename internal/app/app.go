// Package app wires configuration, storage, the tender API client and the
// notification pipeline into a running service.
package app

import (
	"context"

	"tender-notifier/internal/circuitbreaker"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/config"
	"tender-notifier/internal/locks"
	"tender-notifier/internal/redis"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/tenderapi"
	"tender-notifier/internal/tenders"
	"tender-notifier/internal/triggers/schedule"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Storage     storage.Storage
	RedisClient *redis.Client
	Locks       *locks.RedsyncManager
	API         *tenderapi.Client
	Breaker     *circuitbreaker.Breaker

	Tracker   *tenders.Tracker
	Keys      *tenders.Keys
	Syncer    *tenders.Syncer
	Exporter  *tenders.Exporter
	Assembler *tenders.Assembler
	Schedule  *schedule.Trigger

	Logger logging.Logger
}

// New creates a new application instance with all dependencies. It does
// not start the schedule or the HTTP server.
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.Component("app"),
	}

	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		// Redis is optional, just log the error
		app.Logger.Warn("Redis initialization failed, continuing without Redis", logging.Err(err))
	}

	if err := app.initializeAPI(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

// Shutdown stops background work, letting a running cycle observe cancellation.
func (app *App) Shutdown(ctx context.Context) error {
	if app.Schedule != nil {
		done := make(chan struct{})
		go func() {
			app.Schedule.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Schedule != nil {
		app.Schedule.Stop()
	}
	if app.Locks != nil {
		app.Locks.Close()
	}
	if app.Storage != nil {
		app.Storage.Close()
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
