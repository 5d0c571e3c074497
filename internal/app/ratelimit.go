package app

import (
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/ratelimit"
)

// apiLimiterKey is the redis key of the shared tender API window.
const apiLimiterKey = "tender-notifier:ratelimit:tenderapi"

// initializeRateLimiter shares the window through redis when available.
func (app *App) initializeRateLimiter() ratelimit.Limiter {
	requests, window := app.Config.RateLimit()
	rlConfig := ratelimit.Config{Requests: requests, Window: window}

	app.Logger.Info("Rate Limiting: Enabled",
		logging.Int("requests", requests),
		logging.Duration("window", window),
		logging.Bool("distributed", app.RedisClient != nil),
	)

	if app.RedisClient != nil {
		return ratelimit.NewRedisWindow(app.RedisClient, apiLimiterKey, rlConfig)
	}
	return ratelimit.NewWindow(rlConfig)
}
