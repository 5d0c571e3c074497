package app

import (
	"context"

	"tender-notifier/internal/handlers"
	"tender-notifier/internal/server"
)

// NewServer builds the admin HTTP server. It returns nil when PORT is empty.
func (app *App) NewServer() *server.Server {
	if app.Config.Port == "" {
		return nil
	}

	checks := map[string]handlers.HealthCheck{}
	if app.RedisClient != nil {
		checks["redis"] = app.RedisClient.Health
	}
	if app.Breaker != nil {
		checks["delivery"] = app.Breaker.Health
	}
	if app.Schedule != nil {
		checks["schedule"] = func(context.Context) error { return app.Schedule.Health() }
	}

	h := handlers.New(app.Storage, handlers.Services{
		Syncer:        app.Syncer,
		Exporter:      app.Exporter,
		Reporter:      app.Assembler,
		Subscriptions: app.Tracker,
		Keys:          app.Keys,
		Checks:        checks,
	})
	return server.New(h.Router(), app.Config.Port)
}
