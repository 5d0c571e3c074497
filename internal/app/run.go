package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/config"
)

// LoadConfig reads .env, initialises logging and validates the environment.
func LoadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	logging.InitGlobalLogger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return nil, err
	}
	return cfg, nil
}

// Run is the main entry point for the service
func Run() error {
	cfg, err := LoadConfig()
	defer logging.MustSync()
	if err != nil {
		return err
	}

	logging.Info("Starting tender notifier",
		logging.String("notifier", cfg.Notifier),
		logging.String("database", cfg.DatabaseType),
		logging.Duration("interval", cfg.Interval()),
	)

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.StartSchedule(ctx); err != nil {
		logging.Error("Failed to start schedule", err)
		return err
	}

	var serveErr <-chan error
	srv := app.NewServer()
	if srv != nil {
		serveErr, err = srv.Start()
		if err != nil {
			logging.Error("Server failed to start", err)
			return err
		}
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logging.Error("Server stopped unexpectedly", err)
		}
	}

	logging.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Error during app shutdown", logging.Err(err))
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server forced to shutdown", err)
			return err
		}
	}

	logging.Info("Shutdown complete")
	return nil
}
