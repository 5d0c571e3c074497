package app

import (
	"fmt"

	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/storage"
	// Adapters register their factories on import.
	_ "tender-notifier/internal/storage/postgres"
	_ "tender-notifier/internal/storage/sqlite"
)

func (app *App) initializeStorage() error {
	switch app.Config.DatabaseType {
	case "postgres", "postgresql":
		app.Logger.Info("Database: PostgreSQL")
	default:
		app.Logger.Info("Database: SQLite", logging.String("path", app.Config.DatabasePath))
	}

	store, err := storage.NewStorage(app.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.Storage = store
	return nil
}
