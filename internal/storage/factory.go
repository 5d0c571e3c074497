package storage

import (
	"fmt"

	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/config"
)

// NewStorage creates the adapter selected by cfg.DatabaseType. The adapter
// package must be imported for its registration to run.
func NewStorage(cfg *config.Config) (Storage, error) {
	var storageConfig GenericConfig

	switch cfg.DatabaseType {
	case "sqlite":
		storageConfig = GenericConfig{"type": "sqlite", "connection_string": cfg.DatabasePath}
	case "postgres", "postgresql":
		storageConfig = GenericConfig{"type": "postgres", "connection_string": cfg.DatabaseURL}
	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}

	return Create(storageConfig.GetType(), storageConfig)
}
