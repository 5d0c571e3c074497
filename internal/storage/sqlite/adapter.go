// Package sqlite is the default single-file storage backend.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/storage/sqlbase"
)

var dialect = sqlbase.Dialect{Name: "sqlite", Greatest: "MAX"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_keys (
		tg_user_id INTEGER NOT NULL,
		tender_key TEXT NOT NULL,
		tender_name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (tg_user_id, tender_key)
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		tg_user_id INTEGER NOT NULL,
		tender_key TEXT NOT NULL,
		PRIMARY KEY (tg_user_id, tender_key)
	)`,
	`CREATE TABLE IF NOT EXISTS active_keys (
		tg_user_id INTEGER PRIMARY KEY,
		tender_key TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscription_state (
		tg_user_id INTEGER NOT NULL,
		tender_key TEXT NOT NULL,
		last_ts INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tg_user_id, tender_key)
	)`,
	`CREATE TABLE IF NOT EXISTS sent_tenders (
		tg_user_id INTEGER NOT NULL,
		tender_id TEXT NOT NULL,
		PRIMARY KEY (tg_user_id, tender_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tender_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		url TEXT NOT NULL,
		UNIQUE (tender_id, url)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attachments_tender ON attachments(tender_id)`,
}

type Adapter struct {
	*sqlbase.Store
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	if dir := filepath.Dir(config.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", config.DatabasePath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between the sync job and the API.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		Store:  sqlbase.NewStore(db, dialect),
		config: config,
	}

	if err := adapter.Migrate(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		return NewAdapter(&Config{DatabasePath: c.GetConnectionString()})
	default:
		return nil, fmt.Errorf("invalid config type for SQLite storage")
	}
}

func (f *Factory) GetType() string {
	return "sqlite"
}

func init() {
	storage.Register("sqlite", &Factory{})
}
