// Package postgres is the shared-database storage backend, used when
// several notifier instances run against one set of subscriptions.
package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/storage/sqlbase"
)

var dialect = sqlbase.Dialect{Name: "postgres", Greatest: "GREATEST"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_keys (
		tg_user_id BIGINT NOT NULL,
		tender_key TEXT NOT NULL,
		tender_name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (tg_user_id, tender_key)
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		tg_user_id BIGINT NOT NULL,
		tender_key TEXT NOT NULL,
		PRIMARY KEY (tg_user_id, tender_key)
	)`,
	`CREATE TABLE IF NOT EXISTS active_keys (
		tg_user_id BIGINT PRIMARY KEY,
		tender_key TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscription_state (
		tg_user_id BIGINT NOT NULL,
		tender_key TEXT NOT NULL,
		last_ts BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (tg_user_id, tender_key)
	)`,
	`CREATE TABLE IF NOT EXISTS sent_tenders (
		tg_user_id BIGINT NOT NULL,
		tender_id TEXT NOT NULL,
		PRIMARY KEY (tg_user_id, tender_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id BIGSERIAL PRIMARY KEY,
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
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	db, err := sqlx.Open("pgx", config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		Store:  sqlbase.NewStore(db, dialect),
		config: config,
	}

	if err := adapter.Migrate(ctx, schema); err != nil {
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
		pgConfig, err := NewConfigFromURL(c.GetConnectionString())
		if err != nil {
			return nil, err
		}
		return NewAdapter(pgConfig)
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{})
}
