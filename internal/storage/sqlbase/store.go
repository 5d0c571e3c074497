// Package sqlbase implements storage.Storage over sqlx for any SQL engine
// that understands ON CONFLICT clauses. The sqlite and postgres adapters
// embed Store and supply their schema and dialect.
package sqlbase

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/storage"
)

// Dialect captures the few statements that differ between engines.
type Dialect struct {
	Name string
	// Greatest is the two-argument maximum function: MAX for sqlite, GREATEST for postgres.
	Greatest string
}

// Store holds the shared query implementations.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewStore(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the connection for adapter-specific work such as migrations.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Migrate runs each statement in order. Statements must be idempotent.
func (s *Store) Migrate(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.StorageError("migration failed", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) exec(ctx context.Context, op, query string, args ...interface{}) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return errors.StorageError(fmt.Sprintf("%s %s", s.dialect.Name, op), err)
	}
	return nil
}

func (s *Store) AddUserKey(ctx context.Context, userID int64, key, name string) error {
	return s.exec(ctx, "add user key",
		`INSERT INTO user_keys (tg_user_id, tender_key, tender_name) VALUES (?, ?, ?)
		 ON CONFLICT (tg_user_id, tender_key) DO NOTHING`,
		userID, key, name)
}

func (s *Store) ListUserKeys(ctx context.Context, userID int64) ([]storage.UserKey, error) {
	keys := []storage.UserKey{}
	err := s.db.SelectContext(ctx, &keys, s.db.Rebind(
		`SELECT tg_user_id, tender_key, tender_name FROM user_keys
		 WHERE tg_user_id = ? ORDER BY tender_key`), userID)
	if err != nil {
		return nil, errors.StorageError("list user keys", err)
	}
	return keys, nil
}

func (s *Store) RenameUserKey(ctx context.Context, userID int64, key, name string) error {
	return s.exec(ctx, "rename user key",
		`UPDATE user_keys SET tender_name = ? WHERE tg_user_id = ? AND tender_key = ?`,
		name, userID, key)
}

// DeleteUserKey removes the key together with its subscription and sync state.
func (s *Store) DeleteUserKey(ctx context.Context, userID int64, key string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StorageError("begin delete user key", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"user_keys", "subscriptions", "subscription_state"} {
		query := tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE tg_user_id = ? AND tender_key = ?`, table))
		if _, err := tx.ExecContext(ctx, query, userID, key); err != nil {
			return errors.StorageError("delete from "+table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`DELETE FROM active_keys WHERE tg_user_id = ? AND tender_key = ?`), userID, key); err != nil {
		return errors.StorageError("clear active key", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.StorageError("commit delete user key", err)
	}
	return nil
}

func (s *Store) GetKeyName(ctx context.Context, userID int64, key string) (string, error) {
	var name string
	err := s.db.GetContext(ctx, &name, s.db.Rebind(
		`SELECT tender_name FROM user_keys WHERE tg_user_id = ? AND tender_key = ?`), userID, key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.StorageError("get key name", err)
	}
	return name, nil
}

func (s *Store) SetActiveKey(ctx context.Context, userID int64, key string) error {
	return s.exec(ctx, "set active key",
		`INSERT INTO active_keys (tg_user_id, tender_key) VALUES (?, ?)
		 ON CONFLICT (tg_user_id) DO UPDATE SET tender_key = excluded.tender_key`,
		userID, key)
}

func (s *Store) GetActiveKey(ctx context.Context, userID int64) (string, bool, error) {
	var key string
	err := s.db.GetContext(ctx, &key, s.db.Rebind(
		`SELECT tender_key FROM active_keys WHERE tg_user_id = ?`), userID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.StorageError("get active key", err)
	}
	return key, true, nil
}

func (s *Store) AddSubscription(ctx context.Context, userID int64, key string) error {
	return s.exec(ctx, "add subscription",
		`INSERT INTO subscriptions (tg_user_id, tender_key) VALUES (?, ?)
		 ON CONFLICT (tg_user_id, tender_key) DO NOTHING`,
		userID, key)
}

func (s *Store) RemoveSubscription(ctx context.Context, userID int64, key string) error {
	return s.exec(ctx, "remove subscription",
		`DELETE FROM subscriptions WHERE tg_user_id = ? AND tender_key = ?`, userID, key)
}

func (s *Store) IsSubscribed(ctx context.Context, userID int64, key string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(
		`SELECT COUNT(*) FROM subscriptions WHERE tg_user_id = ? AND tender_key = ?`), userID, key)
	if err != nil {
		return false, errors.StorageError("check subscription", err)
	}
	return n > 0, nil
}

const subscriptionSelect = `SELECT s.tg_user_id, s.tender_key, COALESCE(k.tender_name, '') AS tender_name
	FROM subscriptions s
	LEFT JOIN user_keys k ON k.tg_user_id = s.tg_user_id AND k.tender_key = s.tender_key`

func (s *Store) ListSubscriptions(ctx context.Context) ([]storage.Subscription, error) {
	subs := []storage.Subscription{}
	err := s.db.SelectContext(ctx, &subs, subscriptionSelect+` ORDER BY s.tg_user_id, s.tender_key`)
	if err != nil {
		return nil, errors.StorageError("list subscriptions", err)
	}
	return subs, nil
}

func (s *Store) ListUserSubscriptions(ctx context.Context, userID int64) ([]storage.Subscription, error) {
	subs := []storage.Subscription{}
	err := s.db.SelectContext(ctx, &subs, s.db.Rebind(
		subscriptionSelect+` WHERE s.tg_user_id = ? ORDER BY s.tender_key`), userID)
	if err != nil {
		return nil, errors.StorageError("list user subscriptions", err)
	}
	return subs, nil
}

// GetLastTS returns 0 when no watermark has been stored.
func (s *Store) GetLastTS(ctx context.Context, userID int64, key string) (int64, error) {
	var ts int64
	err := s.db.GetContext(ctx, &ts, s.db.Rebind(
		`SELECT last_ts FROM subscription_state WHERE tg_user_id = ? AND tender_key = ?`), userID, key)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.StorageError("get last_ts", err)
	}
	return ts, nil
}

func (s *Store) ResetLastTS(ctx context.Context, userID int64, key string, ts int64) error {
	return s.exec(ctx, "reset last_ts",
		`INSERT INTO subscription_state (tg_user_id, tender_key, last_ts) VALUES (?, ?, ?)
		 ON CONFLICT (tg_user_id, tender_key) DO UPDATE SET last_ts = excluded.last_ts`,
		userID, key, ts)
}

func (s *Store) AdvanceLastTS(ctx context.Context, userID int64, key string, ts int64) error {
	return s.exec(ctx, "advance last_ts", fmt.Sprintf(
		`INSERT INTO subscription_state (tg_user_id, tender_key, last_ts) VALUES (?, ?, ?)
		 ON CONFLICT (tg_user_id, tender_key)
		 DO UPDATE SET last_ts = %s(subscription_state.last_ts, excluded.last_ts)`, s.dialect.Greatest),
		userID, key, ts)
}

func (s *Store) DeleteSyncState(ctx context.Context, userID int64, key string) error {
	return s.exec(ctx, "delete sync state",
		`DELETE FROM subscription_state WHERE tg_user_id = ? AND tender_key = ?`, userID, key)
}

func (s *Store) WasDelivered(ctx context.Context, userID int64, tenderID string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(
		`SELECT COUNT(*) FROM sent_tenders WHERE tg_user_id = ? AND tender_id = ?`), userID, tenderID)
	if err != nil {
		return false, errors.StorageError("check delivered", err)
	}
	return n > 0, nil
}

func (s *Store) MarkDelivered(ctx context.Context, userID int64, tenderID string) error {
	return s.exec(ctx, "mark delivered",
		`INSERT INTO sent_tenders (tg_user_id, tender_id) VALUES (?, ?)
		 ON CONFLICT (tg_user_id, tender_id) DO NOTHING`,
		userID, tenderID)
}

// SaveAttachments inserts every link in one transaction; existing
// (tender_id, url) pairs are kept as they are.
func (s *Store) SaveAttachments(ctx context.Context, tenderID string, attachments []storage.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StorageError("begin save attachments", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`INSERT INTO attachments (tender_id, file_name, url) VALUES (?, ?, ?)
		ON CONFLICT (tender_id, url) DO NOTHING`)
	for _, a := range attachments {
		if _, err := tx.ExecContext(ctx, query, tenderID, a.FileName, a.URL); err != nil {
			return errors.StorageError("save attachment", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StorageError("commit attachments", err)
	}
	return nil
}

func (s *Store) GetAttachments(ctx context.Context, tenderID string) ([]storage.Attachment, error) {
	atts := []storage.Attachment{}
	err := s.db.SelectContext(ctx, &atts, s.db.Rebind(
		`SELECT tender_id, file_name, url FROM attachments WHERE tender_id = ? ORDER BY id`), tenderID)
	if err != nil {
		return nil, errors.StorageError("get attachments", err)
	}
	return atts, nil
}

var _ storage.Storage = (*Store)(nil)
