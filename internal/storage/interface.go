// Package storage persists user keys, subscriptions, sync watermarks,
// delivered markers and the attachment cache.
package storage

import (
	"context"
	"fmt"
)

// Storage is implemented by the sqlite and postgres adapters. Inserts of
// rows that already exist are silent no-ops.
type Storage interface {
	Close() error
	Health(ctx context.Context) error

	// User-owned keys
	AddUserKey(ctx context.Context, userID int64, key, name string) error
	ListUserKeys(ctx context.Context, userID int64) ([]UserKey, error)
	RenameUserKey(ctx context.Context, userID int64, key, name string) error
	DeleteUserKey(ctx context.Context, userID int64, key string) error
	// GetKeyName returns the stored display name, or "" when none is set.
	GetKeyName(ctx context.Context, userID int64, key string) (string, error)

	// Active key selection
	SetActiveKey(ctx context.Context, userID int64, key string) error
	GetActiveKey(ctx context.Context, userID int64) (string, bool, error)

	// Subscriptions
	AddSubscription(ctx context.Context, userID int64, key string) error
	RemoveSubscription(ctx context.Context, userID int64, key string) error
	IsSubscribed(ctx context.Context, userID int64, key string) (bool, error)
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	ListUserSubscriptions(ctx context.Context, userID int64) ([]Subscription, error)

	// Sync watermark
	GetLastTS(ctx context.Context, userID int64, key string) (int64, error)
	// ResetLastTS overwrites the watermark unconditionally.
	ResetLastTS(ctx context.Context, userID int64, key string, ts int64) error
	// AdvanceLastTS stores max(current, ts).
	AdvanceLastTS(ctx context.Context, userID int64, key string, ts int64) error
	DeleteSyncState(ctx context.Context, userID int64, key string) error

	// Delivered markers
	WasDelivered(ctx context.Context, userID int64, tenderID string) (bool, error)
	MarkDelivered(ctx context.Context, userID int64, tenderID string) error

	// Attachment cache
	SaveAttachments(ctx context.Context, tenderID string, attachments []Attachment) error
	GetAttachments(ctx context.Context, tenderID string) ([]Attachment, error)
}

// StorageConfig is implemented by each adapter's configuration.
type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StorageFactory builds a Storage from its configuration.
type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}

// GenericConfig is a map-based StorageConfig used when the caller cannot
// import the adapter package. Adapters read "type" and "connection_string".
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	if gc.GetConnectionString() == "" {
		return fmt.Errorf("connection_string is required")
	}
	return nil
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}
