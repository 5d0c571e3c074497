package tenders

import (
	"context"
	"time"

	"tender-notifier/internal/storage"
)

// Tracker owns the per-subscription watermark and the delivered markers.
type Tracker struct {
	store storage.Storage
	now   func() time.Time
}

func NewTracker(store storage.Storage) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Subscribe registers the subscription with its watermark set to now, so
// only tenders published afterwards are delivered.
func (t *Tracker) Subscribe(ctx context.Context, userID int64, key string) error {
	if err := t.store.ResetLastTS(ctx, userID, key, t.now().UnixMilli()); err != nil {
		return err
	}
	return t.store.AddSubscription(ctx, userID, key)
}

// Unsubscribe drops the subscription and its watermark. Delivered markers
// are kept.
func (t *Tracker) Unsubscribe(ctx context.Context, userID int64, key string) error {
	if err := t.store.RemoveSubscription(ctx, userID, key); err != nil {
		return err
	}
	return t.store.DeleteSyncState(ctx, userID, key)
}

func (t *Tracker) IsSubscribed(ctx context.Context, userID int64, key string) (bool, error) {
	return t.store.IsSubscribed(ctx, userID, key)
}

func (t *Tracker) LastTS(ctx context.Context, userID int64, key string) (int64, error) {
	return t.store.GetLastTS(ctx, userID, key)
}

// Advance raises the watermark to ts; a lower ts leaves it unchanged.
func (t *Tracker) Advance(ctx context.Context, userID int64, key string, ts int64) error {
	return t.store.AdvanceLastTS(ctx, userID, key, ts)
}

func (t *Tracker) WasDelivered(ctx context.Context, userID int64, tenderID string) (bool, error) {
	return t.store.WasDelivered(ctx, userID, tenderID)
}

func (t *Tracker) MarkDelivered(ctx context.Context, userID int64, tenderID string) error {
	return t.store.MarkDelivered(ctx, userID, tenderID)
}
