package tenders

import (
	"context"

	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/storage"
)

// Keys manages the search keys a user has saved.
type Keys struct {
	store    storage.Storage
	resolver KeyResolver
	logger   logging.Logger
}

func NewKeys(store storage.Storage, resolver KeyResolver) *Keys {
	return &Keys{store: store, resolver: resolver, logger: logging.Component("keys")}
}

// Add resolves input against the remote key list and saves the result.
// The first key a user saves becomes the active one.
func (k *Keys) Add(ctx context.Context, userID int64, input string) (storage.UserKey, error) {
	key := k.resolver.ResolveKey(ctx, input)
	uk := storage.UserKey{UserID: userID, Key: key.ID, Name: key.Name}

	if err := k.store.AddUserKey(ctx, userID, uk.Key, uk.Name); err != nil {
		return uk, err
	}
	if _, ok, err := k.store.GetActiveKey(ctx, userID); err != nil {
		return uk, err
	} else if !ok {
		if err := k.store.SetActiveKey(ctx, userID, uk.Key); err != nil {
			return uk, err
		}
	}
	return uk, nil
}

// Delete removes the key along with its subscription and watermark.
func (k *Keys) Delete(ctx context.Context, userID int64, key string) error {
	return k.store.DeleteUserKey(ctx, userID, key)
}

func (k *Keys) List(ctx context.Context, userID int64) ([]storage.UserKey, error) {
	return k.store.ListUserKeys(ctx, userID)
}

// Active returns the selected key, defaulting to the first saved key.
func (k *Keys) Active(ctx context.Context, userID int64) (string, bool, error) {
	key, ok, err := k.store.GetActiveKey(ctx, userID)
	if err != nil || ok {
		return key, ok, err
	}
	keys, err := k.store.ListUserKeys(ctx, userID)
	if err != nil || len(keys) == 0 {
		return "", false, err
	}
	if err := k.store.SetActiveKey(ctx, userID, keys[0].Key); err != nil {
		return "", false, err
	}
	return keys[0].Key, true, nil
}

// SetActive selects one of the user's saved keys.
func (k *Keys) SetActive(ctx context.Context, userID int64, key string) error {
	saved, err := k.store.ListUserKeys(ctx, userID)
	if err != nil {
		return err
	}
	for _, uk := range saved {
		if uk.Key == key {
			return k.store.SetActiveKey(ctx, userID, key)
		}
	}
	return errors.NotFoundError("key " + key)
}

// DisplayName returns the saved name of key, or key itself.
func (k *Keys) DisplayName(ctx context.Context, userID int64, key string) string {
	name, err := k.store.GetKeyName(ctx, userID, key)
	if err != nil {
		k.logger.Warn("Key name lookup failed", logging.String("key", key), logging.Err(err))
	}
	if name == "" {
		return key
	}
	return name
}

// RefreshNames copies remote key names onto the user's saved keys and
// returns how many were renamed. Keys the user has not saved are ignored.
func (k *Keys) RefreshNames(ctx context.Context, userID int64) (int, error) {
	remote, err := k.resolver.ListKeys(ctx)
	if err != nil {
		return 0, err
	}
	saved, err := k.store.ListUserKeys(ctx, userID)
	if err != nil {
		return 0, err
	}

	current := make(map[string]string, len(saved))
	for _, uk := range saved {
		current[uk.Key] = uk.Name
	}

	renamed := 0
	for _, rk := range remote {
		name, ok := current[rk.ID]
		if !ok || rk.Name == "" || rk.Name == name {
			continue
		}
		if err := k.store.RenameUserKey(ctx, userID, rk.ID, rk.Name); err != nil {
			return renamed, err
		}
		renamed++
	}
	return renamed, nil
}
