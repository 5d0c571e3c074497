package tenders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/tenderapi"
)

func TestKeys_AddResolvesAndActivates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	keys := NewKeys(store, &fakeResolver{keys: []tenderapi.Key{{ID: "id-1", Name: "Кабели"}}})

	uk, err := keys.Add(ctx, 1, "Кабели")
	require.NoError(t, err)
	assert.Equal(t, "id-1", uk.Key)
	assert.Equal(t, "Кабели", uk.Name)

	_, err = keys.Add(ctx, 1, "raw-key")
	require.NoError(t, err)

	active, ok, err := keys.Active(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "id-1", active)

	assert.Equal(t, "Кабели", keys.DisplayName(ctx, 1, "id-1"))
	assert.Equal(t, "raw-key", keys.DisplayName(ctx, 1, "raw-key"))
}

func TestKeys_ActiveDefaultsToFirstKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.AddUserKey(ctx, 1, "b", ""))
	require.NoError(t, store.AddUserKey(ctx, 1, "a", ""))

	active, ok, err := NewKeys(store, &fakeResolver{}).Active(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", active)

	_, ok, err = NewKeys(store, &fakeResolver{}).Active(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeys_SetActive(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	keys := NewKeys(store, &fakeResolver{})
	require.NoError(t, store.AddUserKey(ctx, 1, "a", ""))
	require.NoError(t, store.AddUserKey(ctx, 1, "b", ""))

	require.NoError(t, keys.SetActive(ctx, 1, "b"))
	active, ok, err := keys.Active(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", active)

	err = keys.SetActive(ctx, 1, "unknown")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	active, _, _ = keys.Active(ctx, 1)
	assert.Equal(t, "b", active, "a rejected selection keeps the current key")
}

func TestKeys_RefreshNames(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.AddUserKey(ctx, 1, "id-1", ""))
	require.NoError(t, store.AddUserKey(ctx, 1, "id-2", "Трубы"))

	resolver := &fakeResolver{keys: []tenderapi.Key{
		{ID: "id-1", Name: "Кабели"},
		{ID: "id-2", Name: "Трубы"},
		{ID: "id-3", Name: "Чужой"},
		{ID: "id-2", Name: ""},
	}}
	renamed, err := NewKeys(store, resolver).RefreshNames(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, renamed)

	list, err := store.ListUserKeys(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Кабели", list[0].Name)
}

func TestKeys_RefreshNamesRemoteError(t *testing.T) {
	_, err := NewKeys(newTestStore(t), &fakeResolver{err: assert.AnError}).RefreshNames(context.Background(), 1)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestKeys_DeleteUnsubscribes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	keys := NewKeys(store, &fakeResolver{})
	_, err := keys.Add(ctx, 1, "k")
	require.NoError(t, err)
	require.NoError(t, NewTracker(store).Subscribe(ctx, 1, "k"))

	require.NoError(t, keys.Delete(ctx, 1, "k"))

	subscribed, err := store.IsSubscribed(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, subscribed)
}
