package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/config"
)

type stubFactory struct {
	got StorageConfig
}

func (f *stubFactory) Create(config StorageConfig) (Storage, error) {
	f.got = config
	return nil, nil
}

func (f *stubFactory) GetType() string { return "stub" }

func TestRegistry_CreateAndTypes(t *testing.T) {
	r := NewRegistry()
	f := &stubFactory{}
	r.Register("stub", f)
	r.Register("another", &stubFactory{})

	_, err := r.Create("stub", GenericConfig{"type": "stub", "connection_string": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", f.got.GetConnectionString())

	_, err = r.Create("missing", GenericConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: another, stub")

	assert.Equal(t, []string{"another", "stub"}, r.GetAvailableTypes())
}

func TestGenericConfig(t *testing.T) {
	assert.Error(t, GenericConfig{"type": "sqlite"}.Validate())
	cfg := GenericConfig{"type": "sqlite", "connection_string": "/tmp/db"}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.GetType())
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(&config.Config{DatabaseType: "mongodb"})
	assert.Error(t, err)
}
