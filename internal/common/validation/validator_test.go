package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tender-notifier/internal/common/errors"
)

type sample struct {
	Key      string `json:"key" validate:"notblank,max=10"`
	Timezone string `json:"tz" validate:"omitempty,timezone"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, New().Struct(sample{Key: "abc", Timezone: "Europe/Moscow"}))
	assert.NoError(t, Default().Struct(sample{Key: "abc"}))
}

func TestStruct_Blank(t *testing.T) {
	err := New().Struct(sample{Key: "   "})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "field 'key' is required")
}

func TestStruct_MultipleFields(t *testing.T) {
	err := New().Struct(sample{Key: "far-too-long-key", Timezone: "Mars/Olympus"})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	fields := appErr.Context["fields"].([]FieldError)
	require.Len(t, fields, 2)
	assert.Equal(t, "key", fields[0].Field)
	assert.Equal(t, "max", fields[0].Tag)
	assert.Equal(t, "tz", fields[1].Field)
	assert.Equal(t, "timezone", fields[1].Tag)
}
