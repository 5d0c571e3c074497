package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"1800s", 30 * time.Minute, false},
		{"100ms", 100 * time.Millisecond, false},
		{"1800", 30 * time.Minute, false},
		{" 10 ", 10 * time.Second, false},
		{"1d", 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"soon", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatMillis(t *testing.T) {
	moscow := LoadLocation("Europe/Moscow")
	// 2024-03-01 09:30:00 UTC
	ms := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC).UnixMilli()

	assert.Equal(t, "01.03.2024 12:30", FormatMillis(ms, "02.01.2006 15:04", moscow))
	assert.Equal(t, "01.03.2024 09:30", FormatMillis(ms, "02.01.2006 15:04", nil))
	assert.Equal(t, "", FormatMillis(0, "02.01.2006 15:04", moscow))
}

func TestLoadLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation(""))
	assert.Equal(t, time.UTC, LoadLocation("Mars/Olympus_Mons"))
}
