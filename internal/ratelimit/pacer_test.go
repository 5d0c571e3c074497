package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_SpacesEvents(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)
	start := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}

	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestPacer_Disabled(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
