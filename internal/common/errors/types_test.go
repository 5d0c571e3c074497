package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name:     "basic error",
			appError: ConfigError("TENDER_API_TOKEN is required"),
			want:     "config: TENDER_API_TOKEN is required",
		},
		{
			name:     "error with code",
			appError: TransientError("detail request failed", nil).WithCode("502"),
			want:     "transient: detail request failed: code=502",
		},
		{
			name:     "error with cause",
			appError: StorageError("insert failed", errors.New("disk full")),
			want:     "storage: insert failed: cause=disk full",
		},
		{
			name:     "flood control",
			appError: FloodControlError(3*time.Second, nil),
			want:     "flood_control: delivery throttled by provider: retry_after=3s",
		},
		{
			name: "context keys are sorted",
			appError: PermanentError("detail unavailable", nil).
				WithContext("tender_id", "t-1").
				WithContext("attempts", 5),
			want: "permanent: detail unavailable: context={attempts=5, tender_id=t-1}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := RateLimitError("tenders/get")
	wrapped := fmt.Errorf("attempt 3: %w", inner)
	permanent := PermanentError("gave up", wrapped)

	assert.True(t, IsType(wrapped, ErrTypeRateLimit))
	assert.True(t, IsType(permanent, ErrTypePermanent))
	assert.True(t, IsType(permanent, ErrTypeRateLimit))
	assert.False(t, IsType(permanent, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeTransient))
	assert.False(t, IsType(nil, ErrTypeTransient))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetType(nil))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain")))
	assert.Equal(t, ErrTypeNotFound, GetType(fmt.Errorf("wrap: %w", NotFoundError("subscription"))))
}

func TestRetryAfter(t *testing.T) {
	d, ok := RetryAfter(fmt.Errorf("send: %w", FloodControlError(7*time.Second, nil)))
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	_, ok = RetryAfter(TransientError("eof", nil))
	assert.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := TransientError("listing failed", cause)
	assert.True(t, errors.Is(err, cause))
}
