// Package errors defines the error taxonomy shared by the fetch, delivery
// and persistence paths.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeTransient is a retryable network or HTTP failure
	ErrTypeTransient ErrorType = "transient"
	// ErrTypeRateLimit is an upstream HTTP 429
	ErrTypeRateLimit ErrorType = "rate_limit"
	// ErrTypeFloodControl is a delivery provider asking the caller to wait
	ErrTypeFloodControl ErrorType = "flood_control"
	// ErrTypePermanent marks an item whose retries are exhausted
	ErrTypePermanent ErrorType = "permanent"
	// ErrTypeMalformed marks a payload that could not be decoded
	ErrTypeMalformed ErrorType = "malformed"
	ErrTypeStorage    ErrorType = "storage"
	ErrTypeConfig     ErrorType = "config"
	ErrTypeNotFound   ErrorType = "not_found"
	ErrTypeValidation ErrorType = "validation"
	ErrTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	RetryAfter time.Duration          `json:"retry_after,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}
	if e.RetryAfter > 0 {
		parts = append(parts, fmt.Sprintf("retry_after=%s", e.RetryAfter))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// TransientError wraps a retryable failure such as a dropped connection or a 5xx.
func TransientError(msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeTransient, Message: msg, Cause: cause}
}

// RateLimitError reports an upstream 429 for resource.
func RateLimitError(resource string) *AppError {
	return &AppError{Type: ErrTypeRateLimit, Message: fmt.Sprintf("rate limit exceeded for %s", resource)}
}

// FloodControlError carries the wait mandated by the delivery provider.
func FloodControlError(retryAfter time.Duration, cause error) *AppError {
	return &AppError{
		Type:       ErrTypeFloodControl,
		Message:    "delivery throttled by provider",
		RetryAfter: retryAfter,
		Cause:      cause,
	}
}

// PermanentError marks an operation that failed after every attempt.
func PermanentError(msg string, cause error) *AppError {
	return &AppError{Type: ErrTypePermanent, Message: msg, Cause: cause}
}

func MalformedError(msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeMalformed, Message: msg, Cause: cause}
}

func StorageError(msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeStorage, Message: msg, Cause: cause}
}

func ConfigError(msg string) *AppError {
	return &AppError{Type: ErrTypeConfig, Message: msg}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{Type: ErrTypeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func ValidationError(msg string) *AppError {
	return &AppError{Type: ErrTypeValidation, Message: msg}
}

func InternalError(msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeInternal, Message: msg, Cause: cause}
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		appErr, ok := As(err)
		if !ok {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// GetType returns the outermost AppError type, or ErrTypeInternal for foreign errors
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrTypeInternal
}

// RetryAfter returns the provider-mandated wait carried by err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	for err != nil {
		appErr, ok := As(err)
		if !ok {
			return 0, false
		}
		if appErr.Type == ErrTypeFloodControl {
			return appErr.RetryAfter, true
		}
		err = appErr.Cause
	}
	return 0, false
}
