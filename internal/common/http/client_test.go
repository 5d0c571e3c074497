package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-notifier/internal/common/errors"
)

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()

	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 100, config.MaxIdleConns)
	assert.False(t, config.InsecureSkipVerify)
}

func TestNewHTTPClient_Options(t *testing.T) {
	client := NewHTTPClient(WithTimeout(5*time.Second), WithInsecureSkipVerify(true), nil)

	assert.Equal(t, 5*time.Second, client.Timeout)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestJSONClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tenders/get", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("id"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"_id":"abc","orderName":"Бумага"}`))
	}))
	defer server.Close()

	client := NewJSONClient(server.Client(), server.URL+"/api/", "secret")

	var out map[string]string
	err := client.GetJSON(context.Background(), "tenders/get", url.Values{"id": {"abc"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Бумага", out["orderName"])
}

func TestJSONClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		expected errors.ErrorType
	}{
		{http.StatusTooManyRequests, "", errors.ErrTypeRateLimit},
		{http.StatusBadGateway, "", errors.ErrTypeTransient},
		{http.StatusNotFound, "", errors.ErrTypeNotFound},
		{http.StatusForbidden, "denied", errors.ErrTypeValidation},
		{http.StatusOK, "not json", errors.ErrTypeMalformed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewJSONClient(server.Client(), server.URL, "")
			var out map[string]interface{}
			err := client.GetJSON(context.Background(), "/x", nil, &out)

			require.Error(t, err)
			assert.Equal(t, tt.expected, errors.GetType(err))
		})
	}
}

func TestJSONClient_ConnectionFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewJSONClient(nil, addr, "")
	err := client.GetJSON(context.Background(), "/x", nil, nil)

	assert.True(t, errors.IsType(err, errors.ErrTypeTransient))
}
