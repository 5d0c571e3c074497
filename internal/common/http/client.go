// Package http builds outbound HTTP clients and performs JSON GET calls with
// status codes mapped onto the shared error taxonomy.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tender-notifier/internal/common/errors"
)

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	InsecureSkipVerify  bool
}

// DefaultClientConfig returns default HTTP client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:             30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
}

// ClientOption is a function that modifies ClientConfig
type ClientOption func(*ClientConfig)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

func WithMaxIdleConnsPerHost(max int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxIdleConnsPerHost = max
	}
}

// WithInsecureSkipVerify toggles TLS certificate verification
func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(c *ClientConfig) {
		c.InsecureSkipVerify = skip
	}
}

// NewHTTPClient creates a new HTTP client with the given options
func NewHTTPClient(opts ...ClientOption) *http.Client {
	cfg := DefaultClientConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// JSONClient issues authenticated GET requests against one base URL.
type JSONClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewJSONClient returns a client for baseURL sending token as a bearer credential.
func NewJSONClient(client *http.Client, baseURL, token string) *JSONClient {
	if client == nil {
		client = NewHTTPClient()
	}
	return &JSONClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// GetJSON requests path with query and decodes the body into out.
//
// Connection failures and 5xx map to transient errors, 429 to a rate limit
// error, 404 to not found and other non-2xx codes to validation errors.
func (c *JSONClient) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.InternalError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.TransientError("request failed", err).WithContext("path", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.TransientError("failed to read response body", err).WithContext("path", path)
	}

	if err := classifyStatus(resp.StatusCode, path, body); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.MalformedError("failed to decode response", err).WithContext("path", path)
	}
	return nil
}

func classifyStatus(status int, path string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return errors.RateLimitError(path).WithCode("429")
	case status == http.StatusNotFound:
		return errors.NotFoundError(path).WithCode("404")
	case status >= 500 || status == http.StatusRequestTimeout:
		return errors.TransientError(fmt.Sprintf("HTTP %d", status), nil).
			WithCode(fmt.Sprint(status)).WithContext("path", path)
	default:
		return errors.ValidationError(fmt.Sprintf("HTTP %d: %s", status, truncate(body, 200))).
			WithCode(fmt.Sprint(status))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
