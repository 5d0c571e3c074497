// Package tenderapi is a client for the tender aggregation API.
package tenderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tender-notifier/internal/common/cache"
	"tender-notifier/internal/common/errors"
	commonhttp "tender-notifier/internal/common/http"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/ratelimit"
)

const keysCacheKey = "tenderapi:keys"

// StatusOpen is the status code of tenders accepting applications.
const StatusOpen = 1

// ListQuery selects one page of the listing endpoint.
type ListQuery struct {
	Key      string
	Statuses []int
	Page     int
	Size     int
	// PublishedFrom, when non-zero, asks the server for tenders published
	// at or after this Unix ms time.
	PublishedFrom int64
}

// Client talks to the tender API. Every call passes the shared limiter.
type Client struct {
	http    *commonhttp.JSONClient
	limiter ratelimit.Limiter
	cache   cache.Cache
	keysTTL time.Duration
	logger  logging.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithLimiter sets the admission gate for outbound calls.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithKeyCache caches the remote key list for ttl.
func WithKeyCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.keysTTL = ttl
	}
}

// NewClient creates an API client over an already configured JSON client.
func NewClient(http *commonhttp.JSONClient, opts ...Option) *Client {
	c := &Client{
		http:    http,
		limiter: ratelimit.Unlimited{},
		logger:  logging.Component("tenderapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Admit(ctx); err != nil {
		return err
	}
	return c.http.GetJSON(ctx, path, query, out)
}

// ListTenders fetches one listing page.
func (c *Client) ListTenders(ctx context.Context, q ListQuery) ([]Preview, error) {
	params := url.Values{}
	params.Set("type", "0")
	params.Set("id", q.Key)
	for _, s := range q.Statuses {
		params.Add("statuses", strconv.Itoa(s))
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	if q.PublishedFrom > 0 {
		params.Set("fromPublicationDateTime", strconv.FormatInt(q.PublishedFrom, 10))
		params.Set("publicationDateTime", "-1")
	}

	var resp struct {
		Tenders []Preview `json:"tenders"`
	}
	if err := c.get(ctx, "tenders/v2/getlist", params, &resp); err != nil {
		return nil, err
	}
	return resp.Tenders, nil
}

// GetTender fetches the full record of one tender.
func (c *Client) GetTender(ctx context.Context, id string) (*Detail, error) {
	var detail Detail
	if err := c.get(ctx, "tenders/get", url.Values{"id": {id}}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListKeys returns the saved searches of the account, cached when a key
// cache is configured.
func (c *Client) ListKeys(ctx context.Context) ([]Key, error) {
	if c.cache != nil {
		var keys []Key
		found, err := c.cache.Get(ctx, keysCacheKey, &keys)
		if err != nil {
			c.logger.Warn("Key cache read failed", logging.Err(err))
		} else if found {
			return keys, nil
		}
	}

	var raw json.RawMessage
	if err := c.get(ctx, "keys/getall", nil, &raw); err != nil {
		return nil, err
	}
	keys, err := decodeKeys(raw)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, keysCacheKey, keys, c.keysTTL); err != nil {
			c.logger.Warn("Key cache write failed", logging.Err(err))
		}
	}
	return keys, nil
}

// decodeKeys accepts a bare array or an object wrapping it in "keys" or "data".
func decodeKeys(raw json.RawMessage) ([]Key, error) {
	type remoteKey struct {
		ID    string `json:"_id"`
		AltID string `json:"id"`
		Name  string `json:"name"`
	}

	var items []remoteKey
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.MalformedError("failed to decode key list", err)
		}
	} else {
		var wrapped struct {
			Keys []remoteKey `json:"keys"`
			Data []remoteKey `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, errors.MalformedError("failed to decode key list", err)
		}
		items = wrapped.Keys
		if len(items) == 0 {
			items = wrapped.Data
		}
	}

	keys := make([]Key, 0, len(items))
	for _, it := range items {
		id := it.ID
		if id == "" {
			id = it.AltID
		}
		keys = append(keys, Key{ID: id, Name: it.Name})
	}
	return keys, nil
}

// ResolveKey maps a human-entered key name to its identifier. Exactly one
// case-insensitive name match wins; anything else, including a failed
// lookup, treats the input as the identifier itself with no display name.
func (c *Client) ResolveKey(ctx context.Context, input string) Key {
	input = strings.TrimSpace(input)
	keys, err := c.ListKeys(ctx)
	if err != nil {
		c.logger.Warn("Key lookup failed, using input as key id", logging.Err(err))
		return Key{ID: input}
	}

	var matches []Key
	for _, k := range keys {
		if strings.EqualFold(k.Name, input) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 1 {
		return matches[0]
	}
	return Key{ID: input}
}
