package tenders

import (
	"context"
	"fmt"
	"time"

	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/tenderapi"
)

const (
	DefaultPageSize = 50
	// DefaultMaxPages bounds a single collection run.
	DefaultMaxPages = 1000
)

// Filter narrows a collection run. The zero Filter accepts every open
// tender whose application deadline is still ahead.
type Filter struct {
	// Since, when non-zero, requests tenders published at or after this
	// Unix ms time and rejects older ones client-side.
	Since int64
}

// Accept reports whether p passes the filter at time now (Unix ms).
func (f Filter) Accept(p tenderapi.Preview, now int64) bool {
	if status, ok := p.Status.Int(); !ok || status != tenderapi.StatusOpen {
		return false
	}
	if p.CloseTime() <= now {
		return false
	}
	if f.Since > 0 && p.PublishedAt() < f.Since {
		return false
	}
	return true
}

// Collector walks the listing endpoint page by page.
type Collector struct {
	source   Source
	pageSize int
	maxPages int
	now      func() time.Time
	logger   logging.Logger
}

// CollectorOption customises a Collector.
type CollectorOption func(*Collector)

// WithMaxPages overrides DefaultMaxPages.
func WithMaxPages(n int) CollectorOption {
	return func(c *Collector) { c.maxPages = n }
}

// WithCollectorClock replaces time.Now for the deadline check.
func WithCollectorClock(now func() time.Time) CollectorOption {
	return func(c *Collector) { c.now = now }
}

func NewCollector(source Source, pageSize int, opts ...CollectorOption) *Collector {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &Collector{
		source:   source,
		pageSize: pageSize,
		maxPages: DefaultMaxPages,
		now:      time.Now,
		logger:   logging.Component("collector"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns the unique previews under key that pass f, in page
// order with the first occurrence of each identifier kept. Paging stops
// at the first raw page shorter than the page size.
//
// On a listing error the previews gathered so far are returned together
// with the error.
func (c *Collector) Collect(ctx context.Context, key string, f Filter) ([]tenderapi.Preview, error) {
	now := c.now().UnixMilli()
	seen := make(map[string]struct{})
	var out []tenderapi.Preview

	for page := 0; page < c.maxPages; page++ {
		raw, err := c.source.ListTenders(ctx, tenderapi.ListQuery{
			Key:           key,
			Statuses:      []int{tenderapi.StatusOpen},
			Page:          page,
			Size:          c.pageSize,
			PublishedFrom: f.Since,
		})
		if err != nil {
			return out, fmt.Errorf("list page %d of key %s: %w", page, key, err)
		}

		accepted := 0
		for _, p := range raw {
			if !f.Accept(p, now) {
				continue
			}
			accepted++
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}

		c.logger.Debug("Collected listing page",
			logging.String("key", key),
			logging.Int("page", page),
			logging.Int("raw", len(raw)),
			logging.Int("accepted", accepted),
			logging.Int("unique_total", len(out)))

		if len(raw) < c.pageSize {
			return out, nil
		}
	}

	c.logger.Warn("Page limit reached, collection truncated",
		logging.String("key", key),
		logging.Int("max_pages", c.maxPages))
	return out, nil
}
