package tenders

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/common/utils"
	"tender-notifier/internal/tenderapi"
)

// Fetcher retrieves one tender detail with linear-backoff retries.
type Fetcher struct {
	source Source
	retry  utils.RetryConfig
	logger logging.Logger
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchSleep replaces the backoff sleep, mainly for tests.
func WithFetchSleep(sleep utils.SleepFunc) FetcherOption {
	return func(f *Fetcher) { f.retry.Sleep = sleep }
}

// NewFetcher retries up to attempts times, waiting attempt*step between tries.
func NewFetcher(source Source, attempts int, step time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source: source,
		logger: logging.Component("fetcher"),
	}
	f.retry = utils.RetryConfig{
		MaxAttempts:     attempts,
		Backoff:         utils.LinearBackoff(step),
		RetryableErrors: func(err error) bool { return !isContextErr(err) },
		OnRetry: func(attempt int, delay time.Duration, err error) {
			f.logger.Warn("Tender detail fetch failed, retrying",
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Err(err))
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the detail for p enriched with the preview's status and
// publication time. When every attempt fails the error is a permanent one.
func (f *Fetcher) Fetch(ctx context.Context, p tenderapi.Preview) (*tenderapi.Detail, error) {
	var detail *tenderapi.Detail
	err := utils.RetryWithBackoff(ctx, f.retry, func(ctx context.Context) error {
		d, err := f.source.GetTender(ctx, p.ID)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return nil, errors.PermanentError(fmt.Sprintf("tender %s unavailable", p.ID), err)
	}

	detail.EnrichFrom(p)
	return detail, nil
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
