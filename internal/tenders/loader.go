package tenders

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/tenderapi"
)

// Policy decides what the Loader does with a preview whose detail could
// not be fetched after all retries.
type Policy int

const (
	// Abort cancels the whole load and returns the first failure.
	Abort Policy = iota
	// Skip drops the failed preview.
	Skip
	// Substitute replaces the detail with a stub built from the preview.
	Substitute
)

func (p Policy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	case Substitute:
		return "substitute"
	default:
		return "unknown"
	}
}

// Loader fetches details for a batch of previews with bounded concurrency.
// Results are produced in completion order, not input order.
type Loader struct {
	fetcher *Fetcher
	workers int
	policy  Policy
	logger  logging.Logger
}

func NewLoader(fetcher *Fetcher, workers int, policy Policy) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{
		fetcher: fetcher,
		workers: workers,
		policy:  policy,
		logger:  logging.Component("loader").WithFields(logging.String("policy", policy.String())),
	}
}

// Each calls fn once per loaded detail as fetches complete. Calls to fn are
// serialized. An error from fn stops the load and is returned.
func (l *Loader) Each(ctx context.Context, previews []tenderapi.Preview, fn func(*tenderapi.Detail) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	var mu sync.Mutex
	for _, p := range previews {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, err := l.fetcher.Fetch(gctx, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				switch l.policy {
				case Skip:
					l.logger.Warn("Skipping tender without detail",
						logging.String("tender_id", p.ID), logging.Err(err))
					return nil
				case Substitute:
					l.logger.Warn("Using stub for tender without detail",
						logging.String("tender_id", p.ID), logging.Err(err))
					detail = tenderapi.StubFromPreview(p)
				default:
					return err
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(detail)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Load collects every detail. With Abort the first failure is returned
// and no details are.
func (l *Loader) Load(ctx context.Context, previews []tenderapi.Preview) ([]*tenderapi.Detail, error) {
	details := make([]*tenderapi.Detail, 0, len(previews))
	err := l.Each(ctx, previews, func(d *tenderapi.Detail) error {
		details = append(details, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
