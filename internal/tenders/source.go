// Package tenders holds the synchronization and report pipeline: paged
// collection, detail loading, projection into messages and report rows,
// watermark tracking and the periodic delivery cycle.
package tenders

import (
	"context"

	"tender-notifier/internal/tenderapi"
)

// Source is the subset of the tender API the pipeline reads from.
// *tenderapi.Client satisfies it.
type Source interface {
	ListTenders(ctx context.Context, q tenderapi.ListQuery) ([]tenderapi.Preview, error)
	GetTender(ctx context.Context, id string) (*tenderapi.Detail, error)
}

// KeyResolver maps user input and remote key lists to key identifiers.
type KeyResolver interface {
	ListKeys(ctx context.Context) ([]tenderapi.Key, error)
	ResolveKey(ctx context.Context, input string) tenderapi.Key
}

var (
	_ Source      = (*tenderapi.Client)(nil)
	_ KeyResolver = (*tenderapi.Client)(nil)
)
