package tenders

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/storage/sqlite"
	"tender-notifier/internal/tenderapi"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func openPreview(id string, published int64) tenderapi.Preview {
	return tenderapi.Preview{
		ID:                      id,
		Status:                  tenderapi.IntValue(tenderapi.StatusOpen),
		SubmissionCloseDateTime: tenderapi.IntValue(testNow.Add(72 * time.Hour).UnixMilli()),
		PublicationDateTime:     tenderapi.IntValue(published),
	}
}

func previewRange(from, to int) []tenderapi.Preview {
	out := make([]tenderapi.Preview, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, openPreview(fmt.Sprintf("t%d", i), int64(1000+i)))
	}
	return out
}

type fakeSource struct {
	mu          sync.Mutex
	pages       [][]tenderapi.Preview
	listErrPage int
	queries     []tenderapi.ListQuery
	details     map[string]*tenderapi.Detail
	failures    map[string]int
	calls       map[string]int
	delay       time.Duration
	inflight    int
	maxInflight int
}

func newFakeSource(pages ...[]tenderapi.Preview) *fakeSource {
	return &fakeSource{
		pages:       pages,
		listErrPage: -1,
		details:     map[string]*tenderapi.Detail{},
		failures:    map[string]int{},
		calls:       map[string]int{},
	}
}

func (f *fakeSource) ListTenders(ctx context.Context, q tenderapi.ListQuery) ([]tenderapi.Preview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if q.Page == f.listErrPage {
		return nil, errors.TransientError("listing unavailable", nil)
	}
	if q.Page >= len(f.pages) {
		return nil, nil
	}
	return f.pages[q.Page], nil
}

func (f *fakeSource) GetTender(ctx context.Context, id string) (*tenderapi.Detail, error) {
	f.mu.Lock()
	f.calls[id]++
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	fail := f.failures[id] != 0
	if f.failures[id] > 0 {
		f.failures[id]--
	}
	tmpl, ok := f.details[id]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()

	if fail {
		return nil, errors.TransientError("detail unavailable", nil)
	}
	if ok {
		d := *tmpl
		return &d, nil
	}
	return &tenderapi.Detail{
		ID:        id,
		Number:    tenderapi.StringValue("N-" + id),
		OrderName: tenderapi.StringValue("Поставка " + id),
	}, nil
}

func (f *fakeSource) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := sqlite.NewAdapter(&sqlite.Config{DatabasePath: filepath.Join(t.TempDir(), "bot.sqlite3")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type fakeResolver struct {
	keys []tenderapi.Key
	err  error
}

func (r *fakeResolver) ListKeys(ctx context.Context) ([]tenderapi.Key, error) {
	return r.keys, r.err
}

func (r *fakeResolver) ResolveKey(ctx context.Context, input string) tenderapi.Key {
	for _, k := range r.keys {
		if k.Name == input || k.ID == input {
			return k
		}
	}
	return tenderapi.Key{ID: input}
}
