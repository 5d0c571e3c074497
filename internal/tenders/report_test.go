package tenders

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkbook struct {
	rows   []Row
	saved  string
	closed bool
}

func (w *fakeWorkbook) AddRow(row Row) error {
	w.rows = append(w.rows, row)
	return nil
}

func (w *fakeWorkbook) SaveAs(path string) error {
	w.saved = path
	return nil
}

func (w *fakeWorkbook) Close() error {
	w.closed = true
	return nil
}

func newTestAssembler(src Source, wb *fakeWorkbook, dir string) *Assembler {
	collector := NewCollector(src, 50, WithCollectorClock(fixedClock))
	loader := NewLoader(NewFetcher(src, 5, time.Second, WithFetchSleep(noSleep)), 5, Abort)
	a := NewAssembler(collector, loader, NewProjector(moscow), func() (Workbook, error) { return wb, nil }, dir)
	a.now = fixedClock
	return a
}

func TestGenerate_OneRowPerUniqueTender(t *testing.T) {
	page0 := previewRange(0, 50)
	page1 := append(previewRange(0, 5), previewRange(50, 75)...)
	src := newFakeSource(page0, page1)
	wb := &fakeWorkbook{}
	dir := t.TempDir()

	report, err := newTestAssembler(src, wb, dir).Generate(context.Background(), "k")
	require.NoError(t, err)

	assert.Equal(t, 75, report.Rows)
	assert.Len(t, wb.rows, 75)
	assert.Equal(t, int64(1074), report.MaxPublished)
	assert.Equal(t, filepath.Join(dir, "тендеры_20260301_120000.xlsx"), report.Path)
	assert.Equal(t, report.Path, wb.saved)
	assert.True(t, wb.closed)

	numbers := map[string]bool{}
	for _, r := range wb.rows {
		assert.True(t, strings.HasPrefix(r.Number, "N-t"))
		numbers[r.Number] = true
	}
	assert.Len(t, numbers, 75)
}

func TestGenerate_AbortsOnUnavailableDetail(t *testing.T) {
	src := newFakeSource(previewRange(0, 10))
	src.failures["t4"] = -1
	created := false

	collector := NewCollector(src, 50, WithCollectorClock(fixedClock))
	loader := NewLoader(NewFetcher(src, 5, time.Second, WithFetchSleep(noSleep)), 5, Abort)
	a := NewAssembler(collector, loader, NewProjector(nil), func() (Workbook, error) {
		created = true
		return &fakeWorkbook{}, nil
	}, t.TempDir())

	_, err := a.Generate(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, created)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "тендеры_20260301_120000.xlsx", FileName(testNow))
}
