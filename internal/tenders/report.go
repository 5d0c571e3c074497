package tenders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/tenderapi"
)

// Workbook receives report rows and writes the finished artifact.
type Workbook interface {
	AddRow(row Row) error
	SaveAs(path string) error
	Close() error
}

// WorkbookFactory opens a fresh workbook for one report.
type WorkbookFactory func() (Workbook, error)

// Report describes a generated spreadsheet.
type Report struct {
	Path         string `json:"path"`
	Rows         int    `json:"rows"`
	MaxPublished int64  `json:"max_published"`
}

// Assembler builds the spreadsheet report of a key's open tenders.
type Assembler struct {
	collector   *Collector
	loader      *Loader
	projector   *Projector
	newWorkbook WorkbookFactory
	dir         string
	now         func() time.Time
	logger      logging.Logger
}

// NewAssembler expects a loader with the Abort policy: one unavailable
// detail fails the whole report.
func NewAssembler(collector *Collector, loader *Loader, projector *Projector, newWorkbook WorkbookFactory, dir string) *Assembler {
	return &Assembler{
		collector:   collector,
		loader:      loader,
		projector:   projector,
		newWorkbook: newWorkbook,
		dir:         dir,
		now:         time.Now,
		logger:      logging.Component("report"),
	}
}

// FileName is the artifact name for a report generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("тендеры_%s.xlsx", t.Format("20060102_150405"))
}

// Generate writes one row per unique open tender under key, in completion
// order, and returns the file path with the newest publication time seen.
func (a *Assembler) Generate(ctx context.Context, key string) (*Report, error) {
	previews, err := a.collector.Collect(ctx, key, Filter{})
	if err != nil {
		return nil, err
	}

	details, err := a.loader.Load(ctx, previews)
	if err != nil {
		return nil, fmt.Errorf("load tender details: %w", err)
	}
	a.logger.Info("Loaded tender details",
		logging.String("key", key),
		logging.Int("previews", len(previews)),
		logging.Int("details", len(details)))

	wb, err := a.newWorkbook()
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	report := &Report{MaxPublished: maxPublished(details)}
	for _, d := range details {
		if err := wb.AddRow(a.projector.Row(d)); err != nil {
			return nil, fmt.Errorf("write row for tender %s: %w", d.ID, err)
		}
		report.Rows++
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	report.Path = filepath.Join(a.dir, FileName(a.now()))
	if err := wb.SaveAs(report.Path); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

func maxPublished(details []*tenderapi.Detail) int64 {
	var newest int64
	for _, d := range details {
		if ts := d.PublicationDate.Millis(); ts > newest {
			newest = ts
		}
	}
	return newest
}
