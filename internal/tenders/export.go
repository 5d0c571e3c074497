package tenders

import (
	"context"

	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/tenderapi"
)

// ExportAttachmentsCallback prefixes the documents button of ad hoc exports.
const ExportAttachmentsCallback = "show_atts:"

// Exporter renders the current open tenders of a key as chat messages.
type Exporter struct {
	store     storage.Storage
	collector *Collector
	loader    *Loader
	projector *Projector
	logger    logging.Logger
}

// NewExporter expects a loader with the Skip policy: tenders whose detail
// cannot be fetched are left out of the export.
func NewExporter(store storage.Storage, collector *Collector, loader *Loader, projector *Projector) *Exporter {
	return &Exporter{
		store:     store,
		collector: collector,
		loader:    loader,
		projector: projector,
		logger:    logging.Component("export"),
	}
}

// ExportMessages returns one notification per open tender under key, in
// completion order. Tenders with documents get a button and their
// attachments are cached so the button can be answered later.
func (e *Exporter) ExportMessages(ctx context.Context, key string) ([]Notification, error) {
	previews, err := e.collector.Collect(ctx, key, Filter{})
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(previews))
	err = e.loader.Each(ctx, previews, func(d *tenderapi.Detail) error {
		n := e.projector.Notification(d)
		if len(d.Attachments) > 0 {
			if err := e.store.SaveAttachments(ctx, d.ID, StoredAttachments(d.ID, d.Attachments)); err != nil {
				e.logger.Warn("Attachment cache write failed", logging.String("tender_id", d.ID), logging.Err(err))
			}
			n.Button = &Button{Text: AttachmentsButton, Data: ExportAttachmentsCallback + d.ID}
		}
		out = append(out, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
