package app

import (
	"tender-notifier/internal/circuitbreaker"
	"tender-notifier/internal/notify"
	"tender-notifier/internal/ratelimit"
	"tender-notifier/internal/report"
	"tender-notifier/internal/tenders"
)

func (app *App) newNotifier() (tenders.Notifier, error) {
	if app.Config.Notifier == "log" {
		app.Logger.Info("Notifier: log (dry run)")
		return notify.NewLog(), nil
	}
	bot, err := notify.NewTelegram(app.Config.BotToken, "", nil)
	if err != nil {
		return nil, err
	}
	app.Breaker = circuitbreaker.New("telegram", circuitbreaker.DeliveryConfig())
	return notify.NewGuarded(bot, app.Breaker), nil
}

// initializeServices builds the three pipelines over one collector and
// fetcher. Each gets a loader with its own failure policy.
func (app *App) initializeServices() error {
	cfg := app.Config

	collector := tenders.NewCollector(app.API, cfg.PageSizeInt())
	fetcher := tenders.NewFetcher(app.API, cfg.Attempts(), cfg.BackoffStep())
	projector := tenders.NewProjector(cfg.Location())

	app.Tracker = tenders.NewTracker(app.Storage)
	app.Keys = tenders.NewKeys(app.Storage, app.API)

	app.Exporter = tenders.NewExporter(app.Storage, collector,
		tenders.NewLoader(fetcher, cfg.ExportWorkerCount(), tenders.Skip), projector)

	app.Assembler = tenders.NewAssembler(collector,
		tenders.NewLoader(fetcher, cfg.ReportWorkerCount(), tenders.Abort), projector,
		report.Factory(cfg.ReportTemplate), cfg.ReportsDir)

	notifier, err := app.newNotifier()
	if err != nil {
		return err
	}

	opts := []tenders.SyncerOption{tenders.WithPacer(ratelimit.NewPacer(cfg.Delay()))}
	if app.Locks != nil {
		opts = append(opts, tenders.WithLocker(app.Locks))
	}
	app.Syncer = tenders.NewSyncer(app.Storage, app.Tracker, app.Keys, collector,
		tenders.NewLoader(fetcher, cfg.ExportWorkerCount(), tenders.Substitute), projector,
		notifier, opts...)

	return nil
}
