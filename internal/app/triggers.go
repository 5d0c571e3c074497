package app

import (
	"context"

	"tender-notifier/internal/triggers/schedule"
)

// StartSchedule runs CheckNewTenders on the configured interval.
func (app *App) StartSchedule(ctx context.Context) error {
	trigger, err := schedule.NewTrigger(
		schedule.NewConfig("check-new-tenders", app.Config.Interval(), app.Config.FirstRun()),
		func(ctx context.Context) error {
			_, err := app.Syncer.CheckNewTenders(ctx)
			return err
		},
	)
	if err != nil {
		return err
	}
	if err := trigger.Start(ctx); err != nil {
		return err
	}
	app.Schedule = trigger
	return nil
}
