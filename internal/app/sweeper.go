package app

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweeper schedules the recurring reclaim of lapsed seat locks. Redis
// TTL already frees the lock keys themselves; the sweeper trims the per
// screening index sets so availability reads stop seeing phantom holds even
// when nobody browses a screening for a while.
func (app *Application) StartSweeper() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(app.config.SweepInterval),
		gocron.NewTask(app.sweepExpiredHolds),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()

	app.logger.Info("started expiry sweeper", "interval", app.config.SweepInterval)

	return scheduler, nil
}

func (app *Application) sweepExpiredHolds() {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	screeningIDs, err := app.screeningRepo.GetUpcomingIDs(ctx)
	if err != nil {
		app.logger.Error("sweeper failed to list upcoming screenings", "error", err)
		return
	}

	totalReclaimed := 0

	for _, screeningID := range screeningIDs {
		_, reclaimed, err := app.holdStore.PruneScreening(ctx, screeningID)
		if err != nil {
			app.logger.Error("sweeper failed to prune screening", "screening_id", screeningID, "error", err)
			continue
		}

		if len(reclaimed) > 0 {
			app.logger.Info("sweeper reclaimed expired seat locks", "screening_id", screeningID, "seat_ids", reclaimed)
			totalReclaimed += len(reclaimed)
		}
	}

	if totalReclaimed > 0 {
		app.metrics.seatsReclaimed.Add(ctx, int64(totalReclaimed))
	}
}
