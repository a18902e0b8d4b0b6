package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartSnapshotScheduler runs w every interval until ctx ends. Runs never
// overlap; a run still busy when the next is due makes that one wait.
func StartSnapshotScheduler(ctx context.Context, w *SnapshotWorker, interval time.Duration, log *zap.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := w.RunOnce(ctx); err != nil {
				log.Error("[scheduler] snapshot run failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeWait),
		gocron.WithName("campaign-snapshots"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule snapshots: %w", err)
	}

	sched.Start()
	log.Info("[scheduler] campaign snapshots scheduled", zap.Duration("every", interval))

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Warn("[scheduler] shutdown", zap.Error(err))
		}
	}()
	return sched, nil
}
