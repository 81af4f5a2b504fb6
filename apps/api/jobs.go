package main

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const purgeRunTimeout = 30 * time.Second

type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// startSessionJanitor removes expired employee sessions on a fixed interval. A non-positive interval disables it.
func startSessionJanitor(purger sessionPurger, interval time.Duration, logger *zap.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if interval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), purgeRunTimeout)
				defer cancel()
				purgeExpiredSessions(ctx, purger, logger)
			}),
			gocron.WithName("purge-expired-sessions"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
		logger.Info("session janitor scheduled", zap.Duration("interval", interval))
	}

	sched.Start()
	return sched, nil
}

func purgeExpiredSessions(ctx context.Context, purger sessionPurger, logger *zap.Logger) {
	removed, err := purger.PurgeExpiredSessions(ctx)
	if err != nil {
		logger.Error("purge expired sessions", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Info("expired sessions purged", zap.Int64("removed", removed))
	}
}
