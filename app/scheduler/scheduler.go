package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"nuclight.org/reply-tg-bot/pkg/logger"
)

// Scheduler invokes a job on a fixed cadence. A tick that fires while the
// previous invocation is still running is skipped. Cron schedules have a one
// second resolution, shorter cadences are rounded up to a second.
type Scheduler struct {
	Log   logger.Logger
	Every time.Duration

	cron *cron.Cron
}

func (s *Scheduler) Start(ctx context.Context, job func(ctx context.Context)) error {
	if s.Every <= 0 {
		return fmt.Errorf("cadence must be greater than 0, got %s", s.Every)
	}

	if s.cron != nil {
		return fmt.Errorf("scheduler is already started")
	}

	l := cronLogger{log: s.Log}
	s.cron = cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	s.cron.Schedule(cron.Every(s.Every), cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}))
	s.cron.Start()

	s.Log.Info("scheduler started", "every", s.Every)
	return nil
}

// Stop stops firing new ticks and waits for a running job to return
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
