package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nuclight.org/reply-tg-bot/pkg/logger"
	"nuclight.org/reply-tg-bot/pkg/mutex"
	"nuclight.org/reply-tg-bot/pkg/report"
)

// Job keeps the poller state between scheduler ticks and makes sure two
// cycles never run at the same time. When Store is set the offset survives
// restarts: it is loaded before the first cycle and saved whenever it moves.
type Job struct {
	// Log is a logger
	Log logger.Logger

	// Poller runs the cycles
	Poller *Poller

	// Reporter receives cycle failures, may be nil
	Reporter report.Reporter

	// Store persists the offset, may be nil
	Store OffsetStore

	// Key identifies the bot in Store
	Key string

	flight mutex.Flight

	mu     sync.Mutex
	state  State
	loaded bool
	stored int
}

// Run runs one cycle unless another one is still in progress. It reports
// whether the cycle ran.
func (j *Job) Run(ctx context.Context) bool {
	ran := j.flight.Do(func() {
		err := j.cycle(ctx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			j.Log.Info("polling cycle interrupted", "offset", j.State().Offset)
			return
		}

		if err != nil {
			j.Log.Error("polling cycle failed", "error", err, "offset", j.State().Offset)
			j.report(err)
		}
	})

	if !ran {
		j.Log.Warn("previous polling cycle is still running, skipping")
	}

	return ran
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.state
}

func (j *Job) setState(state State) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.state = state
}

func (j *Job) cycle(ctx context.Context) error {
	if j.Store != nil && !j.loaded {
		offset, err := j.Store.LoadOffset(ctx, j.Key)
		if err != nil {
			return fmt.Errorf("loading offset: %w", err)
		}

		j.setState(State{Offset: offset})
		j.stored = offset
		j.loaded = true
		j.Log.Info("offset loaded", "offset", offset)
	}

	prev := j.State()
	next, err := j.Poller.RunCycle(ctx, prev)
	if err != nil {
		return err
	}

	j.setState(next)

	// a failed save is retried on the next run even if the offset stays put
	if j.Store != nil && next.Offset != j.stored {
		err = j.Store.SaveOffset(ctx, j.Key, next.Offset)
		if err != nil {
			return fmt.Errorf("saving offset: %w", err)
		}
		j.stored = next.Offset
	}

	return nil
}

func (j *Job) report(err error) {
	if j.Reporter == nil {
		return
	}

	j.Reporter.Report(err, map[string]string{"stage": "cycle"})
}

type OffsetStore interface {
	LoadOffset(ctx context.Context, key string) (int, error)
	SaveOffset(ctx context.Context, key string, offset int) error
}
