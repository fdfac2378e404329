package poller

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"nuclight.org/reply-tg-bot/pkg/logger"
)

// State is carried from one cycle to the next
type State struct {
	// Offset is the id of the oldest update not yet acknowledged
	Offset int
}

// Poller runs polling cycles. A cycle fetches a batch of updates starting at
// the state offset, classifies every update in order, responds to those which
// deserve it and moves the offset right past the last update of the batch.
// Empty batches leave the offset untouched. A failed fetch or a cancelled
// context returns the incoming state as is, so a batch is either fully
// acknowledged or not at all.
type Poller struct {
	// Log is a logger
	Log logger.Logger

	// Fetcher retrieves updates with long polling
	Fetcher Fetcher

	// Classifier decides which updates get a response
	Classifier Classifier

	// Responder sends responses
	Responder Responder

	// Cadence is the polling interval, whole seconds of it are used as long
	// polling timeout
	Cadence time.Duration
}

func (p *Poller) RunCycle(ctx context.Context, state State) (State, error) {
	timeout := p.timeoutSeconds()
	p.Log.Debug("polling for updates", "offset", state.Offset, "timeout", timeout)

	updates, err := p.Fetcher.GetUpdates(ctx, state.Offset, timeout)
	if err != nil {
		return state, fmt.Errorf("fetching updates: %w", err)
	}

	if len(updates) == 0 {
		return state, nil
	}

	p.Log.Info("updates fetched", "count", len(updates))

	lastID := state.Offset
	for _, update := range updates {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("processing updates: %w", err)
		}

		if p.Classifier.ShouldRespond(update) {
			p.Responder.Respond(ctx, update)
		}

		lastID = update.UpdateID
	}

	return State{Offset: lastID + 1}, nil
}

func (p *Poller) timeoutSeconds() int {
	if p.Cadence <= 0 {
		return 0
	}

	return int(p.Cadence / time.Second)
}

type Fetcher interface {
	GetUpdates(ctx context.Context, offset, timeout int) ([]tgbotapi.Update, error)
}

type Classifier interface {
	ShouldRespond(update tgbotapi.Update) bool
}

type Responder interface {
	Respond(ctx context.Context, update tgbotapi.Update) int
}
