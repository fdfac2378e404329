package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	e "nuclight.org/reply-tg-bot/pkg/entities"
	"nuclight.org/reply-tg-bot/pkg/logger"
	"nuclight.org/reply-tg-bot/pkg/report"
)

var ErrNoChat = errors.New("message chat is unknown")

// Dispatcher replies to an update with a candidate drawn from the catalog.
// Send failures are logged and reported, they never stop the caller.
type Dispatcher struct {
	// Log is a logger
	Log logger.Logger

	// Catalog provides replies
	Catalog Catalog

	// Sender delivers replies to telegram
	Sender Sender

	// Reporter receives every failure, may be nil
	Reporter report.Reporter
}

// Respond sends one reply to the chat of the update message and returns the
// number of sends which failed.
func (d *Dispatcher) Respond(ctx context.Context, update tgbotapi.Update) int {
	log := d.Log.With("tg_update_id", update.UpdateID)

	if update.Message == nil || update.Message.Chat == nil {
		log.Warn("can not respond, message chat is unknown")
		d.report(ErrNoChat, update, "resolve_chat")
		return 0
	}

	chatID := update.Message.Chat.ID
	log = log.With("tg_chat_id", chatID)

	cand := d.Catalog.PickResponse()
	log.Debug("responding", "kind", cand.Kind)

	switch cand.Kind {
	case e.CandidateKindSticker:
		sticker := d.Catalog.PickSticker()
		err := d.Sender.SendSticker(ctx, chatID, sticker)
		return d.result(log, update, "sticker", err)

	case e.CandidateKindVenue:
		venue := d.Catalog.Venue()
		failed := 0
		if venue.Preamble != "" {
			failed += d.result(log, update, "venue preamble", d.Sender.SendText(ctx, chatID, venue.Preamble))
		}
		failed += d.result(log, update, "venue", d.Sender.SendVenue(ctx, chatID, venue))
		return failed

	default:
		err := d.Sender.SendText(ctx, chatID, cand.Text)
		return d.result(log, update, "text", err)
	}
}

func (d *Dispatcher) result(log logger.Logger, update tgbotapi.Update, what string, err error) int {
	if err != nil {
		log.Error("sending "+what+" response", "error", err)
		d.report(fmt.Errorf("sending %s response: %w", what, err), update, "send")
		return 1
	}

	log.Info(what + " response sent")
	return 0
}

func (d *Dispatcher) report(err error, update tgbotapi.Update, stage string) {
	if d.Reporter == nil {
		return
	}

	d.Reporter.Report(err, map[string]string{
		"stage":        stage,
		"tg_update_id": strconv.Itoa(update.UpdateID),
	})
}

type Catalog interface {
	PickResponse() e.Candidate
	PickSticker() string
	Venue() e.Venue
}

type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendSticker(ctx context.Context, chatID int64, sticker string) error
	SendVenue(ctx context.Context, chatID int64, venue e.Venue) error
}
