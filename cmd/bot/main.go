package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jessevdk/go-flags"
	"nuclight.org/reply-tg-bot/app/catalog"
	"nuclight.org/reply-tg-bot/app/classifier"
	"nuclight.org/reply-tg-bot/app/config"
	"nuclight.org/reply-tg-bot/app/dispatcher"
	"nuclight.org/reply-tg-bot/app/poller"
	"nuclight.org/reply-tg-bot/app/scheduler"
	"nuclight.org/reply-tg-bot/app/storage"
	"nuclight.org/reply-tg-bot/app/telegram"
	"nuclight.org/reply-tg-bot/pkg/logger"
	"nuclight.org/reply-tg-bot/pkg/report"
)

var Revision = "dev"

func main() {
	opts, err := config.Load(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			logger.NewLogger().Error("loading configuration", "error", err)
		}
		os.Exit(1)
	}

	level, err := logger.ParseLevel(opts.LogLevel)
	if err != nil {
		logger.NewLogger().Error("parsing log level", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, level)
	log.Info("starting bot", "revision", Revision)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var reporter report.Reporter = report.Nop{}
	var sentry *report.Sentry
	if opts.SentryDSN != "" {
		sentry, err = report.NewSentry(opts.SentryDSN, Revision)
		if err != nil {
			log.Error("creating sentry client", "error", err)
			os.Exit(1)
		}
		reporter = sentry
	}

	err = run(ctx, opts, log, reporter)
	if err != nil {
		log.Error("bot failed", "error", err)
		reporter.Report(err, map[string]string{"stage": "startup"})
	}

	// os.Exit skips deferred calls
	if sentry != nil {
		sentry.Flush(2 * time.Second)
	}
	if err != nil {
		cancel()
		os.Exit(1)
	}
}

// run wires the components and polls until ctx is done.
func run(ctx context.Context, opts config.Options, log logger.Logger, reporter report.Reporter) error {
	username := opts.BotUsername
	if username == "" {
		bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(opts.TelegramAPIToken, opts.TelegramAPIEndpoint)
		if err != nil {
			return fmt.Errorf("resolving bot username: %w", err)
		}
		username = "@" + bot.Self.UserName
	}
	log.Info("bot username", "username", username)

	cat, err := catalog.New(opts.Catalog(), nil)
	if err != nil {
		return fmt.Errorf("creating response catalog: %w", err)
	}

	client := &telegram.Client{
		Log:        log,
		Endpoints:  opts.Endpoints(),
		HTTPClient: &http.Client{Timeout: opts.PollCadence + 10*time.Second},
	}

	job := &poller.Job{
		Log:      log,
		Reporter: reporter,
		Key:      strings.TrimPrefix(username, "@"),
		Poller: &poller.Poller{
			Log:        log,
			Fetcher:    client,
			Classifier: classifier.New(username, opts.TriggerKeywords),
			Responder: &dispatcher.Dispatcher{
				Log:      log,
				Catalog:  cat,
				Sender:   client,
				Reporter: reporter,
			},
			Cadence: opts.PollCadence,
		},
	}

	if opts.DBPath != "" {
		db, err := storage.NewSQLite(ctx, opts.DBPath)
		if err != nil {
			return fmt.Errorf("creating sqlite3 database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("closing sqlite3 database", "error", err)
			}
		}()
		job.Store = db
	}

	sched := &scheduler.Scheduler{
		Log:   log,
		Every: opts.PollCadence,
	}

	err = sched.Start(ctx, func(ctx context.Context) { job.Run(ctx) })
	if err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	<-ctx.Done()
	log.Info("stopping bot")

	sched.Stop()
	return nil
}
