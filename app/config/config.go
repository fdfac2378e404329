package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jessevdk/go-flags"
	"nuclight.org/reply-tg-bot/app/catalog"
	"nuclight.org/reply-tg-bot/app/telegram"
	e "nuclight.org/reply-tg-bot/pkg/entities"
)

var ErrInvalid = errors.New("invalid configuration")

// Options are read from an optional ini file, environment variables and
// command line arguments, later sources win.
type Options struct {
	ConfigFile string `long:"config" env:"CONFIG_FILE" no-ini:"true" description:"path to an ini file with options"`

	TelegramAPIToken    string `long:"telegram-api-token" ini-name:"telegram-api-token" env:"TELEGRAM_API_TOKEN" description:"telegram api token"`
	TelegramAPIEndpoint string `long:"telegram-api-endpoint" ini-name:"telegram-api-endpoint" env:"TELEGRAM_API_ENDPOINT" description:"api endpoint format, token and method are substituted, defaults to the public bot api"`
	BotUsername         string `long:"bot-username" ini-name:"bot-username" env:"BOT_USERNAME" description:"bot username looked up in mentions, resolved with getMe when empty"`

	GetUpdatesURL  string `long:"get-updates-url" ini-name:"get-updates-url" env:"GET_UPDATES_URL" description:"getUpdates url, derived from the api endpoint when empty"`
	SendMessageURL string `long:"send-message-url" ini-name:"send-message-url" env:"SEND_MESSAGE_URL" description:"sendMessage url, derived from the api endpoint when empty"`
	SendStickerURL string `long:"send-sticker-url" ini-name:"send-sticker-url" env:"SEND_STICKER_URL" description:"sendSticker url, derived from the api endpoint when empty"`
	SendVenueURL   string `long:"send-venue-url" ini-name:"send-venue-url" env:"SEND_VENUE_URL" description:"sendVenue url, derived from the api endpoint when empty"`

	PollCadence time.Duration `long:"poll-cadence" ini-name:"poll-cadence" env:"POLL_CADENCE" default:"10s" description:"polling cadence, also used as long polling timeout"`

	Responses       []string `long:"response" ini-name:"response" env:"RESPONSES" env-delim:"|" description:"reply text, [sticker] and [venue] pick other reply kinds; env is |-separated"`
	Stickers        []string `long:"sticker" ini-name:"sticker" env:"STICKERS" env-delim:"," description:"sticker file id"`
	TriggerKeywords []string `long:"trigger" ini-name:"trigger" env:"TRIGGER_KEYWORDS" env-delim:"," description:"message text that triggers a reply in group chats"`

	VenuePreamble  string  `long:"venue-preamble" ini-name:"venue-preamble" env:"VENUE_PREAMBLE" description:"text sent before the venue"`
	VenueTitle     string  `long:"venue-title" ini-name:"venue-title" env:"VENUE_TITLE" description:"venue title"`
	VenueAddress   string  `long:"venue-address" ini-name:"venue-address" env:"VENUE_ADDRESS" description:"venue address"`
	VenueLatitude  float64 `long:"venue-latitude" ini-name:"venue-latitude" env:"VENUE_LATITUDE" description:"venue latitude"`
	VenueLongitude float64 `long:"venue-longitude" ini-name:"venue-longitude" env:"VENUE_LONGITUDE" description:"venue longitude"`

	DBPath    string `long:"db-path" ini-name:"db-path" env:"DB_PATH" description:"sqlite file keeping the polling offset between restarts, memory only when empty"`
	SentryDSN string `long:"sentry-dsn" ini-name:"sentry-dsn" env:"SENTRY_DSN" description:"sentry dsn for error reporting"`
	LogLevel  string `long:"log-level" ini-name:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
}

// Load parses args (without the program name) and validates the result
func Load(args []string) (Options, error) {
	var pre struct {
		ConfigFile string `long:"config" env:"CONFIG_FILE"`
	}
	_, err := flags.NewParser(&pre, flags.IgnoreUnknown).ParseArgs(args)
	if err != nil {
		return Options{}, fmt.Errorf("parsing config file option: %w", err)
	}

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if pre.ConfigFile != "" {
		ini := flags.NewIniParser(parser)
		ini.ParseAsDefaults = true

		err = ini.ParseFile(pre.ConfigFile)
		if err != nil {
			return Options{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	_, err = parser.ParseArgs(args)
	if err != nil {
		return Options{}, err
	}

	opts.normalize()

	err = opts.validate()
	if err != nil {
		return Options{}, err
	}

	return opts, nil
}

func (o Options) Endpoints() telegram.Endpoints {
	ep := telegram.DefaultEndpoints(o.TelegramAPIEndpoint, o.TelegramAPIToken)

	if o.GetUpdatesURL != "" {
		ep.GetUpdates = o.GetUpdatesURL
	}
	if o.SendMessageURL != "" {
		ep.SendMessage = o.SendMessageURL
	}
	if o.SendStickerURL != "" {
		ep.SendSticker = o.SendStickerURL
	}
	if o.SendVenueURL != "" {
		ep.SendVenue = o.SendVenueURL
	}

	return ep
}

func (o Options) Catalog() catalog.Config {
	return catalog.Config{
		Responses: o.Responses,
		Stickers:  o.Stickers,
		Triggers:  o.TriggerKeywords,
		Venue: e.Venue{
			Preamble:  o.VenuePreamble,
			Title:     o.VenueTitle,
			Address:   o.VenueAddress,
			Latitude:  o.VenueLatitude,
			Longitude: o.VenueLongitude,
		},
	}
}

func (o *Options) normalize() {
	o.TelegramAPIToken = strings.TrimSpace(o.TelegramAPIToken)
	o.BotUsername = strings.TrimSpace(o.BotUsername)
	if o.TelegramAPIEndpoint == "" {
		o.TelegramAPIEndpoint = tgbotapi.APIEndpoint
	}
	o.Responses = dropEmpty(o.Responses)
	o.Stickers = dropEmpty(o.Stickers)
	o.TriggerKeywords = dropEmpty(o.TriggerKeywords)
}

func (o Options) validate() error {
	if o.TelegramAPIToken == "" {
		return fmt.Errorf("%w: telegram api token is required", ErrInvalid)
	}

	if o.PollCadence <= 0 {
		return fmt.Errorf("%w: poll cadence must be greater than 0", ErrInvalid)
	}

	if len(o.Responses) == 0 {
		return fmt.Errorf("%w: at least one response is required", ErrInvalid)
	}

	if len(o.Stickers) == 0 {
		return fmt.Errorf("%w: at least one sticker is required", ErrInvalid)
	}

	if len(o.TriggerKeywords) == 0 {
		return fmt.Errorf("%w: at least one trigger keyword is required", ErrInvalid)
	}

	if o.VenueTitle == "" || o.VenueAddress == "" {
		return fmt.Errorf("%w: venue title and address are required", ErrInvalid)
	}

	if o.VenueLatitude < -90 || o.VenueLatitude > 90 || o.VenueLongitude < -180 || o.VenueLongitude > 180 {
		return fmt.Errorf("%w: venue coordinates are out of range", ErrInvalid)
	}

	if strings.Count(o.TelegramAPIEndpoint, "%s") != 2 {
		return fmt.Errorf("%w: telegram api endpoint must contain two %%s verbs", ErrInvalid)
	}

	return nil
}

func dropEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
