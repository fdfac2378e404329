package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	e "nuclight.org/reply-tg-bot/pkg/entities"
)

func validArgs() []string {
	return []string{
		"--telegram-api-token", "123:abc",
		"--bot-username", "@replybot",
		"--response", "hello",
		"--response", "[sticker]",
		"--sticker", "CAACAgI",
		"--trigger", "Help",
		"--venue-preamble", "come over",
		"--venue-title", "Cafe",
		"--venue-address", "1 Main St",
		"--venue-latitude", "51.5",
		"--venue-longitude=-0.12",
	}
}

func TestLoadFromArgs(t *testing.T) {
	opts, err := Load(validArgs())
	require.NoError(t, err)

	assert.Equal(t, "123:abc", opts.TelegramAPIToken)
	assert.Equal(t, 10*time.Second, opts.PollCadence)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, []string{"hello", "[sticker]"}, opts.Responses)

	ep := opts.Endpoints()
	assert.Equal(t, "https://api.telegram.org/bot123:abc/getUpdates", ep.GetUpdates)
	assert.Equal(t, "https://api.telegram.org/bot123:abc/sendVenue", ep.SendVenue)

	cat := opts.Catalog()
	assert.Equal(t, []string{"Help"}, cat.Triggers)
	assert.Equal(t, e.Venue{
		Preamble:  "come over",
		Title:     "Cafe",
		Address:   "1 Main St",
		Latitude:  51.5,
		Longitude: -0.12,
	}, cat.Venue)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "env-token")
	t.Setenv("POLL_CADENCE", "3s")
	t.Setenv("RESPONSES", "hi, there|[venue]")
	t.Setenv("STICKERS", "a, b")
	t.Setenv("TRIGGER_KEYWORDS", "help,hello")
	t.Setenv("VENUE_TITLE", "Cafe")
	t.Setenv("VENUE_ADDRESS", "1 Main St")
	t.Setenv("SEND_MESSAGE_URL", "http://proxy.local/send")

	opts, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, opts.PollCadence)
	assert.Equal(t, []string{"hi, there", "[venue]"}, opts.Responses)
	assert.Equal(t, []string{"a", "b"}, opts.Stickers)
	assert.Equal(t, []string{"help", "hello"}, opts.TriggerKeywords)

	ep := opts.Endpoints()
	assert.Equal(t, "http://proxy.local/send", ep.SendMessage)
	assert.Equal(t, "https://api.telegram.org/botenv-token/sendSticker", ep.SendSticker)
}

func TestLoadTrimsSpacedResponses(t *testing.T) {
	t.Setenv("RESPONSES", "hi there | [sticker] | [VENUE] ")

	opts, err := Load(removeOption(validArgs(), "--response"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hi there", "[sticker]", "[VENUE]"}, opts.Responses)

	var kinds []e.CandidateKind
	for _, raw := range opts.Catalog().Responses {
		kinds = append(kinds, e.ParseCandidate(raw).Kind)
	}
	assert.Equal(t, []e.CandidateKind{e.CandidateKindText, e.CandidateKindSticker, e.CandidateKindVenue}, kinds)
}

func TestLoadFromIniFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.ini")
	ini := `[Application Options]
telegram-api-token = ini-token
poll-cadence = 7s
response = [venue]
sticker = CAACAgI
trigger = help
venue-title = Cafe
venue-address = 1 Main St
log-level = debug
`
	require.NoError(t, os.WriteFile(path, []byte(ini), 0o600))

	opts, err := Load([]string{"--config", path, "--log-level", "warn"})
	require.NoError(t, err)

	assert.Equal(t, "ini-token", opts.TelegramAPIToken)
	assert.Equal(t, 7*time.Second, opts.PollCadence)
	assert.Equal(t, []string{"[venue]"}, opts.Responses)
	assert.Equal(t, "warn", opts.LogLevel, "command line wins over the file")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.ini")})
	assert.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	tests := map[string][]string{
		"no token":       {"--telegram-api-token", " "},
		"zero cadence":   {"--poll-cadence", "0s"},
		"blank response": {"--response", "   "},
		"no venue title": {"--venue-title", ""},
		"bad latitude":   {"--venue-latitude", "91"},
		"bad endpoint":   {"--telegram-api-endpoint", "https://example.com/%s"},
	}

	for name, override := range tests {
		t.Run(name, func(t *testing.T) {
			args := validArgs()
			if name == "blank response" {
				args = removeOption(args, "--response")
			}
			args = append(args, override...)

			_, err := Load(args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), err.Error())
		})
	}
}

func TestLoadRequiresPools(t *testing.T) {
	for _, opt := range []string{"--response", "--sticker", "--trigger"} {
		t.Run(opt, func(t *testing.T) {
			_, err := Load(removeOption(validArgs(), opt))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func removeOption(args []string, name string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == name {
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}
