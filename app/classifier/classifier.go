package classifier

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reason tells which rule made the bot respond to an update
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonMention Reason = "mention"
	ReasonPrivate Reason = "private"
	ReasonKeyword Reason = "keyword"
)

// Classifier decides whether an update deserves a reply. Only the primary
// message of an update is inspected, edited messages and channel posts are
// ignored. Rules are checked in order and the first match wins: the bot
// username is mentioned, the message is sent in a private chat, or the whole
// message equals one of the trigger keywords.
type Classifier struct {
	username string
	triggers map[string]struct{}
}

func New(username string, triggers []string) *Classifier {
	set := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		if t = normalize(t); t != "" {
			set[t] = struct{}{}
		}
	}

	return &Classifier{
		username: username,
		triggers: set,
	}
}

func (c *Classifier) ShouldRespond(update tgbotapi.Update) bool {
	return c.Reason(update) != ReasonNone
}

func (c *Classifier) Reason(update tgbotapi.Update) Reason {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return ReasonNone
	}

	if c.mentioned(msg) {
		return ReasonMention
	}

	if msg.Chat != nil && strings.EqualFold(msg.Chat.Type, "private") {
		return ReasonPrivate
	}

	if _, ok := c.triggers[normalize(msg.Text)]; ok {
		return ReasonKeyword
	}

	return ReasonNone
}

func (c *Classifier) mentioned(msg *tgbotapi.Message) bool {
	if c.username == "" || !strings.Contains(msg.Text, c.username) {
		return false
	}

	for _, entity := range msg.Entities {
		if strings.EqualFold(entity.Type, "mention") {
			return true
		}
	}

	return false
}

func normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}
