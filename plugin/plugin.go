package plugin

import (
	"regexp"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

type (
	Plugin interface {
		Name() string

		// Commands will be shown in the menu button
		Commands() []gotgbot.BotCommand

		// Handlers are used to react to specific strings in a message
		Handlers(botInfo *gotgbot.User) []Handler
	}

	Handler interface {
		Trigger() *regexp.Regexp
		Run(b *gotgbot.Bot, c FinbotContext) error
	}

	FinbotContext struct {
		*ext.Context
		Matches []string // Regex matches
	}

	FinbotHandlerFunc func(b *gotgbot.Bot, c FinbotContext) error

	CommandHandler struct {
		Command     *regexp.Regexp
		HandlerFunc FinbotHandlerFunc
	}
)

func (h *CommandHandler) Trigger() *regexp.Regexp {
	return h.Command
}

func (h *CommandHandler) Run(b *gotgbot.Bot, c FinbotContext) error {
	return h.HandlerFunc(b, c)
}
