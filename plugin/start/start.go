package start

import (
	"fmt"
	"regexp"

	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/finbot-dev/finbot/plugin"
	"github.com/finbot-dev/finbot/utils"
)

const welcomeText = "👋 This bot helps you manage your personal finances: " +
	"track income and expenses, set financial goals with deadlines, " +
	"get reminders and follow currency exchange rates.\n\n" +
	"Open the menu button to see all commands."

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string {
	return "start"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "start",
			Description: "Start using the bot",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/start(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: onStart,
		},
	}
}

func onStart(b *gotgbot.Bot, c plugin.FinbotContext) error {
	_, err := c.EffectiveMessage.Reply(b, welcomeText, utils.DefaultSendOptions())
	return err
}
