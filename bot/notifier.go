package bot

import (
	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/finbot-dev/finbot/utils"
)

// Notifier adapts the Telegram bot to the scheduler's delivery contract.
type Notifier struct {
	bot *gotgbot.Bot
}

func NewNotifier(b *gotgbot.Bot) *Notifier {
	return &Notifier{bot: b}
}

func (n *Notifier) SendMessage(telegramID int64, text string) error {
	_, err := n.bot.SendMessage(telegramID, text, utils.DefaultSendOptions())
	return err
}
