package reminders

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/xid"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/finbot-dev/finbot/plugin"
	"github.com/finbot-dev/finbot/utils"
)

var log = logger.New("reminders")

// RemindAtLayout is the accepted timestamp format, local time, second precision.
const RemindAtLayout = "2006-01-02T15:04:05"

type (
	Plugin struct {
		reminderService Service
		userService     UserService
	}

	Service interface {
		SaveReminder(userID int64, text string, remindAt time.Time) (int64, error)
		GetReminders(userID int64) ([]model.Reminder, error)
	}

	UserService interface {
		Resolve(telegramID int64) (int64, error)
	}
)

func New(reminderService Service, userService UserService) *Plugin {
	return &Plugin{
		reminderService: reminderService,
		userService:     userService,
	}
}

func (p *Plugin) Name() string {
	return "reminders"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "set_reminder",
			Description: "<YYYY-MM-DDTHH:MM:SS> <text> - Set a reminder",
		},
		{
			Command:     "reminders",
			Description: "Show your reminders",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/set_reminder(?:@%s)? (\S+) (.+)$`, botInfo.Username)),
			HandlerFunc: p.onSetReminder,
		},
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/reminders(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onGetReminders,
		},
	}
}

func parseRemindAt(s string) (time.Time, error) {
	remindAt, err := time.ParseInLocation(RemindAtLayout, s, time.Local)
	if err != nil {
		return time.Time{}, model.ErrInvalidInput
	}
	return remindAt, nil
}

func (p *Plugin) onSetReminder(b *gotgbot.Bot, c plugin.FinbotContext) error {
	remindAt, err := parseRemindAt(c.Matches[1])
	if err != nil {
		_, err := c.EffectiveMessage.Reply(b,
			"❌ Please enter the time as <code>YYYY-MM-DDTHH:MM:SS</code>.",
			utils.DefaultSendOptions())
		return err
	}

	text := c.Matches[2]

	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	_, err = p.reminderService.SaveReminder(userID, text, remindAt)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to save reminder")
	}

	_, err = c.EffectiveMessage.Reply(b,
		fmt.Sprintf("🕒 Reminder set for <b>%s</b>.", remindAt.Format("2006-01-02 15:04:05")),
		utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onGetReminders(b *gotgbot.Bot, c plugin.FinbotContext) error {
	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	reminders, err := p.reminderService.GetReminders(userID)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to get reminders")
	}

	if len(reminders) == 0 {
		_, err := c.EffectiveMessage.Reply(b, "💡 You have no reminders yet.", utils.DefaultSendOptions())
		return err
	}

	var sb strings.Builder

	for _, reminder := range reminders {
		sb.WriteString(
			fmt.Sprintf(
				"<b>%d)</b> %s - <b>%s</b>\n",
				reminder.ID,
				reminder.RemindAt.Format("2006-01-02 15:04:05"),
				utils.Escape(reminder.Text),
			),
		)
	}

	_, err = c.EffectiveMessage.Reply(b, sb.String(), utils.DefaultSendOptions())
	return err
}

func (p *Plugin) replyWithError(b *gotgbot.Bot, c plugin.FinbotContext, err error, msg string) error {
	guid := xid.New().String()
	log.Err(err).
		Int64("user_id", c.EffectiveUser.Id).
		Str("guid", guid).
		Msg(msg)
	_, err = c.EffectiveMessage.Reply(b,
		fmt.Sprintf("❌ An error occurred.%s", utils.EmbedGUID(guid)),
		utils.DefaultSendOptions())
	return err
}
