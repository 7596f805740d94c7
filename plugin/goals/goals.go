package goals

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/finbot-dev/finbot/plugin"
	"github.com/finbot-dev/finbot/utils"
)

var log = logger.New("goals")

type (
	Plugin struct {
		goalService Service
		userService UserService
	}

	Service interface {
		SaveGoal(userID int64, name string, targetAmount decimal.Decimal, deadline time.Time) (int64, error)
		GetGoals(userID int64) ([]model.FinancialGoal, error)
		Contribute(userID int64, goalID int64, amount decimal.Decimal) (decimal.Decimal, error)
	}

	UserService interface {
		Resolve(telegramID int64) (int64, error)
	}
)

func New(goalService Service, userService UserService) *Plugin {
	return &Plugin{
		goalService: goalService,
		userService: userService,
	}
}

func (p *Plugin) Name() string {
	return "goals"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "set_goal",
			Description: "<target> <YYYY-MM-DD> <name> - Set a financial goal",
		},
		{
			Command:     "goals",
			Description: "Show your financial goals",
		},
		{
			Command:     "contribute",
			Description: "<goal ID> <amount> - Put money towards a goal",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/set_goal(?:@%s)? (\S+) (\S+) (.+)$`, botInfo.Username)),
			HandlerFunc: p.onSetGoal,
		},
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/goals(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onGetGoals,
		},
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/contribute(?:@%s)? (\d+) (\S+)$`, botInfo.Username)),
			HandlerFunc: p.onContribute,
		},
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", ".")
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, model.ErrInvalidInput
	}
	return amount, nil
}

func parseDeadline(s string) (time.Time, error) {
	deadline, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, model.ErrInvalidInput
	}
	return deadline, nil
}

func (p *Plugin) onSetGoal(b *gotgbot.Bot, c plugin.FinbotContext) error {
	targetAmount, err := parseAmount(c.Matches[1])
	if err != nil || !targetAmount.IsPositive() {
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a positive target amount.", utils.DefaultSendOptions())
		return err
	}

	deadline, err := parseDeadline(c.Matches[2])
	if err != nil {
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter the deadline as <code>YYYY-MM-DD</code>.", utils.DefaultSendOptions())
		return err
	}

	name := c.Matches[3]

	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	_, err = p.goalService.SaveGoal(userID, name, targetAmount, deadline)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to save goal")
	}

	_, err = c.EffectiveMessage.Reply(b,
		fmt.Sprintf(
			"🎯 Goal <b>%s</b> saved: %s until %s.",
			utils.Escape(name),
			utils.FormatAmount(targetAmount),
			deadline.Format(time.DateOnly),
		),
		utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onGetGoals(b *gotgbot.Bot, c plugin.FinbotContext) error {
	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	goals, err := p.goalService.GetGoals(userID)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to get goals")
	}

	if len(goals) == 0 {
		_, err := c.EffectiveMessage.Reply(b, "💡 You have no financial goals yet.", utils.DefaultSendOptions())
		return err
	}

	var sb strings.Builder

	for _, goal := range goals {
		sb.WriteString(
			fmt.Sprintf(
				"<b>%d)</b> %s: %s of %s until %s\n",
				goal.ID,
				utils.Escape(goal.Name),
				utils.FormatAmount(goal.CurrentAmount),
				utils.FormatAmount(goal.TargetAmount),
				goal.Deadline.Format(time.DateOnly),
			),
		)
	}

	sb.WriteString("\n<i>To put money towards a goal: <code>/contribute ID amount</code></i>")

	_, err = c.EffectiveMessage.Reply(b, sb.String(), utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onContribute(b *gotgbot.Bot, c plugin.FinbotContext) error {
	goalID, err := strconv.ParseInt(c.Matches[1], 10, 64)
	if err != nil {
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a valid goal ID.", utils.DefaultSendOptions())
		return err
	}

	amount, err := parseAmount(c.Matches[2])
	if err != nil || !amount.IsPositive() {
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a positive amount.", utils.DefaultSendOptions())
		return err
	}

	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	newTotal, err := p.goalService.Contribute(userID, goalID, amount)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			_, err := c.EffectiveMessage.Reply(b, "❌ You have no goal with this ID.", utils.DefaultSendOptions())
			return err
		}
		if errors.Is(err, model.ErrInvalidInput) {
			_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a positive amount.", utils.DefaultSendOptions())
			return err
		}
		return p.replyWithError(b, c, err, "Failed to contribute to goal")
	}

	_, err = c.EffectiveMessage.Reply(b,
		fmt.Sprintf("💰 Contribution saved. New total: <b>%s</b>.", utils.FormatAmount(newTotal)),
		utils.DefaultSendOptions())
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
