package finance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/finbot-dev/finbot/plugin"
	"github.com/finbot-dev/finbot/utils"
)

var log = logger.New("finance")

type (
	Plugin struct {
		transactionService Service
		userService        UserService
	}

	Service interface {
		AddIncome(userID int64, category string, amount decimal.Decimal, currency string) error
		AddExpense(userID int64, category string, amount decimal.Decimal, currency string) error
		GetIncome(userID int64) ([]model.Transaction, error)
		GetExpenses(userID int64) ([]model.Transaction, error)
	}

	UserService interface {
		Resolve(telegramID int64) (int64, error)
	}
)

func New(transactionService Service, userService UserService) *Plugin {
	return &Plugin{
		transactionService: transactionService,
		userService:        userService,
	}
}

func (p *Plugin) Name() string {
	return "finance"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "add_income",
			Description: "<amount> <currency> <category> - Record an income",
		},
		{
			Command:     "add_expense",
			Description: "<amount> <currency> <category> - Record an expense",
		},
		{
			Command:     "statistics",
			Description: "Show your income and expenses",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/add_income(?:@%s)? (\S+) ([A-Za-z]{3}) (.+)$`, botInfo.Username)),
			HandlerFunc: p.onAddIncome,
		},
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/add_expense(?:@%s)? (\S+) ([A-Za-z]{3}) (.+)$`, botInfo.Username)),
			HandlerFunc: p.onAddExpense,
		},
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/statistics(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onStatistics,
		},
	}
}

func (p *Plugin) onAddIncome(b *gotgbot.Bot, c plugin.FinbotContext) error {
	return p.addTransaction(b, c, p.transactionService.AddIncome, "📈 Income recorded.")
}

func (p *Plugin) onAddExpense(b *gotgbot.Bot, c plugin.FinbotContext) error {
	return p.addTransaction(b, c, p.transactionService.AddExpense, "📉 Expense recorded.")
}

func (p *Plugin) addTransaction(
	b *gotgbot.Bot,
	c plugin.FinbotContext,
	add func(userID int64, category string, amount decimal.Decimal, currency string) error,
	confirmation string,
) error {
	amount, err := decimal.NewFromString(strings.ReplaceAll(c.Matches[1], ",", "."))
	if err != nil || !amount.IsPositive() {
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a positive amount.", utils.DefaultSendOptions())
		return err
	}

	currency := strings.ToUpper(c.Matches[2])
	category := c.Matches[3]

	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	if err := add(userID, category, amount, currency); err != nil {
		return p.replyWithError(b, c, err, "Failed to record transaction")
	}

	_, err = c.EffectiveMessage.Reply(b, confirmation, utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onStatistics(b *gotgbot.Bot, c plugin.FinbotContext) error {
	userID, err := p.userService.Resolve(c.EffectiveUser.Id)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to resolve user")
	}

	income, err := p.transactionService.GetIncome(userID)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to get income")
	}

	expenses, err := p.transactionService.GetExpenses(userID)
	if err != nil {
		return p.replyWithError(b, c, err, "Failed to get expenses")
	}

	if len(income) == 0 && len(expenses) == 0 {
		_, err := c.EffectiveMessage.Reply(b, "💡 No transactions recorded yet.", utils.DefaultSendOptions())
		return err
	}

	var sb strings.Builder

	sb.WriteString("<b>Income:</b>\n")
	writeTransactions(&sb, income)
	sb.WriteString("\n<b>Expenses:</b>\n")
	writeTransactions(&sb, expenses)

	_, err = c.EffectiveMessage.Reply(b, sb.String(), utils.DefaultSendOptions())
	return err
}

func writeTransactions(sb *strings.Builder, transactions []model.Transaction) {
	if len(transactions) == 0 {
		sb.WriteString("<i>none</i>\n")
		return
	}
	for _, transaction := range transactions {
		sb.WriteString(
			fmt.Sprintf(
				"%s: %s %s (%s)\n",
				utils.Escape(transaction.Category),
				utils.FormatAmount(transaction.Amount),
				transaction.Currency,
				transaction.Date.Format("2006-01-02"),
			),
		)
	}
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
