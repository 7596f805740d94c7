package currency

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/plugin"
	"github.com/finbot-dev/finbot/utils"
	"github.com/finbot-dev/finbot/utils/httpUtils"
)

var log = logger.New("currency")

const ApiUrl = "https://api.frankfurter.app/latest?amount=%s&from=%s&to=%s"

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string {
	return "currency"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "rate",
			Description: "<currency> - Get the current exchange rate",
		},
		{
			Command:     "convert",
			Description: "<amount> <from> <to> - Convert between currencies",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/rate(?:@%s)? ([A-Za-z]{3})$`, botInfo.Username)),
			HandlerFunc: p.onRate,
		},
		&plugin.CommandHandler{
			Command:     regexp.MustCompile(fmt.Sprintf(`(?i)^/convert(?:@%s)? ([\d.,]+) ([A-Za-z]{3}) ([A-Za-z]{3})$`, botInfo.Username)),
			HandlerFunc: p.onConvert,
		},
	}
}

func convertCurrency(amount, from, to string) (string, error) {
	amount = strings.ReplaceAll(amount, ",", ".")
	parsed, err := decimal.NewFromString(amount)
	if err != nil || !parsed.IsPositive() {
		return "", ErrBadAmount
	}

	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return "", ErrSameCurrency
	}

	var response Response
	var httpError *httpUtils.HttpError
	err = httpUtils.GetRequest(fmt.Sprintf(ApiUrl, amount, from, to), &response)
	if err != nil {
		if errors.As(err, &httpError) && httpError.StatusCode == 404 {
			return "", ErrBadCurrency
		}
		return "", err
	}

	converted := decimal.NewFromFloat(response.Rates[to])
	return fmt.Sprintf(
		"💱 %s %s = <b>%s %s</b>",
		utils.FormatAmount(parsed),
		from,
		utils.FormatAmount(converted),
		to,
	), nil
}

func (p *Plugin) onRate(b *gotgbot.Bot, c plugin.FinbotContext) error {
	text, err := convertCurrency("1", c.Matches[1], "EUR")
	if err != nil {
		return p.replyForError(b, c, err)
	}

	_, err = c.EffectiveMessage.Reply(b, text, utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onConvert(b *gotgbot.Bot, c plugin.FinbotContext) error {
	text, err := convertCurrency(c.Matches[1], c.Matches[2], c.Matches[3])
	if err != nil {
		return p.replyForError(b, c, err)
	}

	_, err = c.EffectiveMessage.Reply(b, text, utils.DefaultSendOptions())
	return err
}

func (p *Plugin) replyForError(b *gotgbot.Bot, c plugin.FinbotContext, err error) error {
	switch {
	case errors.Is(err, ErrBadAmount):
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a valid amount.", utils.DefaultSendOptions())
		return err
	case errors.Is(err, ErrBadCurrency):
		_, err := c.EffectiveMessage.Reply(b, "❌ Please enter a valid currency code.", utils.DefaultSendOptions())
		return err
	case errors.Is(err, ErrSameCurrency):
		_, err := c.EffectiveMessage.Reply(b, "❌ Both currencies are the same.", utils.DefaultSendOptions())
		return err
	default:
		guid := xid.New().String()
		log.Err(err).
			Str("guid", guid).
			Msg("Failed to convert currency")
		_, err := c.EffectiveMessage.Reply(b,
			fmt.Sprintf("❌ Failed to fetch exchange rates.%s", utils.EmbedGUID(guid)),
			utils.DefaultSendOptions())
		return err
	}
}
