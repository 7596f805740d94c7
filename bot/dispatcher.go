package bot

import (
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"github.com/finbot-dev/finbot/model"
	"github.com/finbot-dev/finbot/plugin"
)

type Dispatcher struct {
	plugins     []plugin.Plugin
	userService model.UserService
}

func NewDispatcher(userService model.UserService) *Dispatcher {
	return &Dispatcher{
		userService: userService,
	}
}

// OnMessage walks every registered plugin's handlers and runs each one whose
// trigger matches the message text. Matched handlers run in their own
// goroutine so a slow handler does not hold up dispatch.
func (d *Dispatcher) OnMessage(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if ctx.EffectiveUser == nil || ctx.EffectiveUser.IsBot {
		return nil
	}

	// Lazy user registration; every component downstream works with the
	// internal id this row got on first contact.
	if _, err := d.userService.Resolve(ctx.EffectiveUser.Id); err != nil {
		log.Err(err).
			Int64("user_id", ctx.EffectiveUser.Id).
			Msg("Failed to register user")
		return err
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	for _, plg := range d.plugins {
		plg := plg
		for _, h := range plg.Handlers(&b.User) {
			h := h

			matches := h.Trigger().FindStringSubmatch(text)
			if len(matches) == 0 {
				continue
			}

			log.Debug().
				Str("plugin", plg.Name()).
				Str("trigger", h.Trigger().String()).
				Msg("Matched handler")

			go func() {
				err := h.Run(b, plugin.FinbotContext{
					Context: ctx,
					Matches: matches,
				})
				if err != nil {
					log.Err(err).
						Int64("chat_id", ctx.EffectiveChat.Id).
						Str("text", text).
						Str("component", plg.Name()).
						Send()
				}
			}()
		}
	}

	return nil
}
