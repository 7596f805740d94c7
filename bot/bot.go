package bot

import (
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/finbot-dev/finbot/plugin"
)

var log = logger.New("bot")

type Finbot struct {
	*gotgbot.Bot
	Dispatcher *Dispatcher
	updater    *ext.Updater
}

func New(token string, userService model.UserService) (*Finbot, error) {
	b, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, err
	}

	dispatcher := NewDispatcher(userService)

	extDispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Err(err).
				Int64("update_id", ctx.Update.UpdateId).
				Msg("Error while handling update")
			return ext.DispatcherActionNoop
		},
	})
	extDispatcher.AddHandler(handlers.NewMessage(message.All, dispatcher.OnMessage))

	return &Finbot{
		Bot:        b,
		Dispatcher: dispatcher,
		updater:    ext.NewUpdater(extDispatcher, nil),
	}, nil
}

// RegisterPlugin wires a plugin into the dispatcher.
func (bot *Finbot) RegisterPlugin(plg plugin.Plugin) {
	if plg == nil {
		panic("plugin is nil")
	}
	bot.Dispatcher.plugins = append(bot.Dispatcher.plugins, plg)
}

// SetCommands publishes every plugin's commands to the Telegram menu button.
func (bot *Finbot) SetCommands() error {
	var commands []gotgbot.BotCommand
	for _, plg := range bot.Dispatcher.plugins {
		commands = append(commands, plg.Commands()...)
	}
	_, err := bot.Bot.SetMyCommands(commands, nil)
	return err
}

func (bot *Finbot) Start() error {
	return bot.updater.StartPolling(bot.Bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			AllowedUpdates: []string{"message"},
			Timeout:        10,
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: 15 * time.Second,
			},
		},
	})
}

func (bot *Finbot) Stop() error {
	return bot.updater.Stop()
}
