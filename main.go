package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/finbot-dev/finbot/bot"
	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model/sql"
	"github.com/finbot-dev/finbot/plugin/currency"
	"github.com/finbot-dev/finbot/plugin/finance"
	"github.com/finbot-dev/finbot/plugin/goals"
	"github.com/finbot-dev/finbot/plugin/reminders"
	"github.com/finbot-dev/finbot/plugin/start"
	"github.com/finbot-dev/finbot/scheduler"
)

var log = logger.New("main")

func main() {
	db, err := sql.New()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	log.Info().Msg("Database connection established")

	userService := sql.NewUserService(db)
	goalService := sql.NewGoalService(db)
	reminderService := sql.NewReminderService(db)
	transactionService := sql.NewTransactionService(db)

	b, err := bot.New(os.Getenv("BOT_TOKEN"), userService)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	log.Info().Msgf("Logged in as @%s (%d)", b.User.Username, b.User.Id)

	b.RegisterPlugin(start.New())
	b.RegisterPlugin(goals.New(goalService, userService))
	b.RegisterPlugin(reminders.New(reminderService, userService))
	b.RegisterPlugin(finance.New(transactionService, userService))
	b.RegisterPlugin(currency.New())

	if err := b.SetCommands(); err != nil {
		log.Err(err).Msg("Failed to set bot commands")
	}

	sched := scheduler.New(goalService, reminderService, userService, bot.NewNotifier(b.Bot), nil)
	sched.Start()

	if err := b.Start(); err != nil {
		log.Fatal().Err(err).Send()
	}
	log.Info().Msg("Bot started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutting down")
	sched.Stop()
	if err := b.Stop(); err != nil {
		log.Err(err).Msg("Failed to stop updater")
	}
}
