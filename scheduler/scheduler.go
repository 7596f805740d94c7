package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/finbot-dev/finbot/utils"
)

const DefaultInterval = 1 * time.Minute

type (
	// Notifier delivers a text message to a Telegram user. Delivery is
	// best-effort; a failed send must leave the store untouched.
	Notifier interface {
		SendMessage(telegramID int64, text string) error
	}

	// Scheduler runs the reminder sweep and the goal-deadline sweep on fixed
	// cadences. All state lives in the store, so a restart only delays
	// notifications, it never loses them.
	Scheduler struct {
		goalService     model.GoalService
		reminderService model.ReminderService
		userService     model.UserService
		notifier        Notifier

		reminderInterval time.Duration
		goalInterval     time.Duration

		ctx    context.Context
		cancel context.CancelFunc
		wg     sync.WaitGroup
		log    *logger.Logger
	}

	Options struct {
		ReminderInterval time.Duration
		GoalInterval     time.Duration
	}
)

func New(
	goalService model.GoalService,
	reminderService model.ReminderService,
	userService model.UserService,
	notifier Notifier,
	opts *Options,
) *Scheduler {
	reminderInterval := DefaultInterval
	goalInterval := DefaultInterval
	if opts != nil {
		if opts.ReminderInterval > 0 {
			reminderInterval = opts.ReminderInterval
		}
		if opts.GoalInterval > 0 {
			goalInterval = opts.GoalInterval
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		goalService:      goalService,
		reminderService:  reminderService,
		userService:      userService,
		notifier:         notifier,
		reminderInterval: reminderInterval,
		goalInterval:     goalInterval,
		ctx:              ctx,
		cancel:           cancel,
		log:              logger.New("scheduler"),
	}
}

// Start launches both sweeps. Call it exactly once, after the store is migrated.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.run(s.reminderInterval, s.sweepReminders)
	go s.run(s.goalInterval, s.sweepGoals)
	s.log.Info().
		Dur("reminder_interval", s.reminderInterval).
		Dur("goal_interval", s.goalInterval).
		Msg("Scheduler started")
}

// Stop cancels both sweeps and waits for in-flight ticks to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) run(interval time.Duration, sweep func(now time.Time)) {
	defer s.wg.Done()

	// Sweep immediately so notifications missed during downtime
	// go out on boot instead of one interval later.
	sweep(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			sweep(now)
		}
	}
}

// sweepReminders delivers and deletes every reminder with remind_at <= now.
// A reminder is only deleted after its send succeeded; a failed send leaves
// the row for the next tick.
func (s *Scheduler) sweepReminders(now time.Time) {
	reminders, err := s.reminderService.GetDueReminders(now)
	if err != nil {
		s.log.Err(err).Msg("Failed to get due reminders")
		return
	}

	for _, reminder := range reminders {
		telegramID, err := s.userService.TelegramID(reminder.UserID)
		if err != nil {
			s.log.Err(err).
				Int64("reminder_id", reminder.ID).
				Int64("user_id", reminder.UserID).
				Msg("Failed to resolve reminder owner")
			continue
		}

		text := fmt.Sprintf("🔔 <b>REMINDER:</b>\n%s", utils.Escape(reminder.Text))
		if err := s.notifier.SendMessage(telegramID, text); err != nil {
			s.log.Err(err).
				Int64("reminder_id", reminder.ID).
				Msg("Failed to send reminder, keeping it for the next tick")
			continue
		}

		if err := s.reminderService.DeleteReminderByID(reminder.ID); err != nil {
			s.log.Err(err).
				Int64("reminder_id", reminder.ID).
				Msg("Failed to delete sent reminder")
		}
	}
}

// sweepGoals closes every goal whose deadline is on or before today: the owner
// is told whether the goal was achieved or missed, then the row is deleted.
// Deletion is the terminal transition; a closed goal is never evaluated again.
// The snapshot from GetAllGoals only picks candidates; the verdict is computed
// inside CloseGoal from the locked row, so a contribution landing mid-sweep is
// either counted or rejected with NotFound, never wiped.
func (s *Scheduler) sweepGoals(now time.Time) {
	goals, err := s.goalService.GetAllGoals()
	if err != nil {
		s.log.Err(err).Msg("Failed to get goals")
		return
	}

	for _, goal := range goals {
		if !goal.Due(now) {
			continue
		}

		telegramID, err := s.userService.TelegramID(goal.UserID)
		if err != nil {
			s.log.Err(err).
				Int64("goal_id", goal.ID).
				Int64("user_id", goal.UserID).
				Msg("Failed to resolve goal owner")
			continue
		}

		err = s.goalService.CloseGoal(goal.ID, func(goal model.FinancialGoal) error {
			var text string
			remaining := goal.Remaining()
			if remaining.IsPositive() {
				text = fmt.Sprintf(
					"⌛ You did not reach your goal <b>%s</b>. %s was still missing.",
					utils.Escape(goal.Name),
					utils.FormatAmount(remaining),
				)
			} else {
				text = fmt.Sprintf(
					"🎉 Congratulations, you reached your goal <b>%s</b>!",
					utils.Escape(goal.Name),
				)
			}
			return s.notifier.SendMessage(telegramID, text)
		})
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				// Already closed, nothing left to say.
				continue
			}
			s.log.Err(err).
				Int64("goal_id", goal.ID).
				Msg("Failed to close goal, keeping it for the next tick")
		}
	}
}
