package model

import "time"

type (
	ReminderService interface {
		SaveReminder(userID int64, text string, remindAt time.Time) (int64, error)
		GetReminders(userID int64) ([]Reminder, error)
		GetDueReminders(now time.Time) ([]Reminder, error)
		DeleteReminderByID(id int64) error
	}

	Reminder struct {
		ID       int64     `db:"id"`
		UserID   int64     `db:"user_id"`
		Text     string    `db:"message"`
		RemindAt time.Time `db:"remind_at"`
	}
)
