package sql

import (
	"time"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/jmoiron/sqlx"
)

type reminderService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewReminderService(db *sqlx.DB) *reminderService {
	return &reminderService{
		DB:  db,
		log: logger.New("reminderService"),
	}
}

func (db *reminderService) SaveReminder(userID int64, text string, remindAt time.Time) (int64, error) {
	const query = `INSERT INTO reminders (user_id, message, remind_at) VALUES (?, ?, ?)`
	res, err := db.Exec(query, userID, text, remindAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *reminderService) GetReminders(userID int64) ([]model.Reminder, error) {
	const query = `SELECT id, user_id, message, remind_at FROM reminders
	WHERE user_id = ? ORDER BY remind_at`
	var reminders []model.Reminder
	err := db.Select(&reminders, query, userID)
	return reminders, err
}

func (db *reminderService) GetDueReminders(now time.Time) ([]model.Reminder, error) {
	const query = `SELECT id, user_id, message, remind_at FROM reminders WHERE remind_at <= ?`
	var reminders []model.Reminder
	err := db.Select(&reminders, query, now)
	return reminders, err
}

func (db *reminderService) DeleteReminderByID(id int64) error {
	const query = `DELETE FROM reminders WHERE id = ?`
	_, err := db.Exec(query, id)
	return err
}
