package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/jmoiron/sqlx"
)

type userService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewUserService(db *sqlx.DB) *userService {
	return &userService{
		DB:  db,
		log: logger.New("userService"),
	}
}

// Resolve returns the internal id for a Telegram user, inserting a new row on
// first contact. The unique key on telegram_id makes concurrent first contacts
// collapse onto one row; LAST_INSERT_ID(id) returns the existing id in that case.
func (db *userService) Resolve(telegramID int64) (int64, error) {
	const query = `INSERT INTO users (telegram_id) VALUES (?)
	ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	res, err := db.Exec(query, strconv.FormatInt(telegramID, 10))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *userService) TelegramID(userID int64) (int64, error) {
	const query = `SELECT telegram_id FROM users WHERE id = ?`
	var stored string
	err := db.Get(&stored, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, err
	}

	telegramID, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: telegram_id %q of user %d is not an integer", model.ErrInvalidData, stored, userID)
	}

	return telegramID, nil
}
