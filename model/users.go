package model

type (
	// UserService maps Telegram identities to internal user ids.
	// Users are created lazily on first contact and never deleted.
	UserService interface {
		Resolve(telegramID int64) (int64, error)
		TelegramID(userID int64) (int64, error)
	}

	User struct {
		ID         int64  `db:"id"`
		TelegramID string `db:"telegram_id"`
	}
)
