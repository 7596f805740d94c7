package sql

import (
	"time"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type transactionService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewTransactionService(db *sqlx.DB) *transactionService {
	return &transactionService{
		DB:  db,
		log: logger.New("transactionService"),
	}
}

func (db *transactionService) AddIncome(userID int64, category string, amount decimal.Decimal, currency string) error {
	const query = `INSERT INTO income (user_id, category, amount, currency, date) VALUES (?, ?, ?, ?, ?)`
	_, err := db.Exec(query, userID, category, amount, currency, time.Now())
	return err
}

func (db *transactionService) AddExpense(userID int64, category string, amount decimal.Decimal, currency string) error {
	const query = `INSERT INTO expenses (user_id, category, amount, currency, date) VALUES (?, ?, ?, ?, ?)`
	_, err := db.Exec(query, userID, category, amount, currency, time.Now())
	return err
}

func (db *transactionService) GetIncome(userID int64) ([]model.Transaction, error) {
	const query = `SELECT id, user_id, category, amount, currency, date FROM income
	WHERE user_id = ? ORDER BY date`
	var transactions []model.Transaction
	err := db.Select(&transactions, query, userID)
	return transactions, err
}

func (db *transactionService) GetExpenses(userID int64) ([]model.Transaction, error) {
	const query = `SELECT id, user_id, category, amount, currency, date FROM expenses
	WHERE user_id = ? ORDER BY date`
	var transactions []model.Transaction
	err := db.Select(&transactions, query, userID)
	return transactions, err
}
