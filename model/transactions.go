package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// TransactionService is the income/expense ledger.
	TransactionService interface {
		AddIncome(userID int64, category string, amount decimal.Decimal, currency string) error
		AddExpense(userID int64, category string, amount decimal.Decimal, currency string) error
		GetIncome(userID int64) ([]Transaction, error)
		GetExpenses(userID int64) ([]Transaction, error)
	}

	Transaction struct {
		ID       int64           `db:"id"`
		UserID   int64           `db:"user_id"`
		Category string          `db:"category"`
		Amount   decimal.Decimal `db:"amount"`
		Currency string          `db:"currency"`
		Date     time.Time       `db:"date"`
	}
)
