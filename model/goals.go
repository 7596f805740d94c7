package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	GoalService interface {
		SaveGoal(userID int64, name string, targetAmount decimal.Decimal, deadline time.Time) (int64, error)
		GetGoals(userID int64) ([]FinancialGoal, error)
		GetAllGoals() ([]FinancialGoal, error)
		// Contribute adds amount to the goal's current total and returns the
		// new total. The goal must belong to userID.
		Contribute(userID int64, goalID int64, amount decimal.Decimal) (decimal.Decimal, error)
		// CloseGoal deletes the goal once notify accepts its final state.
		// The row stays locked for the whole evaluation: a concurrent
		// contribution either lands before notify reads the state or fails
		// with ErrNotFound after the close. A notify error keeps the row.
		CloseGoal(goalID int64, notify func(FinancialGoal) error) error
	}

	FinancialGoal struct {
		ID            int64           `db:"id"`
		UserID        int64           `db:"user_id"`
		Name          string          `db:"goal_name"`
		TargetAmount  decimal.Decimal `db:"target_amount"`
		Deadline      time.Time       `db:"deadline"`
		CurrentAmount decimal.Decimal `db:"current_amount"`
	}
)

// Remaining is the amount still missing; zero or negative means the
// goal is funded.
func (g *FinancialGoal) Remaining() decimal.Decimal {
	return g.TargetAmount.Sub(g.CurrentAmount)
}

// Due reports whether the deadline date is on or before now's date.
func (g *FinancialGoal) Due(now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return !g.Deadline.After(today)
}
