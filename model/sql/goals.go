package sql

import (
	"database/sql"
	"errors"
	"time"

	"github.com/finbot-dev/finbot/logger"
	"github.com/finbot-dev/finbot/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type goalService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewGoalService(db *sqlx.DB) *goalService {
	return &goalService{
		DB:  db,
		log: logger.New("goalService"),
	}
}

func (db *goalService) SaveGoal(userID int64, name string, targetAmount decimal.Decimal, deadline time.Time) (int64, error) {
	const query = `INSERT INTO financial_goals (user_id, goal_name, target_amount, deadline)
	VALUES (?, ?, ?, ?)`
	res, err := db.Exec(query, userID, name, targetAmount, deadline.Format(time.DateOnly))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *goalService) GetGoals(userID int64) ([]model.FinancialGoal, error) {
	const query = `SELECT id, user_id, goal_name, target_amount, deadline, current_amount
	FROM financial_goals WHERE user_id = ? ORDER BY id`
	var goals []model.FinancialGoal
	err := db.Select(&goals, query, userID)
	return goals, err
}

func (db *goalService) GetAllGoals() ([]model.FinancialGoal, error) {
	const query = `SELECT id, user_id, goal_name, target_amount, deadline, current_amount
	FROM financial_goals`
	var goals []model.FinancialGoal
	err := db.Select(&goals, query)
	return goals, err
}

// Contribute adds amount to the goal's running total inside a transaction.
// The row is locked for the read-modify-write, so concurrent contributions to
// the same goal serialize instead of losing updates. Matching on user_id makes
// a foreign goal id indistinguishable from a missing one.
func (db *goalService) Contribute(userID int64, goalID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, model.ErrInvalidInput
	}

	tx, err := db.Beginx()
	if err != nil {
		return decimal.Zero, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			db.log.Err(err).Msg("Failed to roll back contribution")
		}
	}()

	const selectQuery = `SELECT current_amount FROM financial_goals
	WHERE id = ? AND user_id = ? FOR UPDATE`
	var currentAmount decimal.Decimal
	err = tx.Get(&currentAmount, selectQuery, goalID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, model.ErrNotFound
		}
		return decimal.Zero, err
	}

	newAmount := currentAmount.Add(amount)

	const updateQuery = `UPDATE financial_goals SET current_amount = ? WHERE id = ? AND user_id = ?`
	_, err = tx.Exec(updateQuery, newAmount, goalID, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}

	return newAmount, nil
}

// CloseGoal locks the goal row, hands its final state to notify and deletes it
// in the same transaction. Contribute locks the same row, so the evaluation
// never works from a state a concurrent contribution is about to change.
func (db *goalService) CloseGoal(goalID int64, notify func(model.FinancialGoal) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			db.log.Err(err).Msg("Failed to roll back goal close")
		}
	}()

	const selectQuery = `SELECT id, user_id, goal_name, target_amount, deadline, current_amount
	FROM financial_goals WHERE id = ? FOR UPDATE`
	var goal model.FinancialGoal
	err = tx.Get(&goal, selectQuery, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return err
	}

	if err := notify(goal); err != nil {
		return err
	}

	const deleteQuery = `DELETE FROM financial_goals WHERE id = ?`
	if _, err := tx.Exec(deleteQuery, goalID); err != nil {
		return err
	}

	return tx.Commit()
}
