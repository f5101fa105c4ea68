package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dime/internal/core"
)

const goalColumns = `id, user_id, title, description, target_amount_cents, current_amount_cents, target_date, status, priority, notes`

func (r *Repository) CreateGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	query := `
		INSERT INTO financial_goals (user_id, title, description, target_amount_cents, current_amount_cents, target_date, status, priority, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + goalColumns

	row := r.db.QueryRowContext(ctx, query,
		g.UserID, g.Title, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		dateString(g.TargetDate), g.Status, g.Priority, g.Notes,
	)
	out, err := scanGoal(row)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return out, nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id int64) (core.FinancialGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM financial_goals WHERE id = ? AND user_id = ?`

	out, err := scanGoal(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialGoal{}, ErrNotFound
	}
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("get goal: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	query := `
		UPDATE financial_goals
		SET title = ?, description = ?, target_amount_cents = ?, current_amount_cents = ?,
		    target_date = ?, status = ?, priority = ?, notes = ?, updated_at = datetime('now')
		WHERE id = ? AND user_id = ?
		RETURNING ` + goalColumns

	row := r.db.QueryRowContext(ctx, query,
		g.Title, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		dateString(g.TargetDate), g.Status, g.Priority, g.Notes,
		g.ID, g.UserID,
	)
	out, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialGoal{}, ErrNotFound
	}
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("update goal: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM financial_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListGoals(ctx context.Context, userID int64) ([]core.FinancialGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM financial_goals WHERE user_id = ? ORDER BY target_date, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.FinancialGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(s rowScanner) (core.FinancialGoal, error) {
	var (
		g          core.FinancialGoal
		targetDate string
	)
	err := s.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetAmount.Cents,
		&g.CurrentAmount.Cents, &targetDate, &g.Status, &g.Priority, &g.Notes,
	)
	if err != nil {
		return core.FinancialGoal{}, err
	}
	g.TargetDate = parseDate(targetDate)
	return g, nil
}
