package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dime/internal/core"
)

const paymentColumns = `id, user_id, category_id, title, amount_cents, currency, frequency, start_date, next_payment_date, end_date, status, notes`

func (r *Repository) CreateRecurringPayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	query := `
		INSERT INTO recurring_payments (user_id, category_id, title, amount_cents, currency, frequency, start_date, next_payment_date, end_date, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + paymentColumns

	row := r.db.QueryRowContext(ctx, query,
		p.UserID, nullID(p.CategoryID), p.Title, p.Amount.Cents, p.Currency, p.Frequency,
		dateString(p.StartDate), dateString(p.NextPaymentDate), nullDate(p.EndDate), p.Status, p.Notes,
	)
	out, err := scanPayment(row)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("create recurring payment: %w", err)
	}
	return out, nil
}

func (r *Repository) GetRecurringPayment(ctx context.Context, userID, id int64) (core.RecurringPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM recurring_payments WHERE id = ? AND user_id = ?`

	out, err := scanPayment(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringPayment{}, ErrNotFound
	}
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("get recurring payment: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateRecurringPayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	query := `
		UPDATE recurring_payments
		SET category_id = ?, title = ?, amount_cents = ?, currency = ?, frequency = ?,
		    start_date = ?, next_payment_date = ?, end_date = ?, status = ?, notes = ?,
		    updated_at = datetime('now')
		WHERE id = ? AND user_id = ?
		RETURNING ` + paymentColumns

	row := r.db.QueryRowContext(ctx, query,
		nullID(p.CategoryID), p.Title, p.Amount.Cents, p.Currency, p.Frequency,
		dateString(p.StartDate), dateString(p.NextPaymentDate), nullDate(p.EndDate), p.Status, p.Notes,
		p.ID, p.UserID,
	)
	out, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringPayment{}, ErrNotFound
	}
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("update recurring payment: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteRecurringPayment(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_payments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recurring payment: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListRecurringPayments(ctx context.Context, userID int64) ([]core.RecurringPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM recurring_payments WHERE user_id = ? ORDER BY next_payment_date, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListDuePayments returns active payments across all users whose next
// occurrence is on or before the given date. The recurring worker drains
// this list on every tick.
func (r *Repository) ListDuePayments(ctx context.Context, due core.Date) ([]core.RecurringPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM recurring_payments
		WHERE status = ? AND next_payment_date <= ?
		ORDER BY next_payment_date, id
	`

	rows, err := r.db.QueryContext(ctx, query, core.PaymentActive, dateString(due))
	if err != nil {
		return nil, fmt.Errorf("list due payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]core.RecurringPayment, error) {
	var out []core.RecurringPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(s rowScanner) (core.RecurringPayment, error) {
	var (
		p                          core.RecurringPayment
		categoryID                 sql.NullInt64
		startDate, nextPaymentDate string
		endDate                    sql.NullString
	)
	err := s.Scan(
		&p.ID, &p.UserID, &categoryID, &p.Title, &p.Amount.Cents, &p.Currency,
		&p.Frequency, &startDate, &nextPaymentDate, &endDate, &p.Status, &p.Notes,
	)
	if err != nil {
		return core.RecurringPayment{}, err
	}
	p.CategoryID = idPtr(categoryID)
	p.StartDate = parseDate(startDate)
	p.NextPaymentDate = parseDate(nextPaymentDate)
	p.EndDate = parseNullDate(endDate)
	return p, nil
}
