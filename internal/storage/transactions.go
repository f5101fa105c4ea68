package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dime/internal/core"
)

const transactionColumns = `id, user_id, category_id, title, amount_cents, currency, kind, transaction_date, priority, notes, is_recurring`

// TransactionFilter narrows ListTransactions. Zero values mean "no
// constraint"; Limit 0 means no limit.
type TransactionFilter struct {
	Kind       core.Kind
	Priority   core.Priority
	CategoryID *int64
	From       core.Date
	To         core.Date
	Search     string // case-insensitive title substring
	Limit      int
	Offset     int
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, category_id, title, amount_cents, currency, kind, transaction_date, priority, notes, is_recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + transactionColumns

	row := r.db.QueryRowContext(ctx, query,
		t.UserID, nullID(t.CategoryID), t.Title, t.Amount.Cents, t.Currency,
		t.Kind, dateString(t.Date), t.Priority, t.Notes, t.Recurring,
	)
	out, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`

	out, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	query := `
		UPDATE transactions
		SET category_id = ?, title = ?, amount_cents = ?, currency = ?, kind = ?,
		    transaction_date = ?, priority = ?, notes = ?, is_recurring = ?,
		    updated_at = datetime('now')
		WHERE id = ? AND user_id = ?
		RETURNING ` + transactionColumns

	row := r.db.QueryRowContext(ctx, query,
		nullID(t.CategoryID), t.Title, t.Amount.Cents, t.Currency, t.Kind,
		dateString(t.Date), t.Priority, t.Notes, t.Recurring,
		t.ID, t.UserID,
	)
	out, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactions returns the user's transactions newest first, optionally
// narrowed by filter.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	var (
		conds = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.CategoryID != nil {
		conds = append(conds, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "transaction_date >= ?")
		args = append(args, dateString(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "transaction_date <= ?")
		args = append(args, dateString(filter.To))
	}
	if filter.Search != "" {
		conds = append(conds, "title LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conds, " AND ") +
		` ORDER BY transaction_date DESC, id`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullInt64
		date       string
	)
	err := s.Scan(
		&t.ID, &t.UserID, &categoryID, &t.Title, &t.Amount.Cents, &t.Currency,
		&t.Kind, &date, &t.Priority, &t.Notes, &t.Recurring,
	)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = idPtr(categoryID)
	t.Date = parseDate(date)
	return t, nil
}
