package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dime/internal/core"
)

// ErrDuplicateCategory is returned when a user already has a category with
// the same name.
var ErrDuplicateCategory = errors.New("category name already in use")

const categoryColumns = `id, user_id, name, kind, color, description`

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	query := `
		INSERT INTO categories (user_id, name, kind, color, description)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + categoryColumns

	var out core.Category
	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Name, c.Kind, c.Color, c.Description).Scan(
		&out.ID, &out.UserID, &out.Name, &out.Kind, &out.Color, &out.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, ErrDuplicateCategory
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return out, nil
}

func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ? AND user_id = ?`

	var c core.Category
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Kind, &c.Color, &c.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	query := `
		UPDATE categories
		SET name = ?, kind = ?, color = ?, description = ?, updated_at = datetime('now')
		WHERE id = ? AND user_id = ?
		RETURNING ` + categoryColumns

	var out core.Category
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Kind, c.Color, c.Description, c.ID, c.UserID).Scan(
		&out.ID, &out.UserID, &out.Name, &out.Kind, &out.Color, &out.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, ErrDuplicateCategory
		}
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return out, nil
}

// DeleteCategory removes the category. Transactions and recurring payments
// that referenced it keep their rows with a NULL category, enforced by the
// ON DELETE SET NULL constraint.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.Color, &c.Description); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
