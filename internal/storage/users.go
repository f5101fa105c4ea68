package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dime/internal/core"
)

// ErrEmailTaken is returned when registration hits the unique email index.
var ErrEmailTaken = errors.New("email already registered")

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash, preferred_currency)
		VALUES (?, ?, ?, ?)
		RETURNING id, email, name, password_hash, preferred_currency, created_at, updated_at
	`

	var (
		out                  core.User
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, u.Email, u.Name, u.PasswordHash, u.PreferredCurrency).Scan(
		&out.ID, &out.Email, &out.Name, &out.PasswordHash, &out.PreferredCurrency,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	out.CreatedAt = parseTimestamp(createdAt)
	out.UpdatedAt = parseTimestamp(updatedAt)
	return out, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	query := `
		SELECT id, email, name, password_hash, preferred_currency, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	query := `
		SELECT id, email, name, password_hash, preferred_currency, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var (
		u                    core.User
		createdAt, updatedAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.PreferredCurrency, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	u.UpdatedAt = parseTimestamp(updatedAt)
	return u, nil
}
