package storage

import (
	"database/sql"
	"strings"
	"time"

	"dime/internal/core"
)

// parseTimestamp reads SQLite's datetime('now') format. A malformed value
// yields the zero time rather than an error; timestamps are informational.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// modernc.org/sqlite surfaces constraint failures as plain errors, so the
// message text is the only discriminator available.
// escapeLike neutralizes LIKE metacharacters in user-supplied search text.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}

func dateString(d core.Date) string {
	return d.String()
}

// nullDate maps the zero date to NULL. Open-ended recurring payments store
// no end date.
func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func parseNullDate(n sql.NullString) core.Date {
	if !n.Valid {
		return core.Date{}
	}
	return parseDate(n.String)
}
