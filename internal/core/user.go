package core

import (
	"errors"
	"strings"
	"time"
)

type User struct {
	ID                int64
	Email             string
	Name              string
	PasswordHash      string
	PreferredCurrency string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

func (u User) Validate() error {
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}
	if len(strings.TrimSpace(u.Name)) == 0 {
		return ErrEmptyName
	}
	if !validCurrency(u.PreferredCurrency) {
		return ErrInvalidCurrency
	}
	return nil
}

// validEmail is a sanity check, not an RFC 5322 parser. Deliverability is
// the only real proof of a valid address.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(s, " \t\n")
}

// ValidatePassword enforces the minimum length on registration. Hashes are
// never validated here.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}
