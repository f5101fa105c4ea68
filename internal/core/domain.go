package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	PaymentActive    PaymentStatus = "active"
	PaymentPaused    PaymentStatus = "paused"
	PaymentCompleted PaymentStatus = "completed"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

type (
	Kind          string
	Priority      string
	Frequency     string
	PaymentStatus string
	GoalStatus    string

	// Date is a calendar date. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID         int64
		UserID     int64
		CategoryID *int64
		Title      string
		Amount     Money
		Currency   string
		Kind       Kind
		Date       Date // when the transaction occurred
		Priority   Priority
		Notes      string
		Recurring  bool
	}

	Category struct {
		ID          int64
		UserID      int64
		Name        string
		Kind        Kind
		Color       string // display hex, e.g. "#22c55e"
		Description string
	}

	RecurringPayment struct {
		ID              int64
		UserID          int64
		CategoryID      *int64
		Title           string
		Amount          Money
		Currency        string
		Frequency       Frequency
		StartDate       Date
		NextPaymentDate Date
		EndDate         Date // zero when open-ended
		Status          PaymentStatus
		Notes           string
	}

	FinancialGoal struct {
		ID            int64
		UserID        int64
		Title         string
		Description   string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    Date
		Status        GoalStatus
		Priority      Priority
		Notes         string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidDateRange = errors.New("end date before start date")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as an ISO-8601 calendar date.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return ErrInvalidPriority
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidFrequency
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 255 {
		return errors.New("title too long (max 255 characters)")
	}
	if t.Amount.Cents < 0 {
		// direction lives in Kind, never in a negative amount
		return ErrInvalidAmount
	}
	if !validCurrency(t.Currency) {
		return ErrInvalidCurrency
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return t.Priority.Validate()
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 255 {
		return errors.New("name too long (max 255 characters)")
	}
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	if len(c.Color) == 0 || len(c.Color) > 7 || c.Color[0] != '#' {
		return ErrInvalidColor
	}
	return nil
}

func (p RecurringPayment) Validate() error {
	if len(strings.TrimSpace(p.Title)) == 0 {
		return ErrEmptyTitle
	}
	if p.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !validCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	if err := p.Frequency.Validate(); err != nil {
		return err
	}
	if err := p.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := p.NextPaymentDate.Validate(); err != nil {
		return errors.New("invalid next payment date: " + err.Error())
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate.Time) {
		return ErrInvalidDateRange
	}
	switch p.Status {
	case PaymentActive, PaymentPaused, PaymentCompleted:
	default:
		return ErrInvalidStatus
	}
	return nil
}

func (g FinancialGoal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if g.TargetAmount.Cents < 0 || g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := g.TargetDate.Validate(); err != nil {
		return errors.New("invalid target date: " + err.Error())
	}
	switch g.Status {
	case GoalActive, GoalCompleted, GoalCancelled:
	default:
		return ErrInvalidStatus
	}
	return g.Priority.Validate()
}

// Progress returns the goal's completion percentage, clamped to [0, 100].
// A goal without a positive target reports 0 rather than dividing by zero.
func (g FinancialGoal) Progress() float64 {
	return ProgressPercentage(g.CurrentAmount, g.TargetAmount)
}

// Remaining returns the amount still needed to reach the target, floored at 0.
func (g FinancialGoal) Remaining() Money {
	return RemainingAmount(g.CurrentAmount, g.TargetAmount)
}
