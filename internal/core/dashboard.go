package core

import (
	"sort"
	"time"
)

// Dashboard list caps, matching the dashboard layout.
const (
	recentTransactionsLimit   = 10
	highPriorityLimit         = 5
	activeGoalsLimit          = 5
	timelineTransactionsLimit = 20
	timelineWindowDays        = 90
	upcomingWindowDays        = 30
	monthlyTrendMonths        = 6
	weeklyTrendWeeks          = 4
)

// Snapshot is the set of records read for one user at the start of an
// aggregation. It is treated as immutable for the invocation's duration.
type Snapshot struct {
	UserID            int64
	Transactions      []Transaction
	Categories        []Category
	RecurringPayments []RecurringPayment
	Goals             []FinancialGoal
}

// Dashboard is the full aggregation result. Monetary fields are decimal
// numbers, dates serialize as ISO-8601 calendar dates.
type Dashboard struct {
	MonthlySummary       MonthlySummary     `json:"monthly_summary"`
	YearlySummary        YearlySummary      `json:"yearly_summary"`
	CategoryBreakdown    []CategorySum      `json:"category_breakdown"`
	RecentTransactions   []TransactionEntry `json:"recent_transactions"`
	UpcomingPayments     []PaymentEntry     `json:"upcoming_payments"`
	HighPriorityExpenses []TransactionEntry `json:"high_priority_expenses"`
	MonthlyTrend         []TrendPoint       `json:"monthly_trend"`
	WeeklyTrend          []TrendPoint       `json:"weekly_trend"`
	TimelineEvents       []TimelineEvent    `json:"timeline_events"`
	ActiveGoals          []GoalEntry        `json:"active_goals"`
}

type MonthlySummary struct {
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	Balance       float64 `json:"balance"`
	IncomeChange  float64 `json:"income_change"`
	ExpenseChange float64 `json:"expense_change"`
	SavingsRate   float64 `json:"savings_rate"`
}

type YearlySummary struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type CategorySum struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Total      float64 `json:"total"`
}

// CategoryRef is the denormalized category attached to list entries.
type CategoryRef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TransactionEntry struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Amount   float64      `json:"amount"`
	Currency string       `json:"currency"`
	Kind     Kind         `json:"kind"`
	Date     Date         `json:"date"`
	Priority Priority     `json:"priority"`
	Category *CategoryRef `json:"category,omitempty"`
}

type PaymentEntry struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Amount          float64      `json:"amount"`
	Currency        string       `json:"currency"`
	Frequency       Frequency    `json:"frequency"`
	NextPaymentDate Date         `json:"next_payment_date"`
	Category        *CategoryRef `json:"category,omitempty"`
}

type TrendPoint struct {
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// TimelineEvent is the tagged variant merging transactions and goal
// milestones into one chronological sequence. Goal events always carry a
// progress value; transaction events never do.
type TimelineEvent struct {
	ID       int64        `json:"id"`
	Type     string       `json:"type"`    // "transaction" or "goal"
	Subtype  string       `json:"subtype"` // income/expense, or "milestone"
	Title    string       `json:"title"`
	Amount   float64      `json:"amount"`
	Currency string       `json:"currency"`
	Date     Date         `json:"date"`
	Category *CategoryRef `json:"category,omitempty"`
	Progress *float64     `json:"progress,omitempty"`
}

type GoalEntry struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	TargetAmount       float64 `json:"target_amount"`
	CurrentAmount      float64 `json:"current_amount"`
	TargetDate         Date    `json:"target_date"`
	ProgressPercentage float64 `json:"progress_percentage"`
	RemainingAmount    float64 `json:"remaining_amount"`
}

// Goal milestones have no stored currency; the original tracker displays
// them in the account default.
const milestoneCurrency = "USD"

// BuildDashboard computes every dashboard view from one snapshot and one
// evaluation instant. It is a pure function: now is captured once by the
// caller and never re-read, and the snapshot is not mutated, so concurrent
// invocations share no state.
func BuildDashboard(snap Snapshot, now time.Time) Dashboard {
	// Defensive ownership filter. The store already scopes reads by user,
	// but a record that slipped through must never reach the output.
	txs := ownTransactions(snap)
	payments := ownPayments(snap)
	goals := ownGoals(snap)
	categories := make(map[int64]Category, len(snap.Categories))
	for _, c := range snap.Categories {
		if c.UserID == snap.UserID {
			categories[c.ID] = c
		}
	}

	monthStart := DateOf(StartOfMonth(now))
	yearStart := DateOf(StartOfYear(now))
	prevMonth := Bucket{
		Start: StartOfMonth(now).AddDate(0, -1, 0),
		End:   StartOfMonth(now),
	}
	thisMonth := Bucket{
		Start: StartOfMonth(now),
		End:   StartOfMonth(now).AddDate(0, 1, 0),
	}

	monthlyIncome := SumByKind(txs, Income, monthStart)
	monthlyExpenses := SumByKind(txs, Expense, monthStart)
	prevIncome := SumInBucket(txs, Income, prevMonth)
	prevExpenses := SumInBucket(txs, Expense, prevMonth)
	yearlyIncome := SumByKind(txs, Income, yearStart)
	yearlyExpenses := SumByKind(txs, Expense, yearStart)

	return Dashboard{
		MonthlySummary: MonthlySummary{
			Income:        monthlyIncome.Float(),
			Expenses:      monthlyExpenses.Float(),
			Balance:       monthlyIncome.Sub(monthlyExpenses).Float(),
			IncomeChange:  Round2(PercentageChange(monthlyIncome, prevIncome)),
			ExpenseChange: Round2(PercentageChange(monthlyExpenses, prevExpenses)),
			SavingsRate:   Round2(SavingsRate(monthlyIncome, monthlyExpenses)),
		},
		YearlySummary: YearlySummary{
			Income:   yearlyIncome.Float(),
			Expenses: yearlyExpenses.Float(),
			Balance:  yearlyIncome.Sub(yearlyExpenses).Float(),
		},
		CategoryBreakdown:    categoryBreakdown(txs, categories, monthStart),
		RecentTransactions:   recentTransactions(txs, categories),
		UpcomingPayments:     upcomingPayments(payments, categories, now),
		HighPriorityExpenses: highPriorityExpenses(txs, categories, thisMonth),
		MonthlyTrend:         trend(txs, MonthlyBuckets(now, monthlyTrendMonths)),
		WeeklyTrend:          trend(txs, WeeklyBuckets(now, weeklyTrendWeeks)),
		TimelineEvents:       timeline(txs, goals, categories, now),
		ActiveGoals:          activeGoals(goals),
	}
}

func ownTransactions(snap Snapshot) []Transaction {
	out := make([]Transaction, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		if t.UserID == snap.UserID {
			out = append(out, t)
		}
	}
	return out
}

func ownPayments(snap Snapshot) []RecurringPayment {
	out := make([]RecurringPayment, 0, len(snap.RecurringPayments))
	for _, p := range snap.RecurringPayments {
		if p.UserID == snap.UserID {
			out = append(out, p)
		}
	}
	return out
}

func ownGoals(snap Snapshot) []FinancialGoal {
	out := make([]FinancialGoal, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		if g.UserID == snap.UserID {
			out = append(out, g)
		}
	}
	return out
}

func categoryRef(categories map[int64]Category, id *int64) *CategoryRef {
	if id == nil {
		return nil
	}
	c, ok := categories[*id]
	if !ok {
		return nil
	}
	return &CategoryRef{Name: c.Name, Color: c.Color}
}

func transactionEntry(t Transaction, categories map[int64]Category) TransactionEntry {
	return TransactionEntry{
		ID:       t.ID,
		Title:    t.Title,
		Amount:   t.Amount.Float(),
		Currency: t.Currency,
		Kind:     t.Kind,
		Date:     t.Date,
		Priority: t.Priority,
		Category: categoryRef(categories, t.CategoryID),
	}
}

// categoryBreakdown groups this month's categorized expenses and sorts them
// by descending total. Categories without a matching expense are omitted,
// never zero-filled.
func categoryBreakdown(txs []Transaction, categories map[int64]Category, monthStart Date) []CategorySum {
	totals := make(map[int64]Money)
	for _, t := range txs {
		if t.Kind != Expense || t.CategoryID == nil || t.Date.Before(monthStart.Time) {
			continue
		}
		if _, known := categories[*t.CategoryID]; !known {
			continue
		}
		totals[*t.CategoryID] = totals[*t.CategoryID].Add(t.Amount)
	}

	out := make([]CategorySum, 0, len(totals))
	for id, total := range totals {
		c := categories[id]
		out = append(out, CategorySum{
			CategoryID: id,
			Name:       c.Name,
			Color:      c.Color,
			Total:      total.Float(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// sortedByDateDesc returns a copy sorted newest first. The sort is stable
// so records sharing a date keep their insertion order.
func sortedByDateDesc(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

func recentTransactions(txs []Transaction, categories map[int64]Category) []TransactionEntry {
	sorted := sortedByDateDesc(txs)
	if len(sorted) > recentTransactionsLimit {
		sorted = sorted[:recentTransactionsLimit]
	}
	out := make([]TransactionEntry, 0, len(sorted))
	for _, t := range sorted {
		out = append(out, transactionEntry(t, categories))
	}
	return out
}

// upcomingPayments returns active payments due within the next 30 days,
// soonest first. Paused and completed payments are excluded regardless of
// their next occurrence date.
func upcomingPayments(payments []RecurringPayment, categories map[int64]Category, now time.Time) []PaymentEntry {
	cutoff := DateOf(now.AddDate(0, 0, upcomingWindowDays))
	due := make([]RecurringPayment, 0, len(payments))
	for _, p := range payments {
		if p.Status != PaymentActive || p.NextPaymentDate.After(cutoff.Time) {
			continue
		}
		due = append(due, p)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextPaymentDate.Before(due[j].NextPaymentDate.Time)
	})

	out := make([]PaymentEntry, 0, len(due))
	for _, p := range due {
		out = append(out, PaymentEntry{
			ID:              p.ID,
			Title:           p.Title,
			Amount:          p.Amount.Float(),
			Currency:        p.Currency,
			Frequency:       p.Frequency,
			NextPaymentDate: p.NextPaymentDate,
			Category:        categoryRef(categories, p.CategoryID),
		})
	}
	return out
}

func highPriorityExpenses(txs []Transaction, categories map[int64]Category, thisMonth Bucket) []TransactionEntry {
	matched := make([]Transaction, 0, highPriorityLimit)
	for _, t := range txs {
		if t.Kind == Expense && t.Priority == PriorityHigh && thisMonth.Contains(t.Date) {
			matched = append(matched, t)
		}
	}
	matched = sortedByDateDesc(matched)
	if len(matched) > highPriorityLimit {
		matched = matched[:highPriorityLimit]
	}
	out := make([]TransactionEntry, 0, len(matched))
	for _, t := range matched {
		out = append(out, transactionEntry(t, categories))
	}
	return out
}

// trend zero-fills every bucket: trend charts always show the full window
// even for users with no transactions.
func trend(txs []Transaction, buckets []Bucket) []TrendPoint {
	out := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		income := SumInBucket(txs, Income, b)
		expense := SumInBucket(txs, Expense, b)
		out = append(out, TrendPoint{
			Label:   b.Label,
			Income:  income.Float(),
			Expense: expense.Float(),
			Balance: income.Sub(expense).Float(),
		})
	}
	return out
}

// timeline merges the 20 most recent transactions of the last 90 days with
// every active goal's target-date milestone, newest first. Transactions are
// appended before goals, so the stable sort keeps that relative order on
// date ties.
func timeline(txs []Transaction, goals []FinancialGoal, categories map[int64]Category, now time.Time) []TimelineEvent {
	windowStart := DateOf(now.AddDate(0, 0, -timelineWindowDays))
	recent := make([]Transaction, 0, timelineTransactionsLimit)
	for _, t := range sortedByDateDesc(txs) {
		if t.Date.Before(windowStart.Time) {
			continue
		}
		recent = append(recent, t)
		if len(recent) == timelineTransactionsLimit {
			break
		}
	}

	events := make([]TimelineEvent, 0, len(recent)+len(goals))
	for _, t := range recent {
		events = append(events, TimelineEvent{
			ID:       t.ID,
			Type:     "transaction",
			Subtype:  string(t.Kind),
			Title:    t.Title,
			Amount:   t.Amount.Float(),
			Currency: t.Currency,
			Date:     t.Date,
			Category: categoryRef(categories, t.CategoryID),
		})
	}
	for _, g := range goals {
		if g.Status != GoalActive {
			continue
		}
		progress := Round2(g.Progress())
		events = append(events, TimelineEvent{
			ID:       g.ID,
			Type:     "goal",
			Subtype:  "milestone",
			Title:    g.Title,
			Amount:   g.TargetAmount.Float(),
			Currency: milestoneCurrency,
			Date:     g.TargetDate,
			Progress: &progress,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date.Time)
	})
	return events
}

func activeGoals(goals []FinancialGoal) []GoalEntry {
	active := make([]FinancialGoal, 0, len(goals))
	for _, g := range goals {
		if g.Status == GoalActive {
			active = append(active, g)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].TargetDate.Before(active[j].TargetDate.Time)
	})
	if len(active) > activeGoalsLimit {
		active = active[:activeGoalsLimit]
	}

	out := make([]GoalEntry, 0, len(active))
	for _, g := range active {
		out = append(out, GoalEntry{
			ID:                 g.ID,
			Title:              g.Title,
			TargetAmount:       g.TargetAmount.Float(),
			CurrentAmount:      g.CurrentAmount.Float(),
			TargetDate:         g.TargetDate,
			ProgressPercentage: Round2(g.Progress()),
			RemainingAmount:    g.Remaining().Float(),
		})
	}
	return out
}
