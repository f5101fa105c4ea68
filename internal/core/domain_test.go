package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		UserID:   1,
		Title:    "Groceries",
		Amount:   Money{Cents: 4250},
		Currency: "USD",
		Kind:     Expense,
		Date:     NewDate(2026, 8, 15),
		Priority: PriorityMedium,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"empty title", func(tx *Transaction) { tx.Title = "   " }, ErrEmptyTitle},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"lowercase currency", func(tx *Transaction) { tx.Currency = "usd" }, ErrInvalidCurrency},
		{"short currency", func(tx *Transaction) { tx.Currency = "US" }, ErrInvalidCurrency},
		{"bad priority", func(tx *Transaction) { tx.Priority = "urgent" }, ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionValidateZeroAmount(t *testing.T) {
	tx := validTransaction()
	tx.Amount = Money{}
	if err := tx.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}
}

func TestTransactionValidateLongTitle(t *testing.T) {
	tx := validTransaction()
	tx.Title = strings.Repeat("x", 256)
	if err := tx.Validate(); err == nil {
		t.Fatal("expected error for title over 255 characters")
	}
}

func TestCategoryValidate(t *testing.T) {
	valid := Category{UserID: 1, Name: "Rent", Kind: Expense, Color: "#3b82f6"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	noHash := valid
	noHash.Color = "3b82f6"
	if !errors.Is(noHash.Validate(), ErrInvalidColor) {
		t.Fatal("expected ErrInvalidColor for color without #")
	}

	empty := valid
	empty.Name = ""
	if !errors.Is(empty.Validate(), ErrEmptyName) {
		t.Fatal("expected ErrEmptyName")
	}
}

func TestRecurringPaymentValidate(t *testing.T) {
	valid := RecurringPayment{
		UserID:          1,
		Title:           "Rent",
		Amount:          Money{Cents: 90000},
		Currency:        "USD",
		Frequency:       Monthly,
		StartDate:       NewDate(2026, 1, 1),
		NextPaymentDate: NewDate(2026, 9, 1),
		Status:          PaymentActive,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	// open-ended payments carry a zero end date
	openEnded := valid
	openEnded.EndDate = Date{}
	if err := openEnded.Validate(); err != nil {
		t.Fatalf("open-ended payment rejected: %v", err)
	}

	backwards := valid
	backwards.EndDate = NewDate(2025, 12, 31)
	if !errors.Is(backwards.Validate(), ErrInvalidDateRange) {
		t.Fatal("expected ErrInvalidDateRange for end before start")
	}

	badFreq := valid
	badFreq.Frequency = "fortnightly"
	if !errors.Is(badFreq.Validate(), ErrInvalidFrequency) {
		t.Fatal("expected ErrInvalidFrequency")
	}

	badStatus := valid
	badStatus.Status = "archived"
	if !errors.Is(badStatus.Validate(), ErrInvalidStatus) {
		t.Fatal("expected ErrInvalidStatus")
	}
}

func TestFinancialGoalValidate(t *testing.T) {
	valid := FinancialGoal{
		UserID:       1,
		Title:        "Emergency fund",
		TargetAmount: Money{Cents: 500000},
		TargetDate:   NewDate(2027, 1, 1),
		Status:       GoalActive,
		Priority:     PriorityHigh,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	noDate := valid
	noDate.TargetDate = Date{}
	if noDate.Validate() == nil {
		t.Fatal("expected error for zero target date")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, 8, 30)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-08-30"` {
		t.Fatalf("marshal = %s, want \"2026-08-30\"", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip = %v, want %v", back, d)
	}

	var null Date
	if err := json.Unmarshal([]byte("null"), &null); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !null.IsZero() {
		t.Fatalf("null should decode to a zero date, got %v", null)
	}
}

func TestDateOfTruncates(t *testing.T) {
	d, err := ParseDate("2026-08-30")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !DateOf(testNow).Equal(d.Time) {
		t.Fatalf("DateOf(%v) = %v, want %v", testNow, DateOf(testNow), d)
	}
}
