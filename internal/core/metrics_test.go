package core

import "testing"

func TestSumByKind(t *testing.T) {
	since := NewDate(2026, 8, 1)
	txs := []Transaction{
		{Kind: Income, Amount: Money{Cents: 30000}, Date: NewDate(2026, 8, 15)},
		{Kind: Expense, Amount: Money{Cents: 10000}, Date: NewDate(2026, 8, 15)},
		{Kind: Income, Amount: Money{Cents: 5000}, Date: NewDate(2026, 7, 31)}, // before window
		{Kind: Income, Amount: Money{Cents: 200}, Date: NewDate(2026, 8, 1)},   // boundary is inclusive
	}

	if got := SumByKind(txs, Income, since); got.Cents != 30200 {
		t.Fatalf("income sum = %d, want 30200", got.Cents)
	}
	if got := SumByKind(txs, Expense, since); got.Cents != 10000 {
		t.Fatalf("expense sum = %d, want 10000", got.Cents)
	}
	if got := SumByKind(nil, Income, since); got.Cents != 0 {
		t.Fatalf("empty sum = %d, want 0", got.Cents)
	}
}

func TestPercentageChange(t *testing.T) {
	cases := []struct {
		current, previous int64
		want              float64
	}{
		{15000, 10000, 50},
		{5000, 10000, -50},
		{10000, 10000, 0},
		{12345, 0, 0}, // never divides by zero
		{0, 0, 0},
	}
	for _, tc := range cases {
		got := PercentageChange(Money{Cents: tc.current}, Money{Cents: tc.previous})
		if got != tc.want {
			t.Fatalf("PercentageChange(%d, %d) = %v, want %v", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestSavingsRate(t *testing.T) {
	// income 300, expenses 100 -> 66.67 after output rounding
	got := SavingsRate(Money{Cents: 30000}, Money{Cents: 10000})
	if Round2(got) != 66.67 {
		t.Fatalf("savings rate = %v, want 66.67", Round2(got))
	}
	if got := SavingsRate(Money{}, Money{Cents: 10000}); got != 0 {
		t.Fatalf("zero-income savings rate = %v, want 0", got)
	}
}

func TestProgressPercentage(t *testing.T) {
	cases := []struct {
		current, target int64
		want            float64
	}{
		{50000, 100000, 50},
		{120000, 100000, 100}, // clamped
		{0, 100000, 0},
		{120000, 0, 0}, // zero target never divides
		{120000, -100, 0},
	}
	for _, tc := range cases {
		got := ProgressPercentage(Money{Cents: tc.current}, Money{Cents: tc.target})
		if got != tc.want {
			t.Fatalf("ProgressPercentage(%d, %d) = %v, want %v", tc.current, tc.target, got, tc.want)
		}
		if got < 0 || got > 100 {
			t.Fatalf("ProgressPercentage(%d, %d) = %v, outside [0,100]", tc.current, tc.target, got)
		}
	}
}

func TestRemainingAmount(t *testing.T) {
	if got := RemainingAmount(Money{Cents: 30000}, Money{Cents: 100000}); got.Cents != 70000 {
		t.Fatalf("remaining = %d, want 70000", got.Cents)
	}
	// overfunded goals floor at zero
	if got := RemainingAmount(Money{Cents: 120000}, Money{Cents: 100000}); got.Cents != 0 {
		t.Fatalf("overfunded remaining = %d, want 0", got.Cents)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{66.666666, 66.67},
		{12.344, 12.34},
		{-3.335, -3.33}, // math.Round is half away from zero on the scaled value
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
