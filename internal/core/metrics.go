package core

import "math"

// Metric primitives shared by the dashboard aggregation. All of them are
// total functions: division by zero short-circuits to 0 instead of failing.

// SumByKind sums the amounts of transactions matching kind that occurred on
// or after since. An empty input yields zero.
func SumByKind(txs []Transaction, kind Kind, since Date) Money {
	var total Money
	for _, t := range txs {
		if t.Kind == kind && !t.Date.Before(since.Time) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SumInBucket sums the amounts of transactions matching kind whose date
// falls inside the bucket's half-open range.
func SumInBucket(txs []Transaction, kind Kind, b Bucket) Money {
	var total Money
	for _, t := range txs {
		if t.Kind == kind && b.Contains(t.Date) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// PercentageChange returns the percent change from previous to current,
// or 0 when previous is not positive.
func PercentageChange(current, previous Money) float64 {
	if previous.Cents <= 0 {
		return 0
	}
	return float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100
}

// SavingsRate returns the share of income not spent, as a percentage,
// or 0 when income is not positive.
func SavingsRate(income, expense Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	return float64(income.Cents-expense.Cents) / float64(income.Cents) * 100
}

// ProgressPercentage returns current/target as a percentage clamped to
// [0, 100], or 0 when target is not positive.
func ProgressPercentage(current, target Money) float64 {
	if target.Cents <= 0 {
		return 0
	}
	return math.Min(100, float64(current.Cents)/float64(target.Cents)*100)
}

// RemainingAmount returns target minus current, floored at zero.
func RemainingAmount(current, target Money) Money {
	if remaining := target.Cents - current.Cents; remaining > 0 {
		return Money{Cents: remaining}
	}
	return Money{}
}

// Round2 rounds a percentage to 2 decimals. Applied only when shaping
// output so intermediate results keep full precision.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
