package core

import "time"

// Bucket is a calendar-aligned date range used to group transactions for
// trend charts. The range is half-open: [Start, End).
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

// Contains reports whether the date falls inside the bucket's range.
func (b Bucket) Contains(d Date) bool {
	return !d.Time.Before(b.Start) && d.Time.Before(b.End)
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns midnight UTC on January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns midnight UTC on the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// MonthlyBuckets returns the n calendar months ending at the month that
// contains now, oldest first. Ranges are contiguous and non-overlapping,
// so a transaction inside the window maps to exactly one bucket.
func MonthlyBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, 0, n)
	current := StartOfMonth(now)
	for i := n - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		buckets = append(buckets, Bucket{
			Label: start.Format("Jan 2006"),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
	}
	return buckets
}

// WeeklyBuckets returns the n calendar weeks (Monday through Sunday)
// ending at the week that contains now, oldest first.
func WeeklyBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, 0, n)
	current := StartOfWeek(now)
	for i := n - 1; i >= 0; i-- {
		start := current.AddDate(0, 0, -7*i)
		buckets = append(buckets, Bucket{
			Label: start.Format("Jan 02"),
			Start: start,
			End:   start.AddDate(0, 0, 7),
		})
	}
	return buckets
}
