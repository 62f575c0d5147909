package domain

import "time"

const DateLayout = "2006-01-02"

// DateOf drops the time of day, keeping the calendar date of t in UTC terms.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the calendar-day difference to - from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
