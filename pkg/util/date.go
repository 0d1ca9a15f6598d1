package util

import "time"

const dayLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dayLayout, s)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dayLayout)
}

// DayFloor truncates t to midnight UTC.
func DayFloor(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AlignDaily rounds a query range to whole-day boundaries.
func AlignDaily(from, to time.Time) (time.Time, time.Time) {
	return DayFloor(from), DayFloor(to)
}
