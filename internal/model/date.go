package model

import "time"

const DateFormat = "2006-01-02"

// DateOf returns the calendar date of t as UTC midnight. Event timestamps are
// family-local wall clock, so the date is read from t's own fields.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OnDate places the time of day of clock on the given date.
func OnDate(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
}
