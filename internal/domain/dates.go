package domain

import "time"

// DateLayout is the wire and map-key format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateKey renders a date as its ISO map key.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	return int(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
}
