package utils

import "time"

// Now returns the current UTC time truncated to microseconds, matching
// postgres timestamp precision so round-tripped values compare equal.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

// ToDate strips the clock component, keeping the UTC calendar date.
func ToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
