package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRunInProgress     = errors.New("analytics run already in progress for date")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidDate       = errors.New("invalid calculation date")
	ErrMissingSnapshot   = errors.New("no inventory snapshot at or before date")
	ErrInvalidInput      = errors.New("invalid input")
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calculation date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return t, nil
}

// TruncateDate drops the clock part, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in UTC.
func Today() time.Time {
	return TruncateDate(time.Now())
}
