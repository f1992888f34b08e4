package models

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the storage and wire format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar date without time of day, formatted as YYYY-MM-DD.
// Lexical order of Day values equals chronological order.
type Day string

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc != nil {
		t = t.In(loc)
	}
	return Day(t.Format(DayLayout))
}

// ParseDay validates and normalizes a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return Day(t.Format(DayLayout)), nil
}

// MustDay is ParseDay for constants and tests.
func MustDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	t, _ := time.Parse(DayLayout, string(d))
	return t
}

// AddDays shifts the day by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(DayLayout))
}

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool { return d < o }

// After reports whether d is strictly later than o.
func (d Day) After(o Day) bool { return d > o }

// DaysUntil returns the number of calendar days from d to o (negative when o is earlier).
func (d Day) DaysUntil(o Day) int {
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool { return d == "" }

func (d Day) String() string { return string(d) }

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year int, month time.Month) (Day, Day) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Day(first.Format(DayLayout)), Day(last.Format(DayLayout))
}
