// Package calendar builds month views of the rota for display and export.
package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/zapponejosh/shift-rota/internal/rota"
)

// Month is a calendar month with no day, time or zone component.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// The range of months the rota is displayed for.
var (
	MinMonth = Month{Year: rota.DefaultYear, Month: time.January}
	MaxMonth = Month{Year: rota.DefaultYear, Month: time.December}
)

// MonthOf returns the month containing d.
func MonthOf(d civil.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// First returns the first day of the month.
func (m Month) First() civil.Date {
	return civil.Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Add(1).First().DaysSince(m.First())
}

// Add returns the month n months later (earlier for negative n).
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	year := idx / 12
	mon := idx % 12
	if mon < 0 {
		mon += 12
		year--
	}
	return Month{Year: year, Month: time.Month(mon + 1)}
}

// Before reports whether m is earlier than other.
func (m Month) Before(other Month) bool {
	return m.Year < other.Year || (m.Year == other.Year && m.Month < other.Month)
}

// After reports whether m is later than other.
func (m Month) After(other Month) bool {
	return other.Before(m)
}

// String returns the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Title returns the month as "January 2026".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// IsValid reports whether the month number is 1..12.
func (m Month) IsValid() bool {
	return m.Month >= time.January && m.Month <= time.December
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, use YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// InRange reports whether m is within the displayed range.
func InRange(m Month) bool {
	return !m.Before(MinMonth) && !m.After(MaxMonth)
}

// ClampMonth returns the month of d, clamped into the displayed range.
func ClampMonth(d civil.Date) Month {
	m := MonthOf(d)
	if m.Before(MinMonth) {
		return MinMonth
	}
	if m.After(MaxMonth) {
		return MaxMonth
	}
	return m
}

// NextMonth steps forward one month. Stepping past the last month wraps to
// the first.
func NextMonth(m Month) Month {
	next := m.Add(1)
	if next.After(MaxMonth) {
		return MinMonth
	}
	if next.Before(MinMonth) {
		return MinMonth
	}
	return next
}

// PrevMonth steps back one month. Stepping before the first month wraps to
// the last.
func PrevMonth(m Month) Month {
	prev := m.Add(-1)
	if prev.Before(MinMonth) {
		return MaxMonth
	}
	if prev.After(MaxMonth) {
		return MaxMonth
	}
	return prev
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return d, nil
}

// Weekday returns the day of the week of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
