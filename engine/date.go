/*
Package engine provides the shared core for the life-economy engines.

PURPOSE:
  This package contains the cross-cutting pieces every domain engine
  (ledger, inventory, baking, social, shop) depends on: the in-fiction
  calendar, the clock that resolves "today", monotonic id sequences,
  an injectable randomness source, and the error taxonomy.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A day-granularity calendar value stored as ISO "YYYY-MM-DD"
  - Month prefixes: ISO "YYYY-MM" strings used for monthly aggregation
  - End-of-month arithmetic used by recurring-rule clamping

DESIGN PRINCIPLES:
  1. Day granularity: the simulation never needs sub-day precision;
     everything normalizes to midnight UTC
  2. String-stable: Date round-trips through its ISO form, which is
     also the persisted representation
  3. No wall-clock access here - "today" is the Clock's job

SEE ALSO:
  - clock.go: Resolves the current in-fiction date
  - ledger/recurring.go: Heaviest consumer of the month arithmetic
*/
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar value
// =============================================================================

// Date is a single in-fiction calendar day. The zero value is "no date".
type Date struct {
	t time.Time
}

// NewDate builds a Date at day granularity.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// DaysInMonth returns the number of days in this date's month.
func (d Date) DaysInMonth() int {
	first := time.Date(d.t.Year(), d.t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// IsLastDayOfMonth reports whether this is the final day of its month.
func (d Date) IsLastDayOfMonth() bool {
	return d.Day() == d.DaysInMonth()
}

// String returns the ISO "YYYY-MM-DD" form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// MonthPrefix returns the ISO "YYYY-MM" form used for monthly aggregation.
// Transactions store ISO dates, so a month filter is a prefix match.
func (d Date) MonthPrefix() string {
	return d.t.Format("2006-01")
}

// DaysBetween returns to - from in whole days (negative if to < from).
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// JSON - Date persists as its ISO string
// =============================================================================

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
