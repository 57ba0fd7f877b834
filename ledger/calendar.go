/*
calendar.go - Day-granularity time handling and business-day math

PURPOSE:
  Everything in this system happens at day granularity: work is logged
  against a calendar day, vacation consumes a calendar day, and the
  projection engine allocates money across calendar months. This file is
  the single home for that math so that "same day" detection, weekend
  checks, and business-day counting cannot diverge between call sites.

KEY CONCEPTS:
  - Day:   a calendar day in UTC with no time component. Constructed
           through NewDay/DayOf/ParseDay, all of which discard time-of-day.
  - Month: a 4-digit-year / 2-digit-month token ("2026-02") used by the
           bulk tools and the projection engine.

SHARED OVERLAP HELPER:
  BusinessDaysInOverlap is used by BOTH the 12-month forecast and the
  per-project actuals computation. Keeping one implementation avoids
  divergent rounding between the two paths.

SEE ALSO:
  - range.go: expands declarative ranges into concrete day sets
  - projection/engine.go: month-by-month interval allocation
*/
package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar day, no time component
// =============================================================================

type Day struct {
	Time time.Time
}

// NewDay constructs a Day at UTC midnight.
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf normalizes an arbitrary time to its calendar day, discarding the
// time-of-day so that same-day detection is exact.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses an ISO calendar date (YYYY-MM-DD).
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: invalid date %q (use YYYY-MM-DD)", ErrValidation, s)
	}
	return DayOf(t), nil
}

func Today() Day {
	return DayOf(time.Now().UTC())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// Arithmetic
func (d Day) AddDays(n int) Day   { return DayOf(d.Time.AddDate(0, 0, n)) }
func (d Day) AddMonths(n int) Day { return DayOf(d.Time.AddDate(0, n, 0)) }

// Properties
func (d Day) Year() int             { return d.Time.Year() }
func (d Day) Month() time.Month     { return d.Time.Month() }
func (d Day) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Day) IsZero() bool          { return d.Time.IsZero() }

func (d Day) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Day) IsBusinessDay() bool { return !d.IsWeekend() }

func (d Day) String() string { return d.Time.Format("2006-01-02") }

// MinDay / MaxDay return the earlier / later of two days.
func MinDay(a, b Day) Day {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDay(a, b Day) Day {
	if a.After(b) {
		return a
	}
	return b
}

// DaysBetween returns the number of whole days from 'from' to 'to'.
// Negative when 'to' precedes 'from'.
func DaysBetween(from, to Day) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// =============================================================================
// MONTH - Calendar month token (YYYY-MM)
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a month token (YYYY-MM).
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: invalid month %q (use YYYY-MM)", ErrValidation, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(d Day) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

func (m Month) Start() Day {
	return NewDay(m.Year, m.Month, 1)
}

func (m Month) End() Day {
	return DayOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

func (m Month) Next() Month {
	d := m.Start().AddMonths(1)
	return MonthOf(d)
}

func (m Month) String() string {
	return m.Start().Time.Format("2006-01")
}

// =============================================================================
// BUSINESS-DAY MATH - Shared by forecast and actuals
// =============================================================================

// BusinessDaysBetween counts Mon-Fri days in [from, to], inclusive of both
// ends. Holidays are not considered. Returns 0 when to precedes from.
func BusinessDaysBetween(from, to Day) int {
	if to.Before(from) {
		return 0
	}
	count := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if d.IsBusinessDay() {
			count++
		}
	}
	return count
}

// Overlap clamps [aStart, aEnd] to [bStart, bEnd]. ok is false when the
// intervals do not intersect.
func Overlap(aStart, aEnd, bStart, bEnd Day) (start, end Day, ok bool) {
	start = MaxDay(aStart, bStart)
	end = MinDay(aEnd, bEnd)
	if start.After(end) {
		return Day{}, Day{}, false
	}
	return start, end, true
}

// BusinessDaysInOverlap counts inclusive business days in the intersection
// of the two intervals. This is THE shared helper for interval allocation:
// the planned forecast and the per-project actuals both call it, so the two
// computations cannot round differently.
func BusinessDaysInOverlap(aStart, aEnd, bStart, bEnd Day) int {
	start, end, ok := Overlap(aStart, aEnd, bStart, bEnd)
	if !ok {
		return 0
	}
	return BusinessDaysBetween(start, end)
}
