/*
range.go - Declarative date ranges for bulk operations

PURPOSE:
  Bulk tools take a declarative range - an explicit start/end pair, a
  calendar month token, or a month range - and this file turns it into the
  ordered set of concrete business dates to act on.

WEEKEND HANDLING:
  SkipWeekends defaults to true for bulk ranges. When the caller explicitly
  sets it to false, the weekend dates inside the range are NOT silently
  included: they are collected and surfaced to the confirmation gate, which
  demands an explicit confirmed=true before the write executes.

SEE ALSO:
  - gate.go: confirmation decisions over the expanded range
*/
package ledger

import "fmt"

// =============================================================================
// DATE RANGE
// =============================================================================

type DateRange struct {
	Start Day
	End   Day
}

func (r DateRange) String() string {
	return r.Start.String() + " to " + r.End.String()
}

// Days returns every day in [Start, End] in order.
func (r DateRange) Days() []Day {
	var days []Day
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// =============================================================================
// RANGE SPEC - Declarative input from the tool layer
// =============================================================================

// RangeSpec is the declarative range a bulk tool receives: either an
// explicit start/end pair, a single month, or a month range. Exactly one
// form must be supplied.
type RangeSpec struct {
	Start *Day
	End   *Day

	Month *Month
	// MonthEnd, together with Month, selects a month range.
	MonthEnd *Month
}

// Resolve turns the parsed form into a concrete DateRange.
func (s RangeSpec) Resolve() (DateRange, error) {
	switch {
	case s.Start != nil && s.End != nil:
		if s.Month != nil {
			return DateRange{}, fmt.Errorf("%w: give either a start/end range or a month, not both", ErrValidation)
		}
		if s.End.Before(*s.Start) {
			return DateRange{}, fmt.Errorf("%w: range end %s precedes start %s", ErrValidation, s.End, s.Start)
		}
		return DateRange{Start: *s.Start, End: *s.End}, nil

	case s.Month != nil:
		start := s.Month.Start()
		end := s.Month.End()
		if s.MonthEnd != nil {
			end = s.MonthEnd.End()
			if end.Before(start) {
				return DateRange{}, fmt.Errorf("%w: month range %s..%s is reversed", ErrValidation, s.Month, s.MonthEnd)
			}
		}
		return DateRange{Start: start, End: end}, nil

	case s.Start != nil || s.End != nil:
		return DateRange{}, fmt.Errorf("%w: a date range needs both start and end", ErrValidation)

	default:
		return DateRange{}, fmt.Errorf("%w: no range given (need start/end or month)", ErrValidation)
	}
}

// =============================================================================
// EXPANSION
// =============================================================================

// Expand produces the ordered candidate dates for a bulk write.
//
// The returned weekends slice always holds the Saturday/Sunday dates that
// fall inside the range. With skipWeekends=true those dates are removed
// from the candidate set before any confirmation check; with
// skipWeekends=false they stay in the candidate set and the caller must
// route them through the confirmation gate.
func Expand(r DateRange, skipWeekends bool) (days []Day, weekends []Day) {
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		if d.IsWeekend() {
			weekends = append(weekends, d)
			if skipWeekends {
				continue
			}
		}
		days = append(days, d)
	}
	return days, weekends
}
