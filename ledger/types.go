/*
Package ledger records work-hours and vacation entries against employees
and projects for a services business.

PURPOSE:
  This package contains the domain types and operations for the ledger
  subsystem: work-log and vacation entries, the vacation-day balance
  invariant, conflict resolution policies, declarative date ranges, the
  confirmation gate, and deduplication.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee:          identity, monthly cost, vacation-day counter
  - Project:           dated engagement with FIXED or HOURLY pricing
  - ProjectAssignment: planned employee allocation (daily hours over a span)
  - WorkLogEntry:      hours logged by an employee on a project and day
  - VacationLogEntry:  one consumed vacation day

DESIGN PRINCIPLES:
  1. Precision: hours and money use decimal.Decimal, never floats
  2. Type Safety: strong ID types prevent mixing employees and projects
  3. Day Granularity: entry dates carry no time component (see calendar.go)

THE BALANCE INVARIANT:
  Employee.VacationDaysRemaining is a derived-but-stored counter. It moves
  by exactly -1 per vacation entry created and +1 per vacation entry
  deleted, always in the same atomic unit as the entry write. It is allowed
  to go negative; the ledger never adds a floor check.

SEE ALSO:
  - service.go: the write operations that uphold the invariant
  - store.go: persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ProjectID string
type EntryID string
type AssignmentID string

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID   EmployeeID
	Name string

	// MonthlyCost is the fully loaded cost of the employee per month, in the
	// deployment's base currency unit.
	MonthlyCost decimal.Decimal

	// VacationDaysRemaining is mutated only through the store's atomic
	// balance delta, never by read-modify-write. May go negative.
	VacationDaysRemaining int

	CreatedAt time.Time
}

// HourlyCostDivisor is the fixed full-time-hours-per-month divisor used to
// derive an hourly cost from MonthlyCost.
var HourlyCostDivisor = decimal.NewFromInt(160)

// HourlyCost returns MonthlyCost / 160.
func (e Employee) HourlyCost() decimal.Decimal {
	return e.MonthlyCost.Div(HourlyCostDivisor)
}

// =============================================================================
// PROJECT
// =============================================================================

type PaymentType string

const (
	PaymentFixed  PaymentType = "FIXED"
	PaymentHourly PaymentType = "HOURLY"
)

type Project struct {
	ID   ProjectID
	Name string

	Start Day
	// End is nil for open-ended projects.
	End *Day

	PaymentType PaymentType

	// TotalPrice applies to FIXED projects, HourlyRate to HOURLY ones.
	TotalPrice decimal.Decimal
	HourlyRate decimal.Decimal

	FixedMonthlyCosts decimal.Decimal
	FixedTotalCosts   decimal.Decimal

	Active    bool
	CreatedAt time.Time
}

// ForecastHorizonMonths is the default horizon applied to open-ended
// projects when computing their effective end.
const ForecastHorizonMonths = 12

// EffectiveEnd returns the project's end date, or Start + 12 months when
// the project is open-ended.
func (p Project) EffectiveEnd() Day {
	if p.End != nil {
		return *p.End
	}
	return p.Start.AddMonths(ForecastHorizonMonths)
}

// =============================================================================
// PROJECT ASSIGNMENT - Planned allocation, not actual hours
// =============================================================================

type ProjectAssignment struct {
	ID         AssignmentID
	EmployeeID EmployeeID
	ProjectID  ProjectID

	// DailyHours is the planned allocation per business day.
	DailyHours decimal.Decimal

	Start Day
	// End is nil when the assignment runs to the project end.
	End *Day

	CreatedAt time.Time
}

// EffectiveEnd returns the assignment's end date, defaulting to the
// project's effective end when absent.
func (a ProjectAssignment) EffectiveEnd(p Project) Day {
	if a.End != nil {
		return *a.End
	}
	return p.EffectiveEnd()
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

type WorkLogEntry struct {
	ID         EntryID
	EmployeeID EmployeeID
	ProjectID  ProjectID
	Date       Day

	// Hours is positive and a multiple of 0.5 (see ValidHours).
	Hours decimal.Decimal

	CreatedAt time.Time
}

type VacationLogEntry struct {
	ID         EntryID
	EmployeeID EmployeeID
	Date       Day
	CreatedAt  time.Time
}

// =============================================================================
// VALIDATION
// =============================================================================

var halfHour = decimal.NewFromFloat(0.5)

// ValidHours reports whether hours is positive and a multiple of 0.5.
func ValidHours(hours decimal.Decimal) bool {
	return hours.IsPositive() && hours.Div(halfHour).IsInteger()
}

// CheckHours returns an InvalidHoursError unless ValidHours(hours).
func CheckHours(hours decimal.Decimal) error {
	if !ValidHours(hours) {
		return &InvalidHoursError{Hours: hours}
	}
	return nil
}
