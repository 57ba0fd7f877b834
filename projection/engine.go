/*
Package projection computes the month-by-month financial outlook of the
business from projects, assignments, and employee costs.

PURPOSE:
  Two computations live here:
  - Forecast: a PLANNED projection over the next N calendar months, built
    from project assignments (not actual logged hours)
  - Actuals: per-project reality to date, built from logged work entries

KEY CONCEPTS:
  - Effective end: a project's end date, or start + 12 months when the
    project is open-ended (an explicit forecasting horizon, not a guess)
  - Month spread: FIXED-price revenue is spread evenly across the project
    duration using a 30-day-month approximation. Linear, not
    calendar-accurate; documented rather than "fixed" to keep the two
    consumers (forecast and dashboard aggregate) in agreement.
  - Hourly cost: employee.MonthlyCost / 160, a fixed full-time divisor

SHARED MATH:
  Forecast and Actuals both clamp intervals and count business days via
  ledger.BusinessDaysInOverlap. Divergent rounding between the planned and
  actual paths is a defect, so neither re-implements the helper.

SEE ALSO:
  - ledger/calendar.go: Overlap, BusinessDaysInOverlap, monthsSpanned input
  - api/handlers.go: /api/projection, /api/projects/{id}/actuals, dashboard
*/
package projection

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/ledger-engine/ledger"
)

// Source is the read surface the engine needs. ledger.Store satisfies it.
type Source interface {
	ListProjects(ctx context.Context) ([]ledger.Project, error)
	GetProject(ctx context.Context, id ledger.ProjectID) (*ledger.Project, error)
	ListAssignments(ctx context.Context, projectID ledger.ProjectID) ([]ledger.ProjectAssignment, error)
	ListEmployees(ctx context.Context) ([]ledger.Employee, error)
	FindWorkLogs(ctx context.Context, f ledger.WorkLogFilter) ([]ledger.WorkLogEntry, error)
}

// Engine computes forecasts and actuals against a Source.
type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// =============================================================================
// FORECAST - Planned projection from assignments
// =============================================================================

// MonthForecast is one month of the projection. Revenue, Cost, and Margin
// are rounded to whole currency units for display.
type MonthForecast struct {
	Month   ledger.Month
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Margin  decimal.Decimal
}

// DefaultForecastMonths is the standard projection window.
const DefaultForecastMonths = 12

// Forecast computes the planned projection for `months` calendar months
// starting at `from`. Only ACTIVE projects contribute.
func (e *Engine) Forecast(ctx context.Context, from ledger.Month, months int) ([]MonthForecast, error) {
	if months <= 0 {
		months = DefaultForecastMonths
	}

	projects, err := e.src.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := e.employeesByID(ctx)
	if err != nil {
		return nil, err
	}

	// Assignments are loaded once per project, not once per month.
	assignments := make(map[ledger.ProjectID][]ledger.ProjectAssignment)
	for _, p := range projects {
		if !p.Active {
			continue
		}
		as, err := e.src.ListAssignments(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		assignments[p.ID] = as
	}

	forecast := make([]MonthForecast, 0, months)
	m := from
	for i := 0; i < months; i++ {
		monthStart := m.Start()
		monthEnd := m.End()

		revenue := decimal.Zero
		cost := decimal.Zero

		for _, p := range projects {
			if !p.Active {
				continue
			}
			end := p.EffectiveEnd()
			if p.Start.After(monthEnd) || end.Before(monthStart) {
				continue
			}

			// FIXED revenue is spread evenly over the project duration.
			if p.PaymentType == ledger.PaymentFixed {
				revenue = revenue.Add(p.TotalPrice.Div(monthsSpanned(p)))
			}

			// Fixed monthly costs apply to every overlapping month.
			cost = cost.Add(p.FixedMonthlyCosts)

			for _, a := range assignments[p.ID] {
				days := ledger.BusinessDaysInOverlap(a.Start, a.EffectiveEnd(p), monthStart, monthEnd)
				if days == 0 {
					continue
				}
				hoursInMonth := a.DailyHours.Mul(decimal.NewFromInt(int64(days)))

				if emp, ok := employees[a.EmployeeID]; ok {
					cost = cost.Add(emp.HourlyCost().Mul(hoursInMonth))
				}
				if p.PaymentType == ledger.PaymentHourly {
					revenue = revenue.Add(hoursInMonth.Mul(p.HourlyRate))
				}
			}
		}

		revenue = revenue.Round(0)
		cost = cost.Round(0)
		forecast = append(forecast, MonthForecast{
			Month:   m,
			Revenue: revenue,
			Cost:    cost,
			Margin:  revenue.Sub(cost),
		})
		m = m.Next()
	}

	return forecast, nil
}

// =============================================================================
// ACTUALS - Per-project reality from logged hours
// =============================================================================

// ProjectActuals is the to-date financial picture of a single project.
type ProjectActuals struct {
	ProjectID ledger.ProjectID
	Name      string
	AsOf      ledger.Day

	// PlannedHours is what the assignments said should have been worked
	// between the project start and AsOf; LoggedHours is what actually was.
	PlannedHours decimal.Decimal
	LoggedHours  decimal.Decimal

	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Margin  decimal.Decimal
}

// Actuals computes the to-date picture for one project as of the given day.
func (e *Engine) Actuals(ctx context.Context, projectID ledger.ProjectID, asOf ledger.Day) (*ProjectActuals, error) {
	p, err := e.src.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ledger.NotFoundError{Kind: "project", Ref: string(projectID)}
	}

	employees, err := e.employeesByID(ctx)
	if err != nil {
		return nil, err
	}

	end := p.EffectiveEnd()
	horizon := ledger.MinDay(asOf, end)

	// Planned hours share the identical overlap helper with the forecast.
	planned := decimal.Zero
	as, err := e.src.ListAssignments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range as {
		days := ledger.BusinessDaysInOverlap(a.Start, a.EffectiveEnd(*p), p.Start, horizon)
		planned = planned.Add(a.DailyHours.Mul(decimal.NewFromInt(int64(days))))
	}

	logs, err := e.src.FindWorkLogs(ctx, ledger.WorkLogFilter{ProjectID: p.ID})
	if err != nil {
		return nil, err
	}

	logged := decimal.Zero
	cost := p.FixedTotalCosts
	for _, entry := range logs {
		logged = logged.Add(entry.Hours)
		if emp, ok := employees[entry.EmployeeID]; ok {
			cost = cost.Add(emp.HourlyCost().Mul(entry.Hours))
		}
	}

	spanned := monthsSpanned(*p)
	elapsed := monthsElapsed(*p, horizon, spanned)
	cost = cost.Add(p.FixedMonthlyCosts.Mul(elapsed))

	var revenue decimal.Decimal
	switch p.PaymentType {
	case ledger.PaymentHourly:
		revenue = logged.Mul(p.HourlyRate)
	default:
		// FIXED revenue is recognized linearly with elapsed time, capped
		// at the full price.
		share := elapsed.Div(spanned)
		if share.GreaterThan(decimal.NewFromInt(1)) {
			share = decimal.NewFromInt(1)
		}
		revenue = p.TotalPrice.Mul(share)
	}

	revenue = revenue.Round(0)
	cost = cost.Round(0)
	return &ProjectActuals{
		ProjectID:    p.ID,
		Name:         p.Name,
		AsOf:         asOf,
		PlannedHours: planned,
		LoggedHours:  logged,
		Revenue:      revenue,
		Cost:         cost,
		Margin:       revenue.Sub(cost),
	}, nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

var daysPerMonth = decimal.NewFromInt(30)

// monthsSpanned approximates the project duration in months using a 30-day
// month, rounded to the nearest whole month, never less than 1. Both the
// forecast spread and the actuals recognition use this single helper.
func monthsSpanned(p ledger.Project) decimal.Decimal {
	days := ledger.DaysBetween(p.Start, p.EffectiveEnd())
	m := decimal.NewFromInt(int64(days)).Div(daysPerMonth).Round(0)
	if m.LessThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return m
}

// monthsElapsed approximates whole months from the project start to the
// horizon, clamped to [0, spanned].
func monthsElapsed(p ledger.Project, horizon ledger.Day, spanned decimal.Decimal) decimal.Decimal {
	if horizon.Before(p.Start) {
		return decimal.Zero
	}
	days := ledger.DaysBetween(p.Start, horizon)
	m := decimal.NewFromInt(int64(days)).Div(daysPerMonth).Round(0)
	if m.GreaterThan(spanned) {
		return spanned
	}
	return m
}

func (e *Engine) employeesByID(ctx context.Context) (map[ledger.EmployeeID]ledger.Employee, error) {
	list, err := e.src.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading employees: %w", err)
	}
	byID := make(map[ledger.EmployeeID]ledger.Employee, len(list))
	for _, emp := range list {
		byID[emp.ID] = emp
	}
	return byID, nil
}
