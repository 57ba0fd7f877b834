/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for testing and demos. Each scenario creates employees, projects,
  assignments, and ledger entries that demonstrate specific features.

AVAILABLE SCENARIOS:
  small-team:        Two employees, one FIXED project, a few logged days
  consulting-mix:    FIXED and HOURLY projects side by side, with vacation
  forecast-showcase: Staggered assignments exercising the 12-month forecast

HOW SCENARIOS WORK:
  1. Reset database (clear all data)
  2. Create employees and projects
  3. Create assignments
  4. Record work and vacation through the ledger service, so the vacation
     balance stays consistent with the entries (never raw inserts)

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "consulting-mix"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context and JSON helpers
  - server.go: Route registration
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/ledger-engine/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Two employees on one fixed-price project with a week of logged work",
	},
	{
		ID:          "consulting-mix",
		Name:        "Consulting Mix",
		Description: "Fixed-price and hourly projects side by side, including vacation days",
	},
	{
		ID:          "forecast-showcase",
		Name:        "Forecast Showcase",
		Description: "Staggered assignments and an open-ended project exercising the 12-month forecast",
	},
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"current":   h.currentScenario,
	})
}

// LoadScenario wipes the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-team":
		err = h.loadSmallTeam(ctx)
	case "consulting-mix":
		err = h.loadConsultingMix(ctx)
	case "forecast-showcase":
		err = h.loadForecastShowcase(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// ResetDatabase wipes all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadSmallTeam(ctx context.Context) error {
	year := time.Now().UTC().Year()

	if err := h.seedEmployees(ctx,
		seedEmployee{"emp-ada", "Ada Moreno", 8000, 25},
		seedEmployee{"emp-ben", "Ben Keller", 6400, 25},
	); err != nil {
		return err
	}

	start := ledger.NewDay(year, time.January, 5)
	end := start.AddMonths(6)
	if err := h.Store.SaveProject(ctx, ledger.Project{
		ID:          "proj-atlas",
		Name:        "Atlas Platform",
		Start:       start,
		End:         &end,
		PaymentType: ledger.PaymentFixed,
		TotalPrice:  decimal.NewFromInt(90000),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return err
	}

	if err := h.seedAssignments(ctx,
		seedAssignment{"asg-1", "emp-ada", "proj-atlas", 6, start, &end},
		seedAssignment{"asg-2", "emp-ben", "proj-atlas", 8, start, &end},
	); err != nil {
		return err
	}

	// One logged week for Ada.
	day := start
	for i := 0; i < 5; i++ {
		for day.IsWeekend() {
			day = day.AddDays(1)
		}
		if _, err := h.Service.RecordWork(ctx, "emp-ada", "proj-atlas", day, decimal.NewFromInt(6), ledger.ConflictAdd); err != nil {
			return err
		}
		day = day.AddDays(1)
	}
	return nil
}

func (h *Handler) loadConsultingMix(ctx context.Context) error {
	year := time.Now().UTC().Year()

	if err := h.seedEmployees(ctx,
		seedEmployee{"emp-ada", "Ada Moreno", 8000, 25},
		seedEmployee{"emp-ben", "Ben Keller", 6400, 25},
		seedEmployee{"emp-chi", "Chiara Rossi", 7200, 28},
	); err != nil {
		return err
	}

	fixedStart := ledger.NewDay(year, time.January, 1)
	fixedEnd := ledger.NewDay(year, time.December, 31)
	hourlyStart := ledger.NewDay(year, time.March, 2)

	if err := h.Store.SaveProject(ctx, ledger.Project{
		ID:                "proj-atlas",
		Name:              "Atlas Platform",
		Start:             fixedStart,
		End:               &fixedEnd,
		PaymentType:       ledger.PaymentFixed,
		TotalPrice:        decimal.NewFromInt(144000),
		FixedMonthlyCosts: decimal.NewFromInt(500),
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}); err != nil {
		return err
	}
	if err := h.Store.SaveProject(ctx, ledger.Project{
		ID:          "proj-borealis",
		Name:        "Borealis Support",
		Start:       hourlyStart,
		PaymentType: ledger.PaymentHourly,
		HourlyRate:  decimal.NewFromInt(120),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return err
	}

	if err := h.seedAssignments(ctx,
		seedAssignment{"asg-1", "emp-ada", "proj-atlas", 6, fixedStart, &fixedEnd},
		seedAssignment{"asg-2", "emp-ben", "proj-atlas", 4, fixedStart, &fixedEnd},
		seedAssignment{"asg-3", "emp-chi", "proj-borealis", 8, hourlyStart, nil},
	); err != nil {
		return err
	}

	// A vacation week for Ben, recorded through the service so the balance
	// moves with the entries.
	day := ledger.NewDay(year, time.February, 9)
	for i := 0; i < 5; i++ {
		for day.IsWeekend() {
			day = day.AddDays(1)
		}
		if _, err := h.Service.RecordVacation(ctx, "emp-ben", day, ledger.ConflictAdd); err != nil {
			return err
		}
		day = day.AddDays(1)
	}
	return nil
}

func (h *Handler) loadForecastShowcase(ctx context.Context) error {
	year := time.Now().UTC().Year()

	if err := h.seedEmployees(ctx,
		seedEmployee{"emp-ada", "Ada Moreno", 8000, 25},
		seedEmployee{"emp-ben", "Ben Keller", 6400, 25},
		seedEmployee{"emp-chi", "Chiara Rossi", 7200, 28},
		seedEmployee{"emp-dev", "Devon Park", 9600, 25},
	); err != nil {
		return err
	}

	q1 := ledger.NewDay(year, time.January, 1)
	q2 := ledger.NewDay(year, time.April, 1)
	q2End := ledger.NewDay(year, time.June, 30)

	// Open-ended project: the 12-month forecast horizon kicks in.
	if err := h.Store.SaveProject(ctx, ledger.Project{
		ID:          "proj-cascade",
		Name:        "Cascade Retainer",
		Start:       q1,
		PaymentType: ledger.PaymentHourly,
		HourlyRate:  decimal.NewFromInt(150),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return err
	}
	if err := h.Store.SaveProject(ctx, ledger.Project{
		ID:                "proj-delta",
		Name:              "Delta Rebuild",
		Start:             q2,
		End:               &q2End,
		PaymentType:       ledger.PaymentFixed,
		TotalPrice:        decimal.NewFromInt(60000),
		FixedMonthlyCosts: decimal.NewFromInt(1200),
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}); err != nil {
		return err
	}

	return h.seedAssignments(ctx,
		seedAssignment{"asg-1", "emp-ada", "proj-cascade", 4, q1, nil},
		seedAssignment{"asg-2", "emp-ben", "proj-cascade", 8, q2, nil},
		seedAssignment{"asg-3", "emp-chi", "proj-delta", 8, q2, &q2End},
		seedAssignment{"asg-4", "emp-dev", "proj-delta", 6, q2, &q2End},
	)
}

// =============================================================================
// SEED HELPERS
// =============================================================================

type seedEmployee struct {
	id          string
	name        string
	monthlyCost int64
	vacation    int
}

type seedAssignment struct {
	id         string
	employeeID string
	projectID  string
	dailyHours int64
	start      ledger.Day
	end        *ledger.Day
}

func (h *Handler) seedEmployees(ctx context.Context, list ...seedEmployee) error {
	for _, e := range list {
		if err := h.Store.SaveEmployee(ctx, ledger.Employee{
			ID:                    ledger.EmployeeID(e.id),
			Name:                  e.name,
			MonthlyCost:           decimal.NewFromInt(e.monthlyCost),
			VacationDaysRemaining: e.vacation,
			CreatedAt:             time.Now().UTC(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) seedAssignments(ctx context.Context, list ...seedAssignment) error {
	for _, a := range list {
		if err := h.Store.SaveAssignment(ctx, ledger.ProjectAssignment{
			ID:         ledger.AssignmentID(a.id),
			EmployeeID: ledger.EmployeeID(a.employeeID),
			ProjectID:  ledger.ProjectID(a.projectID),
			DailyHours: decimal.NewFromInt(a.dailyHours),
			Start:      a.start,
			End:        a.end,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
	}
	return nil
}
