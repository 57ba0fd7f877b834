/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NOTE ON CASING:
  The tool surface (POST /api/tools/{op}) uses the camelCase parameter
  names of the driver contract (see tools/contract.go). The read/admin
  endpoints below use snake_case, matching the rest of the API.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - tools/contract.go: The driver-facing parameter records
*/
package api

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	MonthlyCost           decimal.Decimal `json:"monthly_cost"`
	VacationDaysRemaining int             `json:"vacation_days_remaining"`
	CreatedAt             string          `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	MonthlyCost           decimal.Decimal `json:"monthly_cost"`
	VacationDaysRemaining int             `json:"vacation_days_remaining"`
}

// =============================================================================
// PROJECTS & ASSIGNMENTS
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	StartDate         string          `json:"start_date"`
	EndDate           *string         `json:"end_date,omitempty"`
	PaymentType       string          `json:"payment_type"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	FixedMonthlyCosts decimal.Decimal `json:"fixed_monthly_costs"`
	FixedTotalCosts   decimal.Decimal `json:"fixed_total_costs"`
	Active            bool            `json:"active"`
}

// CreateProjectRequest is the request to create a project.
type CreateProjectRequest struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	StartDate         string          `json:"start_date"`
	EndDate           *string         `json:"end_date,omitempty"`
	PaymentType       string          `json:"payment_type"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	FixedMonthlyCosts decimal.Decimal `json:"fixed_monthly_costs"`
	FixedTotalCosts   decimal.Decimal `json:"fixed_total_costs"`
	Active            *bool           `json:"active,omitempty"`
}

// AssignmentDTO represents a planned allocation on a project.
type AssignmentDTO struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	ProjectID  string          `json:"project_id"`
	DailyHours decimal.Decimal `json:"daily_hours"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
}

// CreateAssignmentRequest is the request to assign an employee.
type CreateAssignmentRequest struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	DailyHours decimal.Decimal `json:"daily_hours"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

// WorkLogDTO represents a work entry.
type WorkLogDTO struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	ProjectID   string          `json:"project_id"`
	ProjectName string          `json:"project_name,omitempty"`
	Date        string          `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// VacationLogDTO represents a consumed vacation day.
type VacationLogDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// =============================================================================
// PROJECTION
// =============================================================================

// MonthForecastDTO is one month of the planned projection.
type MonthForecastDTO struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Margin  decimal.Decimal `json:"margin"`
}

// ActualsDTO is the to-date picture of one project.
type ActualsDTO struct {
	ProjectID    string          `json:"project_id"`
	Name         string          `json:"name"`
	AsOf         string          `json:"as_of"`
	PlannedHours decimal.Decimal `json:"planned_hours"`
	LoggedHours  decimal.Decimal `json:"logged_hours"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Margin       decimal.Decimal `json:"margin"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
