/*
handlers.go - HTTP API handlers for the ledger engine

PURPOSE:
  Exposes the ledger via REST. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Tools (the driver wire boundary):
    POST   /api/tools/{operation}         Invoke a tool operation

  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create employee
    GET    /api/employees/{id}            Get employee (with balance)
    GET    /api/employees/{id}/worklogs   Work entries (filterable)
    GET    /api/employees/{id}/vacations  Vacation entries

  Projects:
    GET    /api/projects                  List projects
    POST   /api/projects                  Create project
    GET    /api/projects/{id}             Get project
    GET    /api/projects/{id}/actuals     To-date financials
    GET    /api/projects/{id}/assignments List assignments
    POST   /api/projects/{id}/assignments Create assignment

  Projection:
    GET    /api/projection                12-month planned forecast
    GET    /api/dashboard                 Current-month aggregate

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Wipe the database

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Cross-employee write attempts
  - 404: Resource not found
  - 500: Internal errors
  Conflict and confirmation-required cases are NOT HTTP errors: the tool
  surface reports them as 200 responses with the corresponding Outcome tag,
  because the driver must read and act on them.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - tools/toolset.go: The operations behind /api/tools
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/ledger-engine/ledger"
	"github.com/warp/ledger-engine/projection"
	"github.com/warp/ledger-engine/tools"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DataStore is the persistence surface the API needs: the full ledger
// store plus the destructive reset used by demo scenarios.
type DataStore interface {
	ledger.TxStore
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      DataStore
	Service    *ledger.Service
	Tools      *tools.Toolset
	Projection *projection.Engine

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store DataStore) *Handler {
	svc := ledger.NewService(store)
	return &Handler{
		Store:      store,
		Service:    svc,
		Tools:      tools.New(svc),
		Projection: projection.NewEngine(store),
	}
}

// =============================================================================
// TOOL SURFACE - The driver wire boundary
// =============================================================================

// InvokeTool runs one tool operation. The response is always 200 with a
// tagged Outcome; only transport-level failures produce HTTP errors.
func (h *Handler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	outcome := h.Tools.Invoke(r.Context(), name, raw)
	writeJSON(w, http.StatusOK, outcome)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := ledger.Employee{
		ID:                    ledger.EmployeeID(req.ID),
		Name:                  req.Name,
		MonthlyCost:           req.MonthlyCost,
		VacationDaysRemaining: req.VacationDaysRemaining,
		CreatedAt:             time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee, including the live balance.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := ledger.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// ListWorkLogs returns an employee's work entries, optionally filtered by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD&project=...
func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	filter := ledger.WorkLogFilter{
		EmployeeID: ledger.EmployeeID(chi.URLParam(r, "id")),
		ProjectID:  ledger.ProjectID(r.URL.Query().Get("project")),
	}
	var err error
	if filter.From, err = optionalDay(r.URL.Query().Get("from")); err != nil {
		writeDomainError(w, err)
		return
	}
	if filter.To, err = optionalDay(r.URL.Query().Get("to")); err != nil {
		writeDomainError(w, err)
		return
	}

	entries, err := h.Store.FindWorkLogs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	names := h.projectNames(r.Context())
	dtos := make([]WorkLogDTO, len(entries))
	for i, e := range entries {
		dtos[i] = WorkLogDTO{
			ID:          string(e.ID),
			EmployeeID:  string(e.EmployeeID),
			ProjectID:   string(e.ProjectID),
			ProjectName: names[e.ProjectID],
			Date:        e.Date.String(),
			Hours:       e.Hours,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListVacationLogs returns an employee's vacation entries.
func (h *Handler) ListVacationLogs(w http.ResponseWriter, r *http.Request) {
	filter := ledger.VacationLogFilter{
		EmployeeID: ledger.EmployeeID(chi.URLParam(r, "id")),
	}
	var err error
	if filter.From, err = optionalDay(r.URL.Query().Get("from")); err != nil {
		writeDomainError(w, err)
		return
	}
	if filter.To, err = optionalDay(r.URL.Query().Get("to")); err != nil {
		writeDomainError(w, err)
		return
	}

	entries, err := h.Store.FindVacationLogs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]VacationLogDTO, len(entries))
	for i, e := range entries {
		dtos[i] = VacationLogDTO{
			ID:         string(e.ID),
			EmployeeID: string(e.EmployeeID),
			Date:       e.Date.String(),
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject creates a new project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	start, err := ledger.ParseDay(req.StartDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var end *ledger.Day
	if req.EndDate != nil {
		d, err := ledger.ParseDay(*req.EndDate)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		end = &d
	}

	paymentType := ledger.PaymentType(req.PaymentType)
	if paymentType != ledger.PaymentFixed && paymentType != ledger.PaymentHourly {
		writeError(w, http.StatusBadRequest, "payment_type must be FIXED or HOURLY", nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	p := ledger.Project{
		ID:                ledger.ProjectID(req.ID),
		Name:              req.Name,
		Start:             start,
		End:               end,
		PaymentType:       paymentType,
		TotalPrice:        req.TotalPrice,
		HourlyRate:        req.HourlyRate,
		FixedMonthlyCosts: req.FixedMonthlyCosts,
		FixedTotalCosts:   req.FixedTotalCosts,
		Active:            active,
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProject(r.Context(), ledger.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

// GetActuals returns the project's to-date financial picture.
func (h *Handler) GetActuals(w http.ResponseWriter, r *http.Request) {
	asOf := ledger.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		d, err := ledger.ParseDay(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		asOf = d
	}

	actuals, err := h.Projection.Actuals(r.Context(), ledger.ProjectID(chi.URLParam(r, "id")), asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActualsDTO{
		ProjectID:    string(actuals.ProjectID),
		Name:         actuals.Name,
		AsOf:         actuals.AsOf.String(),
		PlannedHours: actuals.PlannedHours,
		LoggedHours:  actuals.LoggedHours,
		Revenue:      actuals.Revenue,
		Cost:         actuals.Cost,
		Margin:       actuals.Margin,
	})
}

// ListAssignments returns the project's planned allocations.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Store.ListAssignments(r.Context(), ledger.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		dtos[i] = toAssignmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAssignment adds a planned allocation to the project.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	projectID := ledger.ProjectID(chi.URLParam(r, "id"))

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "id and employee_id are required", nil)
		return
	}

	p, err := h.Store.GetProject(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	start, err := ledger.ParseDay(req.StartDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var end *ledger.Day
	if req.EndDate != nil {
		d, err := ledger.ParseDay(*req.EndDate)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		end = &d
	}

	a := ledger.ProjectAssignment{
		ID:         ledger.AssignmentID(req.ID),
		EmployeeID: ledger.EmployeeID(req.EmployeeID),
		ProjectID:  projectID,
		DailyHours: req.DailyHours,
		Start:      start,
		End:        end,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveAssignment(r.Context(), a); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetProjection returns the 12-month planned forecast starting at the
// current month (or ?from=YYYY-MM).
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	from := ledger.MonthOf(ledger.Today())
	if s := r.URL.Query().Get("from"); s != "" {
		m, err := ledger.ParseMonth(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		from = m
	}

	forecast, err := h.Projection.Forecast(r.Context(), from, projection.DefaultForecastMonths)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toForecastDTOs(forecast))
}

// GetDashboard returns the current-month aggregate. It reuses the forecast
// machinery for one month, so the dashboard and the projection cannot
// disagree about month math.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	forecast, err := h.Projection.Forecast(r.Context(), ledger.MonthOf(ledger.Today()), 1)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toForecastDTOs(forecast)[0])
}

// =============================================================================
// MAPPERS & HELPERS
// =============================================================================

func toEmployeeDTO(e ledger.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                    string(e.ID),
		Name:                  e.Name,
		MonthlyCost:           e.MonthlyCost,
		VacationDaysRemaining: e.VacationDaysRemaining,
		CreatedAt:             e.CreatedAt.Format(time.RFC3339),
	}
}

func toProjectDTO(p ledger.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:                string(p.ID),
		Name:              p.Name,
		StartDate:         p.Start.String(),
		PaymentType:       string(p.PaymentType),
		TotalPrice:        p.TotalPrice,
		HourlyRate:        p.HourlyRate,
		FixedMonthlyCosts: p.FixedMonthlyCosts,
		FixedTotalCosts:   p.FixedTotalCosts,
		Active:            p.Active,
	}
	if p.End != nil {
		s := p.End.String()
		dto.EndDate = &s
	}
	return dto
}

func toAssignmentDTO(a ledger.ProjectAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:         string(a.ID),
		EmployeeID: string(a.EmployeeID),
		ProjectID:  string(a.ProjectID),
		DailyHours: a.DailyHours,
		StartDate:  a.Start.String(),
	}
	if a.End != nil {
		s := a.End.String()
		dto.EndDate = &s
	}
	return dto
}

func toForecastDTOs(forecast []projection.MonthForecast) []MonthForecastDTO {
	dtos := make([]MonthForecastDTO, len(forecast))
	for i, m := range forecast {
		dtos[i] = MonthForecastDTO{
			Month:   m.Month.String(),
			Revenue: m.Revenue,
			Cost:    m.Cost,
			Margin:  m.Margin,
		}
	}
	return dtos
}

// projectNames returns a best-effort id->name map for display. A lookup
// failure degrades to raw ids rather than failing the listing.
func (h *Handler) projectNames(ctx context.Context) map[ledger.ProjectID]string {
	names := make(map[ledger.ProjectID]string)
	projects, err := h.Store.ListProjects(ctx)
	if err != nil {
		return names
	}
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names
}

func optionalDay(s string) (*ledger.Day, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ledger.ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps ledger error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, ledger.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, ledger.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "Unauthorized", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
