// Package store provides an in-memory ledger.TxStore implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/ledger-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	employees    map[ledger.EmployeeID]ledger.Employee
	projects     map[ledger.ProjectID]ledger.Project
	assignments  map[ledger.AssignmentID]ledger.ProjectAssignment
	workLogs     map[ledger.EntryID]ledger.WorkLogEntry
	vacationLogs map[ledger.EntryID]ledger.VacationLogEntry
}

func NewMemory() *Memory {
	return &Memory{
		employees:    make(map[ledger.EmployeeID]ledger.Employee),
		projects:     make(map[ledger.ProjectID]ledger.Project),
		assignments:  make(map[ledger.AssignmentID]ledger.ProjectAssignment),
		workLogs:     make(map[ledger.EntryID]ledger.WorkLogEntry),
		vacationLogs: make(map[ledger.EntryID]ledger.VacationLogEntry),
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn under the write lock against a view that uses the
// unlocked internals. On error the previous state is restored, giving the
// same all-or-nothing behavior as a database transaction.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	backup := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.restore(backup)
		return err
	}
	return nil
}

type memState struct {
	employees    map[ledger.EmployeeID]ledger.Employee
	projects     map[ledger.ProjectID]ledger.Project
	assignments  map[ledger.AssignmentID]ledger.ProjectAssignment
	workLogs     map[ledger.EntryID]ledger.WorkLogEntry
	vacationLogs map[ledger.EntryID]ledger.VacationLogEntry
}

func (m *Memory) snapshot() memState {
	s := memState{
		employees:    make(map[ledger.EmployeeID]ledger.Employee, len(m.employees)),
		projects:     make(map[ledger.ProjectID]ledger.Project, len(m.projects)),
		assignments:  make(map[ledger.AssignmentID]ledger.ProjectAssignment, len(m.assignments)),
		workLogs:     make(map[ledger.EntryID]ledger.WorkLogEntry, len(m.workLogs)),
		vacationLogs: make(map[ledger.EntryID]ledger.VacationLogEntry, len(m.vacationLogs)),
	}
	for k, v := range m.employees {
		s.employees[k] = v
	}
	for k, v := range m.projects {
		s.projects[k] = v
	}
	for k, v := range m.assignments {
		s.assignments[k] = v
	}
	for k, v := range m.workLogs {
		s.workLogs[k] = v
	}
	for k, v := range m.vacationLogs {
		s.vacationLogs[k] = v
	}
	return s
}

func (m *Memory) restore(s memState) {
	m.employees = s.employees
	m.projects = s.projects
	m.assignments = s.assignments
	m.workLogs = s.workLogs
	m.vacationLogs = s.vacationLogs
}

// memTx is the Store view handed to WithTx closures. The enclosing WithTx
// already holds the write lock, so it calls the unlocked internals.
type memTx struct {
	m *Memory
}

// =============================================================================
// WORK LOGS
// =============================================================================

func (m *Memory) InsertWorkLog(_ context.Context, e ledger.WorkLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertWorkLog(e)
}

func (t *memTx) InsertWorkLog(_ context.Context, e ledger.WorkLogEntry) error {
	return t.m.insertWorkLog(e)
}

func (m *Memory) insertWorkLog(e ledger.WorkLogEntry) error {
	m.workLogs[e.ID] = e
	return nil
}

func (m *Memory) UpdateWorkLog(_ context.Context, e ledger.WorkLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateWorkLog(e)
}

func (t *memTx) UpdateWorkLog(_ context.Context, e ledger.WorkLogEntry) error {
	return t.m.updateWorkLog(e)
}

func (m *Memory) updateWorkLog(e ledger.WorkLogEntry) error {
	if _, ok := m.workLogs[e.ID]; !ok {
		return &ledger.NotFoundError{Kind: "work log", Ref: string(e.ID)}
	}
	m.workLogs[e.ID] = e
	return nil
}

func (m *Memory) DeleteWorkLog(_ context.Context, id ledger.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWorkLog(id)
}

func (t *memTx) DeleteWorkLog(_ context.Context, id ledger.EntryID) error {
	return t.m.deleteWorkLog(id)
}

func (m *Memory) deleteWorkLog(id ledger.EntryID) error {
	if _, ok := m.workLogs[id]; !ok {
		return &ledger.NotFoundError{Kind: "work log", Ref: string(id)}
	}
	delete(m.workLogs, id)
	return nil
}

func (m *Memory) GetWorkLog(_ context.Context, id ledger.EntryID) (*ledger.WorkLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.workLogs[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (t *memTx) GetWorkLog(_ context.Context, id ledger.EntryID) (*ledger.WorkLogEntry, error) {
	if e, ok := t.m.workLogs[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Memory) FindWorkLogs(_ context.Context, f ledger.WorkLogFilter) ([]ledger.WorkLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findWorkLogs(f), nil
}

func (t *memTx) FindWorkLogs(_ context.Context, f ledger.WorkLogFilter) ([]ledger.WorkLogEntry, error) {
	return t.m.findWorkLogs(f), nil
}

func (m *Memory) findWorkLogs(f ledger.WorkLogFilter) []ledger.WorkLogEntry {
	var result []ledger.WorkLogEntry
	for _, e := range m.workLogs {
		if matchWorkLog(e, f) {
			result = append(result, e)
		}
	}
	sortWorkLogs(result)
	return result
}

func matchWorkLog(e ledger.WorkLogEntry, f ledger.WorkLogFilter) bool {
	if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
		return false
	}
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if f.Date != nil && !e.Date.Equal(*f.Date) {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}

func sortWorkLogs(entries []ledger.WorkLogEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

func (m *Memory) RecentWorkLogs(_ context.Context, employeeID ledger.EmployeeID, limit int) ([]ledger.WorkLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recentWorkLogs(employeeID, limit), nil
}

func (t *memTx) RecentWorkLogs(_ context.Context, employeeID ledger.EmployeeID, limit int) ([]ledger.WorkLogEntry, error) {
	return t.m.recentWorkLogs(employeeID, limit), nil
}

func (m *Memory) recentWorkLogs(employeeID ledger.EmployeeID, limit int) []ledger.WorkLogEntry {
	entries := m.findWorkLogs(ledger.WorkLogFilter{EmployeeID: employeeID})
	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// =============================================================================
// VACATION LOGS
// =============================================================================

func (m *Memory) InsertVacationLog(_ context.Context, e ledger.VacationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vacationLogs[e.ID] = e
	return nil
}

func (t *memTx) InsertVacationLog(_ context.Context, e ledger.VacationLogEntry) error {
	t.m.vacationLogs[e.ID] = e
	return nil
}

func (m *Memory) DeleteVacationLog(_ context.Context, id ledger.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteVacationLog(id)
}

func (t *memTx) DeleteVacationLog(_ context.Context, id ledger.EntryID) error {
	return t.m.deleteVacationLog(id)
}

func (m *Memory) deleteVacationLog(id ledger.EntryID) error {
	if _, ok := m.vacationLogs[id]; !ok {
		return &ledger.NotFoundError{Kind: "vacation log", Ref: string(id)}
	}
	delete(m.vacationLogs, id)
	return nil
}

func (m *Memory) FindVacationLogs(_ context.Context, f ledger.VacationLogFilter) ([]ledger.VacationLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findVacationLogs(f), nil
}

func (t *memTx) FindVacationLogs(_ context.Context, f ledger.VacationLogFilter) ([]ledger.VacationLogEntry, error) {
	return t.m.findVacationLogs(f), nil
}

func (m *Memory) findVacationLogs(f ledger.VacationLogFilter) []ledger.VacationLogEntry {
	var result []ledger.VacationLogEntry
	for _, e := range m.vacationLogs {
		if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
			continue
		}
		if f.Date != nil && !e.Date.Equal(*f.Date) {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// =============================================================================
// BALANCE
// =============================================================================

func (m *Memory) AdjustVacationBalance(_ context.Context, employeeID ledger.EmployeeID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustVacationBalance(employeeID, delta)
}

func (t *memTx) AdjustVacationBalance(_ context.Context, employeeID ledger.EmployeeID, delta int) error {
	return t.m.adjustVacationBalance(employeeID, delta)
}

func (m *Memory) adjustVacationBalance(employeeID ledger.EmployeeID, delta int) error {
	emp, ok := m.employees[employeeID]
	if !ok {
		return &ledger.NotFoundError{Kind: "employee", Ref: string(employeeID)}
	}
	emp.VacationDaysRemaining += delta
	m.employees[employeeID] = emp
	return nil
}

// =============================================================================
// EMPLOYEES / PROJECTS / ASSIGNMENTS
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, e ledger.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (t *memTx) SaveEmployee(_ context.Context, e ledger.Employee) error {
	t.m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id ledger.EmployeeID) (*ledger.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return getEmployee(m, id)
}

func (t *memTx) GetEmployee(_ context.Context, id ledger.EmployeeID) (*ledger.Employee, error) {
	return getEmployee(t.m, id)
}

func getEmployee(m *Memory, id ledger.EmployeeID) (*ledger.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]ledger.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listEmployees(m), nil
}

func (t *memTx) ListEmployees(_ context.Context) ([]ledger.Employee, error) {
	return listEmployees(t.m), nil
}

func listEmployees(m *Memory) []ledger.Employee {
	result := make([]ledger.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *Memory) SaveProject(_ context.Context, p ledger.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (t *memTx) SaveProject(_ context.Context, p ledger.Project) error {
	t.m.projects[p.ID] = p
	return nil
}

func (m *Memory) GetProject(_ context.Context, id ledger.ProjectID) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return getProject(m, id)
}

func (t *memTx) GetProject(_ context.Context, id ledger.ProjectID) (*ledger.Project, error) {
	return getProject(t.m, id)
}

func getProject(m *Memory, id ledger.ProjectID) (*ledger.Project, error) {
	if p, ok := m.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) GetProjectByName(_ context.Context, name string) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return getProjectByName(m, name)
}

func (t *memTx) GetProjectByName(_ context.Context, name string) (*ledger.Project, error) {
	return getProjectByName(t.m, name)
}

func getProjectByName(m *Memory, name string) (*ledger.Project, error) {
	for _, p := range m.projects {
		if strings.EqualFold(p.Name, name) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listProjects(m), nil
}

func (t *memTx) ListProjects(_ context.Context) ([]ledger.Project, error) {
	return listProjects(t.m), nil
}

func listProjects(m *Memory) []ledger.Project {
	result := make([]ledger.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *Memory) SaveAssignment(_ context.Context, a ledger.ProjectAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
	return nil
}

func (t *memTx) SaveAssignment(_ context.Context, a ledger.ProjectAssignment) error {
	t.m.assignments[a.ID] = a
	return nil
}

func (m *Memory) ListAssignments(_ context.Context, projectID ledger.ProjectID) ([]ledger.ProjectAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listAssignments(m, projectID), nil
}

func (t *memTx) ListAssignments(_ context.Context, projectID ledger.ProjectID) ([]ledger.ProjectAssignment, error) {
	return listAssignments(t.m, projectID), nil
}

func listAssignments(m *Memory, projectID ledger.ProjectID) []ledger.ProjectAssignment {
	var result []ledger.ProjectAssignment
	for _, a := range m.assignments {
		if a.ProjectID == projectID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restore(NewMemory().snapshot())
	return nil
}
