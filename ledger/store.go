/*
store.go - Persistence interfaces for the ledger

PURPOSE:
  Defines the interface between the ledger service and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store:   entry, employee, project and assignment persistence
  TxStore: Store plus WithTx for atomic multi-write units

THE ATOMIC UNIT:
  Every code path that creates or deletes a VacationLogEntry MUST call
  AdjustVacationBalance inside the same WithTx closure as the entry write.
  AdjustVacationBalance is an atomic increment at the store level (SQL
  "SET x = x + ?"), never an application-level read-modify-write, so two
  concurrent requests against the same employee cannot lose an update.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - ledger/store/memory.go: in-memory for testing

SEE ALSO:
  - service.go: the only consumer of WithTx
*/
package ledger

import "context"

// =============================================================================
// FILTERS
// =============================================================================

// WorkLogFilter selects work entries. Zero values mean "any".
type WorkLogFilter struct {
	EmployeeID EmployeeID
	ProjectID  ProjectID
	From       *Day
	To         *Day
	Date       *Day
}

// VacationLogFilter selects vacation entries. Zero values mean "any".
type VacationLogFilter struct {
	EmployeeID EmployeeID
	From       *Day
	To         *Day
	Date       *Day
}

// =============================================================================
// STORE
// =============================================================================

// Store handles persistence for the ledger.
//
// Ordering contract: FindWorkLogs and FindVacationLogs return entries
// ordered by (date ASC, created_at ASC, id ASC). RecentWorkLogs returns
// the newest entries first. Deterministic ordering matters: the
// deduplicator's keep-one choice depends on it.
type Store interface {
	// Work logs
	InsertWorkLog(ctx context.Context, e WorkLogEntry) error
	UpdateWorkLog(ctx context.Context, e WorkLogEntry) error
	DeleteWorkLog(ctx context.Context, id EntryID) error
	GetWorkLog(ctx context.Context, id EntryID) (*WorkLogEntry, error)
	FindWorkLogs(ctx context.Context, f WorkLogFilter) ([]WorkLogEntry, error)
	RecentWorkLogs(ctx context.Context, employeeID EmployeeID, limit int) ([]WorkLogEntry, error)

	// Vacation logs
	InsertVacationLog(ctx context.Context, e VacationLogEntry) error
	DeleteVacationLog(ctx context.Context, id EntryID) error
	FindVacationLogs(ctx context.Context, f VacationLogFilter) ([]VacationLogEntry, error)

	// AdjustVacationBalance applies an atomic delta to the employee's
	// vacation-day counter. Fails with NotFoundError when the employee
	// does not exist. No floor: the counter may go negative.
	AdjustVacationBalance(ctx context.Context, employeeID EmployeeID, delta int) error

	// Employees
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// Projects
	SaveProject(ctx context.Context, p Project) error
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	// GetProjectByName matches case-insensitively on the display name.
	GetProjectByName(ctx context.Context, name string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)

	// Assignments
	SaveAssignment(ctx context.Context, a ProjectAssignment) error
	ListAssignments(ctx context.Context, projectID ProjectID) ([]ProjectAssignment, error)
}

// TxStore wraps Store with transaction support.
//
// WithTx executes fn within one atomic unit. If fn returns an error the
// unit is rolled back; otherwise it is committed. The Store passed to fn
// must be used for every write inside the unit.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
