/*
Package sqlite provides a SQLite-backed implementation of the ledger
storage interfaces.

PURPOSE:
  Implements ledger.Store and ledger.TxStore using SQLite. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  employees:     identity, monthly cost, vacation-day counter
  projects:      pricing, dates, fixed costs
  assignments:   planned employee allocations feeding the projection
  work_logs:     work-hour entries (duplicates representable by design)
  vacation_logs: vacation-day entries

THE BALANCE COLUMN:
  employees.vacation_days_remaining is updated ONLY via
    UPDATE employees SET vacation_days_remaining =
      vacation_days_remaining + ? WHERE id = ?
  i.e. an atomic in-database increment. Application code never reads the
  counter and writes it back, so concurrent requests cannot lose updates.

TRANSACTIONS:
  WithTx wraps a closure in BEGIN/COMMIT. The ledger service uses it to
  couple vacation entry writes with the balance delta, and to make bulk
  operations all-or-nothing.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/ledger-engine/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		monthly_cost TEXT NOT NULL DEFAULT '0',
		vacation_days_remaining INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		payment_type TEXT NOT NULL,
		total_price TEXT NOT NULL DEFAULT '0',
		hourly_rate TEXT NOT NULL DEFAULT '0',
		fixed_monthly_costs TEXT NOT NULL DEFAULT '0',
		fixed_total_costs TEXT NOT NULL DEFAULT '0',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Case-insensitive name resolution for the tool layer
	CREATE INDEX IF NOT EXISTS idx_projects_name
		ON projects(name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		daily_hours TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_project
		ON assignments(project_id);

	CREATE TABLE IF NOT EXISTS work_logs (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- NOTE: no unique index on (employee_id, project_id, date).
	-- Duplicate entries are representable; uniqueness is a policy
	-- enforced by the conflict resolver and the deduplicator.
	CREATE INDEX IF NOT EXISTS idx_work_logs_employee_date
		ON work_logs(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_work_logs_employee_project_date
		ON work_logs(employee_id, project_id, date);
	CREATE INDEX IF NOT EXISTS idx_work_logs_project
		ON work_logs(project_id);

	CREATE TABLE IF NOT EXISTS vacation_logs (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vacation_logs_employee_date
		ON vacation_logs(employee_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same helpers serve
// direct calls and WithTx closures.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONS (ledger.TxStore)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ledger.ErrPersistence, err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{db: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit failed: %v", ledger.ErrPersistence, err)
	}
	return nil
}

// txStore routes every Store method through the open *sql.Tx. The
// enclosing WithTx holds the store mutex for the whole unit.
type txStore struct {
	db *sql.Tx
}

func (t *txStore) InsertWorkLog(ctx context.Context, e ledger.WorkLogEntry) error {
	return insertWorkLog(ctx, t.db, e)
}
func (t *txStore) UpdateWorkLog(ctx context.Context, e ledger.WorkLogEntry) error {
	return updateWorkLog(ctx, t.db, e)
}
func (t *txStore) DeleteWorkLog(ctx context.Context, id ledger.EntryID) error {
	return deleteWorkLog(ctx, t.db, id)
}
func (t *txStore) GetWorkLog(ctx context.Context, id ledger.EntryID) (*ledger.WorkLogEntry, error) {
	return getWorkLog(ctx, t.db, id)
}
func (t *txStore) FindWorkLogs(ctx context.Context, f ledger.WorkLogFilter) ([]ledger.WorkLogEntry, error) {
	return findWorkLogs(ctx, t.db, f)
}
func (t *txStore) RecentWorkLogs(ctx context.Context, employeeID ledger.EmployeeID, limit int) ([]ledger.WorkLogEntry, error) {
	return recentWorkLogs(ctx, t.db, employeeID, limit)
}
func (t *txStore) InsertVacationLog(ctx context.Context, e ledger.VacationLogEntry) error {
	return insertVacationLog(ctx, t.db, e)
}
func (t *txStore) DeleteVacationLog(ctx context.Context, id ledger.EntryID) error {
	return deleteVacationLog(ctx, t.db, id)
}
func (t *txStore) FindVacationLogs(ctx context.Context, f ledger.VacationLogFilter) ([]ledger.VacationLogEntry, error) {
	return findVacationLogs(ctx, t.db, f)
}
func (t *txStore) AdjustVacationBalance(ctx context.Context, employeeID ledger.EmployeeID, delta int) error {
	return adjustVacationBalance(ctx, t.db, employeeID, delta)
}
func (t *txStore) SaveEmployee(ctx context.Context, e ledger.Employee) error {
	return saveEmployee(ctx, t.db, e)
}
func (t *txStore) GetEmployee(ctx context.Context, id ledger.EmployeeID) (*ledger.Employee, error) {
	return getEmployee(ctx, t.db, id)
}
func (t *txStore) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	return listEmployees(ctx, t.db)
}
func (t *txStore) SaveProject(ctx context.Context, p ledger.Project) error {
	return saveProject(ctx, t.db, p)
}
func (t *txStore) GetProject(ctx context.Context, id ledger.ProjectID) (*ledger.Project, error) {
	return getProject(ctx, t.db, id)
}
func (t *txStore) GetProjectByName(ctx context.Context, name string) (*ledger.Project, error) {
	return getProjectByName(ctx, t.db, name)
}
func (t *txStore) ListProjects(ctx context.Context) ([]ledger.Project, error) {
	return listProjects(ctx, t.db)
}
func (t *txStore) SaveAssignment(ctx context.Context, a ledger.ProjectAssignment) error {
	return saveAssignment(ctx, t.db, a)
}
func (t *txStore) ListAssignments(ctx context.Context, projectID ledger.ProjectID) ([]ledger.ProjectAssignment, error) {
	return listAssignments(ctx, t.db, projectID)
}

// =============================================================================
// WORK LOGS
// =============================================================================

func (s *Store) InsertWorkLog(ctx context.Context, e ledger.WorkLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertWorkLog(ctx, s.db, e)
}

func insertWorkLog(ctx context.Context, db dbtx, e ledger.WorkLogEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO work_logs (id, employee_id, project_id, date, hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.EmployeeID, e.ProjectID, e.Date.String(), e.Hours.String(),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert work log: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) UpdateWorkLog(ctx context.Context, e ledger.WorkLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateWorkLog(ctx, s.db, e)
}

func updateWorkLog(ctx context.Context, db dbtx, e ledger.WorkLogEntry) error {
	res, err := db.ExecContext(ctx, `
		UPDATE work_logs SET date = ?, hours = ? WHERE id = ?`,
		e.Date.String(), e.Hours.String(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update work log: %v", ledger.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "work log", Ref: string(e.ID)}
	}
	return nil
}

func (s *Store) DeleteWorkLog(ctx context.Context, id ledger.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteWorkLog(ctx, s.db, id)
}

func deleteWorkLog(ctx context.Context, db dbtx, id ledger.EntryID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM work_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete work log: %v", ledger.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "work log", Ref: string(id)}
	}
	return nil
}

const workLogSelect = `
	SELECT id, employee_id, project_id, date, hours, created_at
	FROM work_logs`

func (s *Store) GetWorkLog(ctx context.Context, id ledger.EntryID) (*ledger.WorkLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getWorkLog(ctx, s.db, id)
}

func getWorkLog(ctx context.Context, db dbtx, id ledger.EntryID) (*ledger.WorkLogEntry, error) {
	rows, err := db.QueryContext(ctx, workLogSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	entries, err := scanWorkLogs(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) FindWorkLogs(ctx context.Context, f ledger.WorkLogFilter) ([]ledger.WorkLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findWorkLogs(ctx, s.db, f)
}

func findWorkLogs(ctx context.Context, db dbtx, f ledger.WorkLogFilter) ([]ledger.WorkLogEntry, error) {
	query := workLogSelect + " WHERE 1=1"
	var args []any

	if f.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, f.EmployeeID)
	}
	if f.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, f.ProjectID)
	}
	if f.Date != nil {
		query += " AND date = ?"
		args = append(args, f.Date.String())
	}
	if f.From != nil {
		query += " AND date >= ?"
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += " AND date <= ?"
		args = append(args, f.To.String())
	}
	query += " ORDER BY date ASC, created_at ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()
	return scanWorkLogs(rows)
}

func (s *Store) RecentWorkLogs(ctx context.Context, employeeID ledger.EmployeeID, limit int) ([]ledger.WorkLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recentWorkLogs(ctx, s.db, employeeID, limit)
}

func recentWorkLogs(ctx context.Context, db dbtx, employeeID ledger.EmployeeID, limit int) ([]ledger.WorkLogEntry, error) {
	rows, err := db.QueryContext(ctx,
		workLogSelect+` WHERE employee_id = ?
		ORDER BY date DESC, created_at DESC, id DESC LIMIT ?`,
		employeeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()
	return scanWorkLogs(rows)
}

func scanWorkLogs(rows *sql.Rows) ([]ledger.WorkLogEntry, error) {
	var entries []ledger.WorkLogEntry
	for rows.Next() {
		var (
			e         ledger.WorkLogEntry
			date      string
			hours     string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.ProjectID, &date, &hours, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan work log: %v", ledger.ErrPersistence, err)
		}
		e.Date, _ = ledger.ParseDay(date)
		e.Hours = mustDecimal(hours)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// VACATION LOGS
// =============================================================================

func (s *Store) InsertVacationLog(ctx context.Context, e ledger.VacationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertVacationLog(ctx, s.db, e)
}

func insertVacationLog(ctx context.Context, db dbtx, e ledger.VacationLogEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO vacation_logs (id, employee_id, date, created_at)
		VALUES (?, ?, ?, ?)`,
		e.ID, e.EmployeeID, e.Date.String(), e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert vacation log: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) DeleteVacationLog(ctx context.Context, id ledger.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteVacationLog(ctx, s.db, id)
}

func deleteVacationLog(ctx context.Context, db dbtx, id ledger.EntryID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM vacation_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete vacation log: %v", ledger.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "vacation log", Ref: string(id)}
	}
	return nil
}

func (s *Store) FindVacationLogs(ctx context.Context, f ledger.VacationLogFilter) ([]ledger.VacationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findVacationLogs(ctx, s.db, f)
}

func findVacationLogs(ctx context.Context, db dbtx, f ledger.VacationLogFilter) ([]ledger.VacationLogEntry, error) {
	query := `SELECT id, employee_id, date, created_at FROM vacation_logs WHERE 1=1`
	var args []any

	if f.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, f.EmployeeID)
	}
	if f.Date != nil {
		query += " AND date = ?"
		args = append(args, f.Date.String())
	}
	if f.From != nil {
		query += " AND date >= ?"
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += " AND date <= ?"
		args = append(args, f.To.String())
	}
	query += " ORDER BY date ASC, created_at ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var entries []ledger.VacationLogEntry
	for rows.Next() {
		var (
			e         ledger.VacationLogEntry
			date      string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan vacation log: %v", ledger.ErrPersistence, err)
		}
		e.Date, _ = ledger.ParseDay(date)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// BALANCE - atomic in-database increment, never read-modify-write
// =============================================================================

func (s *Store) AdjustVacationBalance(ctx context.Context, employeeID ledger.EmployeeID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return adjustVacationBalance(ctx, s.db, employeeID, delta)
}

func adjustVacationBalance(ctx context.Context, db dbtx, employeeID ledger.EmployeeID, delta int) error {
	res, err := db.ExecContext(ctx, `
		UPDATE employees
		SET vacation_days_remaining = vacation_days_remaining + ?
		WHERE id = ?`,
		delta, employeeID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to adjust vacation balance: %v", ledger.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "employee", Ref: string(employeeID)}
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e ledger.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveEmployee(ctx, s.db, e)
}

func saveEmployee(ctx context.Context, db dbtx, e ledger.Employee) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	// Balance updates go through AdjustVacationBalance; a re-save of an
	// existing employee must not clobber the counter.
	_, err := db.ExecContext(ctx, `
		INSERT INTO employees (id, name, monthly_cost, vacation_days_remaining, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			monthly_cost = excluded.monthly_cost`,
		e.ID, e.Name, e.MonthlyCost.String(), e.VacationDaysRemaining,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save employee: %v", ledger.ErrPersistence, err)
	}
	return nil
}

const employeeSelect = `
	SELECT id, name, monthly_cost, vacation_days_remaining, created_at
	FROM employees`

func (s *Store) GetEmployee(ctx context.Context, id ledger.EmployeeID) (*ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, id)
}

func getEmployee(ctx context.Context, db dbtx, id ledger.EmployeeID) (*ledger.Employee, error) {
	var (
		e           ledger.Employee
		monthlyCost string
		createdAt   string
	)
	err := db.QueryRowContext(ctx, employeeSelect+" WHERE id = ?", id).
		Scan(&e.ID, &e.Name, &monthlyCost, &e.VacationDaysRemaining, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	e.MonthlyCost = mustDecimal(monthlyCost)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEmployees(ctx, s.db)
}

func listEmployees(ctx context.Context, db dbtx) ([]ledger.Employee, error) {
	rows, err := db.QueryContext(ctx, employeeSelect+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var employees []ledger.Employee
	for rows.Next() {
		var (
			e           ledger.Employee
			monthlyCost string
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.Name, &monthlyCost, &e.VacationDaysRemaining, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan employee: %v", ledger.ErrPersistence, err)
		}
		e.MonthlyCost = mustDecimal(monthlyCost)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) SaveProject(ctx context.Context, p ledger.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProject(ctx, s.db, p)
}

func saveProject(ctx context.Context, db dbtx, p ledger.Project) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (id, name, start_date, end_date, payment_type,
			total_price, hourly_rate, fixed_monthly_costs, fixed_total_costs, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			payment_type = excluded.payment_type,
			total_price = excluded.total_price,
			hourly_rate = excluded.hourly_rate,
			fixed_monthly_costs = excluded.fixed_monthly_costs,
			fixed_total_costs = excluded.fixed_total_costs,
			active = excluded.active`,
		p.ID, p.Name, p.Start.String(), nullDay(p.End), p.PaymentType,
		p.TotalPrice.String(), p.HourlyRate.String(),
		p.FixedMonthlyCosts.String(), p.FixedTotalCosts.String(),
		p.Active, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save project: %v", ledger.ErrPersistence, err)
	}
	return nil
}

const projectSelect = `
	SELECT id, name, start_date, end_date, payment_type,
	       total_price, hourly_rate, fixed_monthly_costs, fixed_total_costs, active, created_at
	FROM projects`

func (s *Store) GetProject(ctx context.Context, id ledger.ProjectID) (*ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProject(ctx, s.db, id)
}

func getProject(ctx context.Context, db dbtx, id ledger.ProjectID) (*ledger.Project, error) {
	return queryOneProject(ctx, db, projectSelect+" WHERE id = ?", id)
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (*ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProjectByName(ctx, s.db, name)
}

func getProjectByName(ctx context.Context, db dbtx, name string) (*ledger.Project, error) {
	return queryOneProject(ctx, db, projectSelect+" WHERE name = ? COLLATE NOCASE", name)
}

func queryOneProject(ctx context.Context, db dbtx, query string, args ...any) (*ledger.Project, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return &projects[0], nil
}

func (s *Store) ListProjects(ctx context.Context) ([]ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProjects(ctx, s.db)
}

func listProjects(ctx context.Context, db dbtx) ([]ledger.Project, error) {
	rows, err := db.QueryContext(ctx, projectSelect+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()
	return scanProjects(rows)
}

func scanProjects(rows *sql.Rows) ([]ledger.Project, error) {
	var projects []ledger.Project
	for rows.Next() {
		var (
			p                 ledger.Project
			startDate         string
			endDate           sql.NullString
			totalPrice        string
			hourlyRate        string
			fixedMonthlyCosts string
			fixedTotalCosts   string
			createdAt         string
		)
		if err := rows.Scan(&p.ID, &p.Name, &startDate, &endDate, &p.PaymentType,
			&totalPrice, &hourlyRate, &fixedMonthlyCosts, &fixedTotalCosts,
			&p.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan project: %v", ledger.ErrPersistence, err)
		}
		p.Start, _ = ledger.ParseDay(startDate)
		if endDate.Valid {
			d, _ := ledger.ParseDay(endDate.String)
			p.End = &d
		}
		p.TotalPrice = mustDecimal(totalPrice)
		p.HourlyRate = mustDecimal(hourlyRate)
		p.FixedMonthlyCosts = mustDecimal(fixedMonthlyCosts)
		p.FixedTotalCosts = mustDecimal(fixedTotalCosts)
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, a ledger.ProjectAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveAssignment(ctx, s.db, a)
}

func saveAssignment(ctx context.Context, db dbtx, a ledger.ProjectAssignment) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO assignments (id, employee_id, project_id, daily_hours, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			daily_hours = excluded.daily_hours,
			start_date = excluded.start_date,
			end_date = excluded.end_date`,
		a.ID, a.EmployeeID, a.ProjectID, a.DailyHours.String(),
		a.Start.String(), nullDay(a.End), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save assignment: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, projectID ledger.ProjectID) ([]ledger.ProjectAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAssignments(ctx, s.db, projectID)
}

func listAssignments(ctx context.Context, db dbtx, projectID ledger.ProjectID) ([]ledger.ProjectAssignment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, project_id, daily_hours, start_date, end_date, created_at
		FROM assignments WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var assignments []ledger.ProjectAssignment
	for rows.Next() {
		var (
			a          ledger.ProjectAssignment
			dailyHours string
			startDate  string
			endDate    sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ProjectID, &dailyHours,
			&startDate, &endDate, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan assignment: %v", ledger.ErrPersistence, err)
		}
		a.DailyHours = mustDecimal(dailyHours)
		a.Start, _ = ledger.ParseDay(startDate)
		if endDate.Valid {
			d, _ := ledger.ParseDay(endDate.String)
			a.End = &d
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"work_logs", "vacation_logs", "assignments", "projects", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: failed to reset %s: %v", ledger.ErrPersistence, table, err)
		}
	}
	return nil
}

// nullDay converts an optional day to a nullable column value.
func nullDay(d *ledger.Day) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
