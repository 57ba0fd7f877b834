/*
service.go - Ledger write operations and the vacation balance invariant

PURPOSE:
  The Service is the single write path into the ledger. It validates
  input, applies conflict policies, and - critically - keeps the
  vacation-day counter consistent with outstanding vacation entries.

THE INVARIANT:
  VacationDaysRemaining must never drift from "count of vacation entries
  that have not been refunded". Every path that creates or deletes a
  VacationLogEntry therefore pairs the entry write with an
  AdjustVacationBalance call inside ONE WithTx unit:

    RecordVacation:      insert entry, balance -1
    DeleteVacation:      delete entry, balance +1
    BulkDeleteVacation:  delete N entries, balance +N
    ClearAllLogs:        delete all entries, balance +N

  Partial application (entries deleted, balance not updated, or vice
  versa) is a correctness bug; the store transaction prevents it.

WHAT THE SERVICE DOES NOT DO:
  - It does not gate weekend or destructive writes; the tool layer runs
    the confirmation gate before calling in (gate.go).
  - It does not floor the balance. Recording vacation with zero days
    remaining drives the counter negative on purpose.

OWNERSHIP:
  Update and delete operations verify the entry belongs to the calling
  employee and fail with UnauthorizedError otherwise.

SEE ALSO:
  - conflict.go: the policies record operations apply
  - dedup.go: duplicate work-log cleanup
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store TxStore

	// Injectable for deterministic tests.
	now   func() time.Time
	newID func() EntryID
}

func NewService(store TxStore) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() EntryID { return EntryID(uuid.NewString()) },
	}
}

// Store exposes the underlying store for read-only collaborators.
func (s *Service) Store() Store { return s.store }

// =============================================================================
// RESULTS
// =============================================================================

// WorkResult is the outcome of a work record operation. Exactly one of
// Entry, Conflict, or Ignored is meaningful.
type WorkResult struct {
	Entry    *WorkLogEntry
	Conflict *Conflict
	Merged   bool
	Ignored  bool
}

// VacationResult is the outcome of a vacation record operation.
type VacationResult struct {
	Entry    *VacationLogEntry
	Conflict *Conflict
	Ignored  bool
}

// =============================================================================
// WORK LOG OPERATIONS
// =============================================================================

// RecordWork records hours for an employee on a project and day, applying
// the given conflict policy when an entry already exists at that key.
func (s *Service) RecordWork(ctx context.Context, employeeID EmployeeID, projectID ProjectID, date Day, hours decimal.Decimal, action ConflictAction) (*WorkResult, error) {
	if err := CheckHours(hours); err != nil {
		return nil, err
	}
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindWorkLogs(ctx, WorkLogFilter{
		EmployeeID: employeeID, ProjectID: projectID, Date: &date,
	})
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		switch action {
		case ConflictReject:
			return &WorkResult{Conflict: &Conflict{
				ExistingID:    existing[0].ID,
				ExistingHours: existing[0].Hours,
				Date:          date,
			}}, nil

		case ConflictIgnore:
			return &WorkResult{Ignored: true}, nil

		case ConflictMerge:
			merged := existing[0]
			merged.Hours = merged.Hours.Add(hours)
			if err := s.store.UpdateWorkLog(ctx, merged); err != nil {
				return nil, err
			}
			return &WorkResult{Entry: &merged, Merged: true}, nil

		case ConflictAdd:
			// Fall through to insert a second independent entry.
		}
	}

	entry := WorkLogEntry{
		ID:         s.newID(),
		EmployeeID: employeeID,
		ProjectID:  projectID,
		Date:       date,
		Hours:      hours,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertWorkLog(ctx, entry); err != nil {
		return nil, err
	}
	return &WorkResult{Entry: &entry}, nil
}

// UpdateWork changes the hours and/or date of an existing entry.
func (s *Service) UpdateWork(ctx context.Context, employeeID EmployeeID, id EntryID, hours *decimal.Decimal, date *Day) (*WorkLogEntry, error) {
	entry, err := s.ownedWorkLog(ctx, employeeID, id)
	if err != nil {
		return nil, err
	}
	if hours != nil {
		if err := CheckHours(*hours); err != nil {
			return nil, err
		}
		entry.Hours = *hours
	}
	if date != nil {
		entry.Date = *date
	}
	if err := s.store.UpdateWorkLog(ctx, *entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteWork removes a single work entry.
func (s *Service) DeleteWork(ctx context.Context, employeeID EmployeeID, id EntryID) error {
	if _, err := s.ownedWorkLog(ctx, employeeID, id); err != nil {
		return err
	}
	return s.store.DeleteWorkLog(ctx, id)
}

// FindWorkByKey returns the entries at (employee, project, date). Used by
// the tool layer to resolve "the entry on that day" references.
func (s *Service) FindWorkByKey(ctx context.Context, employeeID EmployeeID, projectID ProjectID, date Day) ([]WorkLogEntry, error) {
	return s.store.FindWorkLogs(ctx, WorkLogFilter{
		EmployeeID: employeeID, ProjectID: projectID, Date: &date,
	})
}

// ListRecent returns the employee's newest work entries.
func (s *Service) ListRecent(ctx context.Context, employeeID EmployeeID, limit int) ([]WorkLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.RecentWorkLogs(ctx, employeeID, limit)
}

// =============================================================================
// BULK WORK OPERATIONS
// =============================================================================

// BulkRecordWork creates one entry per candidate day. Days that already
// hold an entry for the same (employee, project, date) are skipped rather
// than duplicated; the skip count is reported back to the caller. All
// inserts commit in one transaction.
func (s *Service) BulkRecordWork(ctx context.Context, employeeID EmployeeID, projectID ProjectID, days []Day, hoursPerDay decimal.Decimal) (created, skipped int, err error) {
	if err := CheckHours(hoursPerDay); err != nil {
		return 0, 0, err
	}
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return 0, 0, err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		for _, day := range days {
			d := day
			existing, err := tx.FindWorkLogs(ctx, WorkLogFilter{
				EmployeeID: employeeID, ProjectID: projectID, Date: &d,
			})
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				skipped++
				continue
			}
			if err := tx.InsertWorkLog(ctx, WorkLogEntry{
				ID:         s.newID(),
				EmployeeID: employeeID,
				ProjectID:  projectID,
				Date:       d,
				Hours:      hoursPerDay,
				CreatedAt:  s.now(),
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, skipped, nil
}

// BulkUpdateWork sets the hours on every entry matching the filter.
// projectID and r are optional narrowing criteria.
func (s *Service) BulkUpdateWork(ctx context.Context, employeeID EmployeeID, projectID ProjectID, r *DateRange, hours decimal.Decimal) (int, error) {
	if err := CheckHours(hours); err != nil {
		return 0, err
	}
	entries, err := s.findInRange(ctx, employeeID, projectID, r)
	if err != nil {
		return 0, err
	}

	updated := 0
	err = s.store.WithTx(ctx, func(tx Store) error {
		for _, e := range entries {
			e.Hours = hours
			if err := tx.UpdateWorkLog(ctx, e); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// BulkDeleteWork removes every work entry in the range, optionally
// narrowed to one project. The caller must have passed the confirmation
// gate before invoking this.
func (s *Service) BulkDeleteWork(ctx context.Context, employeeID EmployeeID, projectID ProjectID, r DateRange) (int, error) {
	entries, err := s.findInRange(ctx, employeeID, projectID, &r)
	if err != nil {
		return 0, err
	}

	deleted := 0
	err = s.store.WithTx(ctx, func(tx Store) error {
		for _, e := range entries {
			if err := tx.DeleteWorkLog(ctx, e.ID); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Service) findInRange(ctx context.Context, employeeID EmployeeID, projectID ProjectID, r *DateRange) ([]WorkLogEntry, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	f := WorkLogFilter{EmployeeID: employeeID, ProjectID: projectID}
	if r != nil {
		f.From = &r.Start
		f.To = &r.End
	}
	return s.store.FindWorkLogs(ctx, f)
}

// =============================================================================
// VACATION OPERATIONS - Entry write and balance delta share one transaction
// =============================================================================

// RecordVacation records a vacation day and decrements the balance by 1 in
// the same atomic unit. No floor check: the balance may go negative.
func (s *Service) RecordVacation(ctx context.Context, employeeID EmployeeID, date Day, action ConflictAction) (*VacationResult, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindVacationLogs(ctx, VacationLogFilter{EmployeeID: employeeID, Date: &date})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		switch action {
		case ConflictReject:
			return &VacationResult{Conflict: &Conflict{ExistingID: existing[0].ID, Date: date}}, nil
		case ConflictIgnore:
			return &VacationResult{Ignored: true}, nil
		case ConflictAdd:
			// Accepted duplication: insert a second entry below.
		}
	}

	entry := VacationLogEntry{
		ID:         s.newID(),
		EmployeeID: employeeID,
		Date:       date,
		CreatedAt:  s.now(),
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.InsertVacationLog(ctx, entry); err != nil {
			return err
		}
		return tx.AdjustVacationBalance(ctx, employeeID, -1)
	})
	if err != nil {
		return nil, err
	}
	return &VacationResult{Entry: &entry}, nil
}

// DeleteVacation removes one vacation entry and refunds the balance by 1.
func (s *Service) DeleteVacation(ctx context.Context, employeeID EmployeeID, id EntryID) error {
	entries, err := s.store.FindVacationLogs(ctx, VacationLogFilter{EmployeeID: employeeID})
	if err != nil {
		return err
	}
	var found *VacationLogEntry
	for i := range entries {
		if entries[i].ID == id {
			found = &entries[i]
			break
		}
	}
	if found == nil {
		return &NotFoundError{Kind: "vacation log", Ref: string(id)}
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.DeleteVacationLog(ctx, id); err != nil {
			return err
		}
		return tx.AdjustVacationBalance(ctx, employeeID, 1)
	})
}

// DeleteVacationOn removes every vacation entry on the given day and
// refunds the balance by the number removed, atomically.
func (s *Service) DeleteVacationOn(ctx context.Context, employeeID EmployeeID, date Day) (int, error) {
	entries, err := s.store.FindVacationLogs(ctx, VacationLogFilter{EmployeeID: employeeID, Date: &date})
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, &NotFoundError{Kind: "vacation log", Ref: date.String()}
	}
	return len(entries), s.refundAndDelete(ctx, employeeID, entries)
}

// BulkDeleteVacation removes every vacation entry in the range and refunds
// the balance by exactly that count in the same transaction.
func (s *Service) BulkDeleteVacation(ctx context.Context, employeeID EmployeeID, r DateRange) (int, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return 0, err
	}
	entries, err := s.store.FindVacationLogs(ctx, VacationLogFilter{
		EmployeeID: employeeID, From: &r.Start, To: &r.End,
	})
	if err != nil {
		return 0, err
	}
	return len(entries), s.refundAndDelete(ctx, employeeID, entries)
}

func (s *Service) refundAndDelete(ctx context.Context, employeeID EmployeeID, entries []VacationLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.store.WithTx(ctx, func(tx Store) error {
		for _, e := range entries {
			if err := tx.DeleteVacationLog(ctx, e.ID); err != nil {
				return err
			}
		}
		return tx.AdjustVacationBalance(ctx, employeeID, len(entries))
	})
}

// =============================================================================
// CLEAR ALL - Full reset for one employee
// =============================================================================

// ClearAllLogs deletes every work and vacation entry for the employee and
// refunds the balance by the number of vacation entries removed, all in
// one transaction.
func (s *Service) ClearAllLogs(ctx context.Context, employeeID EmployeeID) (workDeleted, vacationDeleted int, err error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return 0, 0, err
	}
	work, err := s.store.FindWorkLogs(ctx, WorkLogFilter{EmployeeID: employeeID})
	if err != nil {
		return 0, 0, err
	}
	vacation, err := s.store.FindVacationLogs(ctx, VacationLogFilter{EmployeeID: employeeID})
	if err != nil {
		return 0, 0, err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		for _, e := range work {
			if err := tx.DeleteWorkLog(ctx, e.ID); err != nil {
				return err
			}
		}
		for _, e := range vacation {
			if err := tx.DeleteVacationLog(ctx, e.ID); err != nil {
				return err
			}
		}
		if len(vacation) > 0 {
			return tx.AdjustVacationBalance(ctx, employeeID, len(vacation))
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(work), len(vacation), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) checkEmployee(ctx context.Context, id EmployeeID) error {
	emp, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if emp == nil {
		return &NotFoundError{Kind: "employee", Ref: string(id)}
	}
	return nil
}

func (s *Service) ownedWorkLog(ctx context.Context, employeeID EmployeeID, id EntryID) (*WorkLogEntry, error) {
	entry, err := s.store.GetWorkLog(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &NotFoundError{Kind: "work log", Ref: string(id)}
	}
	if entry.EmployeeID != employeeID {
		return nil, &UnauthorizedError{EmployeeID: employeeID, OwnerID: entry.EmployeeID}
	}
	return entry, nil
}
