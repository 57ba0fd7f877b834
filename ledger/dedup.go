/*
dedup.go - Duplicate work-log cleanup

PURPOSE:
  The conflict policy "add" and plain bookkeeping mistakes can leave more
  than one work entry at the same (project, date) key. The deduplicator
  sweeps a range, keeps exactly one entry per key, and deletes the rest.

KEEP POLICY:
  Keep the earliest-created entry (ties broken by smallest ID). Arbitrary
  but deterministic: running the sweep twice removes nothing the second
  time.

BALANCE:
  Duplicates are a work-hour bookkeeping defect only. The sweep never
  touches VacationDaysRemaining.
*/
package ledger

import (
	"context"
	"sort"
)

type dedupKey struct {
	ProjectID ProjectID
	Date      string
}

// DeduplicateWork removes redundant work entries for the employee within
// [from, to] (all time when both are nil) and returns the count removed.
func (s *Service) DeduplicateWork(ctx context.Context, employeeID EmployeeID, from, to *Day) (int, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return 0, err
	}

	entries, err := s.store.FindWorkLogs(ctx, WorkLogFilter{EmployeeID: employeeID, From: from, To: to})
	if err != nil {
		return 0, err
	}

	groups := make(map[dedupKey][]WorkLogEntry)
	for _, e := range entries {
		k := dedupKey{ProjectID: e.ProjectID, Date: e.Date.String()}
		groups[k] = append(groups[k], e)
	}

	var doomed []EntryID
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})
		for _, e := range group[1:] {
			doomed = append(doomed, e.ID)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		for _, id := range doomed {
			if err := tx.DeleteWorkLog(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(doomed), nil
}
