/*
toolset.go - The tool operations and the Invoke registry

PURPOSE:
  One method per driver capability, each following the same shape:
  validate -> resolve references -> run the confirmation gate -> delegate
  to the ledger service -> map the result onto a tagged Outcome.

THE GATE LIVES HERE:
  The ledger service is confirmation-agnostic. Weekend checks, unskipped
  weekend ranges, and bulk deletes are gated in this layer, BEFORE the
  service is called, so a blocked operation provably writes nothing.

INVOKE:
  Invoke(ctx, name, rawJSON) is the single wire entry point: it decodes
  the operation's parameter record and dispatches. Unknown operations and
  malformed bodies come back as error outcomes, never as panics.
*/
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/warp/ledger-engine/ledger"
)

// Toolset exposes every driver capability over a ledger service.
type Toolset struct {
	svc *ledger.Service
}

func New(svc *ledger.Service) *Toolset {
	return &Toolset{svc: svc}
}

// =============================================================================
// INVOKE - Wire dispatch
// =============================================================================

// Invoke decodes raw parameters for the named operation and runs it.
func (t *Toolset) Invoke(ctx context.Context, name string, raw json.RawMessage) Outcome {
	switch name {
	case "recordWork":
		return dispatch(ctx, raw, t.RecordWork)
	case "recordVacation":
		return dispatch(ctx, raw, t.RecordVacation)
	case "bulkRecordWork":
		return dispatch(ctx, raw, t.BulkRecordWork)
	case "updateWork":
		return dispatch(ctx, raw, t.UpdateWork)
	case "bulkUpdateWork":
		return dispatch(ctx, raw, t.BulkUpdateWork)
	case "deleteWork":
		return dispatch(ctx, raw, t.DeleteWork)
	case "bulkDeleteWork":
		return dispatch(ctx, raw, t.BulkDeleteWork)
	case "deleteVacation":
		return dispatch(ctx, raw, t.DeleteVacation)
	case "bulkDeleteVacation":
		return dispatch(ctx, raw, t.BulkDeleteVacation)
	case "deduplicateWork":
		return dispatch(ctx, raw, t.DeduplicateWork)
	case "clearAllLogs":
		return dispatch(ctx, raw, t.ClearAllLogs)
	case "listRecentWork":
		return dispatch(ctx, raw, t.ListRecentWork)
	default:
		return Outcome{Status: StatusError, Message: fmt.Sprintf("unknown operation %q", name)}
	}
}

func dispatch[P any](ctx context.Context, raw json.RawMessage, fn func(context.Context, P) Outcome) Outcome {
	var p P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return Outcome{Status: StatusError, Message: "malformed parameters: " + err.Error()}
		}
	}
	return fn(ctx, p)
}

// =============================================================================
// SINGLE-ENTRY WRITES
// =============================================================================

// RecordWork records hours on a project and day. Weekend dates are gated;
// an occupied (project, date) key surfaces as a conflict outcome unless a
// conflict action says otherwise.
func (t *Toolset) RecordWork(ctx context.Context, p RecordWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	date, err := parseDate(p.Date, "date")
	if err != nil {
		return failure(err)
	}
	action, err := ledger.ParseConflictAction(p.ConflictAction, false)
	if err != nil {
		return failure(err)
	}
	project, err := resolveProject(ctx, t.svc.Store(), p.Project)
	if err != nil {
		return failure(err)
	}

	if d := ledger.CheckSingleDate("work hours", date, p.Confirmed); d.RequiresConfirmation {
		return confirmationRequired(d)
	}

	res, err := t.svc.RecordWork(ctx, employeeID, project.ID, date, p.Hours, action)
	if err != nil {
		return failure(err)
	}

	switch {
	case res.Conflict != nil:
		return Outcome{
			Status:        StatusConflict,
			Message:       res.Conflict.Message("work entry"),
			ExistingID:    string(res.Conflict.ExistingID),
			ExistingHours: &res.Conflict.ExistingHours,
		}
	case res.Ignored:
		return success("kept the existing entry on %s unchanged", date)
	case res.Merged:
		out := success("merged into the existing entry on %s - now %sh on %s", date, res.Entry.Hours, project.Name)
		out.EntryID = string(res.Entry.ID)
		return out
	default:
		out := success("recorded %sh on %s for %s", res.Entry.Hours, date, project.Name)
		out.EntryID = string(res.Entry.ID)
		return out
	}
}

// RecordVacation records one vacation day and decrements the balance.
func (t *Toolset) RecordVacation(ctx context.Context, p RecordVacationParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	date, err := parseDate(p.Date, "date")
	if err != nil {
		return failure(err)
	}
	action, err := ledger.ParseConflictAction(p.ConflictAction, true)
	if err != nil {
		return failure(err)
	}

	if d := ledger.CheckSingleDate("vacation", date, p.Confirmed); d.RequiresConfirmation {
		return confirmationRequired(d)
	}

	res, err := t.svc.RecordVacation(ctx, employeeID, date, action)
	if err != nil {
		return failure(err)
	}

	switch {
	case res.Conflict != nil:
		return Outcome{
			Status:     StatusConflict,
			Message:    res.Conflict.Message("vacation day"),
			ExistingID: string(res.Conflict.ExistingID),
		}
	case res.Ignored:
		return success("vacation on %s was already recorded - nothing changed", date)
	default:
		out := success("recorded vacation on %s and deducted one day from the balance", date)
		out.EntryID = string(res.Entry.ID)
		return out
	}
}

// =============================================================================
// BULK WRITES
// =============================================================================

// BulkRecordWork creates one entry per candidate day in the range.
// Weekends are skipped by default; an explicit skipWeekends=false routes
// the weekend dates through the confirmation gate.
func (t *Toolset) BulkRecordWork(ctx context.Context, p BulkRecordWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	project, err := resolveProject(ctx, t.svc.Store(), p.Project)
	if err != nil {
		return failure(err)
	}
	spec, err := parseRangeSpec(p.StartDate, p.EndDate, p.Month, p.MonthEnd)
	if err != nil {
		return failure(err)
	}
	r, err := spec.Resolve()
	if err != nil {
		return failure(err)
	}

	skipWeekends := true
	if p.SkipWeekends != nil {
		skipWeekends = *p.SkipWeekends
	}
	days, weekends := ledger.Expand(r, skipWeekends)

	if d := ledger.CheckBulkWrite(r, weekends, skipWeekends, p.Confirmed); d.RequiresConfirmation {
		return confirmationRequired(d)
	}
	if len(days) == 0 {
		return failure(fmt.Errorf("%w: the range %s contains no candidate days", ledger.ErrValidation, r))
	}

	created, skipped, err := t.svc.BulkRecordWork(ctx, employeeID, project.ID, days, p.HoursPerDay)
	if err != nil {
		return failure(err)
	}
	out := success("created %d entries of %sh on %s for %s (%d days already had entries)",
		created, p.HoursPerDay, project.Name, r, skipped)
	out.Created = created
	out.Skipped = skipped
	return out
}

// BulkUpdateWork sets the hours on every matching entry.
func (t *Toolset) BulkUpdateWork(ctx context.Context, p BulkUpdateWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}

	var projectID ledger.ProjectID
	projectName := "all projects"
	if p.Project != "" {
		project, err := resolveProject(ctx, t.svc.Store(), p.Project)
		if err != nil {
			return failure(err)
		}
		projectID = project.ID
		projectName = project.Name
	}

	var r *ledger.DateRange
	if hasRange(p.StartDate, p.EndDate, p.Month) {
		spec, err := parseRangeSpec(p.StartDate, p.EndDate, p.Month, p.MonthEnd)
		if err != nil {
			return failure(err)
		}
		resolved, err := spec.Resolve()
		if err != nil {
			return failure(err)
		}
		r = &resolved
	}

	updated, err := t.svc.BulkUpdateWork(ctx, employeeID, projectID, r, p.Hours)
	if err != nil {
		return failure(err)
	}
	out := success("set %d entries to %sh (%s)", updated, p.Hours, projectName)
	out.Updated = updated
	return out
}

// BulkDeleteWork removes every work entry in the range. Always gated.
func (t *Toolset) BulkDeleteWork(ctx context.Context, p BulkDeleteWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}

	var projectID ledger.ProjectID
	what := "all work logs"
	if p.Project != "" {
		project, err := resolveProject(ctx, t.svc.Store(), p.Project)
		if err != nil {
			return failure(err)
		}
		projectID = project.ID
		what = "all work logs for project " + project.Name
	}

	spec, err := parseRangeSpec(p.StartDate, p.EndDate, p.Month, p.MonthEnd)
	if err != nil {
		return failure(err)
	}
	r, err := spec.Resolve()
	if err != nil {
		return failure(err)
	}

	if d := ledger.CheckBulkDelete(what, r, p.Confirmed); d.RequiresConfirmation {
		return confirmationRequired(d)
	}

	deleted, err := t.svc.BulkDeleteWork(ctx, employeeID, projectID, r)
	if err != nil {
		return failure(err)
	}
	out := success("deleted %d work entries in %s", deleted, r)
	out.Deleted = deleted
	return out
}

// =============================================================================
// SINGLE-ENTRY CORRECTIONS
// =============================================================================

// UpdateWork changes the hours and/or date of one entry, addressed by
// logId or by the (date, project) key.
func (t *Toolset) UpdateWork(ctx context.Context, p UpdateWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	if p.Hours == nil && p.NewDate == "" {
		return failure(fmt.Errorf("%w: nothing to update (give hours and/or newDate)", ledger.ErrValidation))
	}

	id, out := t.locateEntry(ctx, employeeID, p.LogID, p.Project, p.Date)
	if out != nil {
		return *out
	}

	var newDate *ledger.Day
	if p.NewDate != "" {
		d, err := ledger.ParseDay(p.NewDate)
		if err != nil {
			return failure(err)
		}
		newDate = &d
	}

	entry, err := t.svc.UpdateWork(ctx, employeeID, id, p.Hours, newDate)
	if err != nil {
		return failure(err)
	}
	res := success("updated the entry on %s to %sh", entry.Date, entry.Hours)
	res.EntryID = string(entry.ID)
	return res
}

// DeleteWork removes one entry, addressed like UpdateWork.
func (t *Toolset) DeleteWork(ctx context.Context, p DeleteWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}

	id, out := t.locateEntry(ctx, employeeID, p.LogID, p.Project, p.Date)
	if out != nil {
		return *out
	}

	if err := t.svc.DeleteWork(ctx, employeeID, id); err != nil {
		return failure(err)
	}
	res := success("deleted the work entry")
	res.Deleted = 1
	return res
}

// locateEntry resolves an entry reference: an explicit logId wins;
// otherwise the (date, project) key must identify exactly one entry.
func (t *Toolset) locateEntry(ctx context.Context, employeeID ledger.EmployeeID, logID, projectRef, date string) (ledger.EntryID, *Outcome) {
	if logID != "" {
		return ledger.EntryID(logID), nil
	}
	if projectRef == "" || date == "" {
		out := failure(fmt.Errorf("%w: give a logId, or a date and project together", ledger.ErrValidation))
		return "", &out
	}

	project, err := resolveProject(ctx, t.svc.Store(), projectRef)
	if err != nil {
		out := failure(err)
		return "", &out
	}
	day, err := ledger.ParseDay(date)
	if err != nil {
		out := failure(err)
		return "", &out
	}

	entries, err := t.svc.FindWorkByKey(ctx, employeeID, project.ID, day)
	if err != nil {
		out := failure(err)
		return "", &out
	}
	switch len(entries) {
	case 0:
		out := failure(&ledger.NotFoundError{Kind: "work log", Ref: fmt.Sprintf("%s on %s", project.Name, day)})
		return "", &out
	case 1:
		return entries[0].ID, nil
	default:
		out := failure(fmt.Errorf("%w: %d entries exist for %s on %s - address one by logId",
			ledger.ErrValidation, len(entries), project.Name, day))
		return "", &out
	}
}

// =============================================================================
// VACATION DELETES
// =============================================================================

// DeleteVacation removes the vacation entry (or entries) on a day and
// refunds the balance by the count removed.
func (t *Toolset) DeleteVacation(ctx context.Context, p DeleteVacationParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	date, err := parseDate(p.Date, "date")
	if err != nil {
		return failure(err)
	}

	removed, err := t.svc.DeleteVacationOn(ctx, employeeID, date)
	if err != nil {
		return failure(err)
	}
	out := success("removed vacation on %s and restored %d day(s) to the balance", date, removed)
	out.Deleted = removed
	return out
}

// BulkDeleteVacation removes every vacation entry in the range. Always
// gated; deletion and refund commit as one unit.
func (t *Toolset) BulkDeleteVacation(ctx context.Context, p BulkDeleteVacationParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	spec, err := parseRangeSpec(p.StartDate, p.EndDate, p.Month, p.MonthEnd)
	if err != nil {
		return failure(err)
	}
	r, err := spec.Resolve()
	if err != nil {
		return failure(err)
	}

	if d := ledger.CheckBulkDelete("all vacation days", r, p.Confirmed); d.RequiresConfirmation {
		return confirmationRequired(d)
	}

	removed, err := t.svc.BulkDeleteVacation(ctx, employeeID, r)
	if err != nil {
		return failure(err)
	}
	out := success("deleted %d vacation day(s) in %s and restored them to the balance", removed, r)
	out.Deleted = removed
	return out
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// DeduplicateWork removes redundant work entries in the range (all time
// when omitted), keeping one entry per (project, date). Never touches the
// vacation balance.
func (t *Toolset) DeduplicateWork(ctx context.Context, p DeduplicateWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	from, err := parseOptionalDate(p.StartDate)
	if err != nil {
		return failure(err)
	}
	to, err := parseOptionalDate(p.EndDate)
	if err != nil {
		return failure(err)
	}

	removed, err := t.svc.DeduplicateWork(ctx, employeeID, from, to)
	if err != nil {
		return failure(err)
	}
	out := success("removed %d duplicate work entries", removed)
	out.Deleted = removed
	return out
}

// ClearAllLogs wipes every work and vacation entry for the employee and
// refunds the balance for the vacation entries removed. The confirm flag
// must be set in the same call; there is no two-step protocol here.
func (t *Toolset) ClearAllLogs(ctx context.Context, p ClearAllLogsParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}
	if !p.Confirm {
		return failure(fmt.Errorf("%w: clearing all logs requires confirm=true", ledger.ErrValidation))
	}

	work, vacation, err := t.svc.ClearAllLogs(ctx, employeeID)
	if err != nil {
		return failure(err)
	}
	out := success("cleared %d work entries and %d vacation day(s); the vacation balance was restored", work, vacation)
	out.Deleted = work + vacation
	return out
}

// ListRecentWork lists the employee's newest work entries with their
// project names resolved for display.
func (t *Toolset) ListRecentWork(ctx context.Context, p ListRecentWorkParams) Outcome {
	employeeID, err := requireEmployee(p.EmployeeID)
	if err != nil {
		return failure(err)
	}

	entries, err := t.svc.ListRecent(ctx, employeeID, p.Limit)
	if err != nil {
		return failure(err)
	}

	names := make(map[ledger.ProjectID]string)
	view := make([]WorkEntry, 0, len(entries))
	for _, e := range entries {
		name, ok := names[e.ProjectID]
		if !ok {
			name = string(e.ProjectID)
			if proj, err := t.svc.Store().GetProject(ctx, e.ProjectID); err == nil && proj != nil {
				name = proj.Name
			}
			names[e.ProjectID] = name
		}
		view = append(view, WorkEntry{
			ID:      string(e.ID),
			Project: name,
			Date:    e.Date.String(),
			Hours:   e.Hours,
		})
	}

	out := success("%d recent work entries", len(view))
	out.Entries = view
	return out
}
