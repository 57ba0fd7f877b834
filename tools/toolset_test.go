package tools_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/ledger-engine/ledger"
	"github.com/warp/ledger-engine/ledger/store"
	"github.com/warp/ledger-engine/tools"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestToolset(t *testing.T) (*tools.Toolset, *ledger.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveEmployee(ctx, ledger.Employee{
		ID: "emp-1", Name: "Ada Moreno",
		MonthlyCost:           decimal.NewFromInt(8000),
		VacationDaysRemaining: 25,
		CreatedAt:             time.Now().UTC(),
	}))
	require.NoError(t, mem.SaveProject(ctx, ledger.Project{
		ID: "proj-1", Name: "Atlas Platform",
		Start:       ledger.NewDay(2026, time.January, 1),
		PaymentType: ledger.PaymentFixed,
		TotalPrice:  decimal.NewFromInt(120000),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}))

	svc := ledger.NewService(mem)
	return tools.New(svc), svc, mem
}

func invoke(t *testing.T, ts *tools.Toolset, op, params string) tools.Outcome {
	t.Helper()
	return ts.Invoke(context.Background(), op, json.RawMessage(params))
}

// =============================================================================
// INVOKE DISPATCH
// =============================================================================

func TestInvoke_UnknownOperation(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	out := invoke(t, ts, "teleportEmployee", `{}`)
	assert.Equal(t, tools.StatusError, out.Status)
	assert.Contains(t, out.Message, "unknown operation")
}

func TestInvoke_MalformedParameters(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	out := invoke(t, ts, "recordWork", `{"employeeId": `)
	assert.Equal(t, tools.StatusError, out.Status)
	assert.Contains(t, out.Message, "malformed parameters")
}

// =============================================================================
// RECORD WORK
// =============================================================================

func TestRecordWork_Success(t *testing.T) {
	ts, _, mem := newTestToolset(t)

	out := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":8}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.NotEmpty(t, out.EntryID)

	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordWork_ResolvesProjectByNameCaseInsensitive(t *testing.T) {
	ts, _, mem := newTestToolset(t)

	out := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"atlas platform","date":"2026-02-10","hours":8}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{ProjectID: "proj-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordWork_UnknownProject(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	out := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"Nimbus","date":"2026-02-10","hours":8}`)
	assert.Equal(t, tools.StatusError, out.Status)
}

func TestRecordWork_WeekendGatedThenConfirmed(t *testing.T) {
	// GIVEN: 2026-02-07 is a Saturday
	ts, _, mem := newTestToolset(t)

	// WHEN: Writing without confirmed
	out := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-07","hours":4}`)

	// THEN: Blocked, nothing written
	require.Equal(t, tools.StatusRequiresConfirmation, out.Status)
	assert.Contains(t, out.Message, "Saturday")
	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, entries)

	// WHEN: Resubmitting the identical call with confirmed=true
	out = invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-07","hours":4,"confirmed":true}`)

	// THEN: Exactly one entry exists
	require.Equal(t, tools.StatusSuccess, out.Status)
	entries, err = mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordWork_ConflictSurfacesExistingEntry(t *testing.T) {
	// GIVEN: The key already holds a 4h entry
	ts, _, _ := newTestToolset(t)
	first := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":4}`)
	require.Equal(t, tools.StatusSuccess, first.Status)

	// WHEN: Writing the same key with no conflict action
	out := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":3}`)

	// THEN: Conflict outcome names the occupying entry
	require.Equal(t, tools.StatusConflict, out.Status)
	assert.Equal(t, first.EntryID, out.ExistingID)
	require.NotNil(t, out.ExistingHours)
	assert.True(t, out.ExistingHours.Equal(decimal.NewFromInt(4)))

	// WHEN: Resubmitting with conflictAction=merge
	out = invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":3,"conflictAction":"merge"}`)

	// THEN: One entry holding the sum
	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Contains(t, out.Message, "7")
}

func TestRecordWork_InvalidHours(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	out := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":3.7}`)
	assert.Equal(t, tools.StatusError, out.Status)
}

// =============================================================================
// RECORD VACATION
// =============================================================================

func TestRecordVacation_DecrementsBalance(t *testing.T) {
	ts, _, mem := newTestToolset(t)

	out := invoke(t, ts, "recordVacation", `{"employeeId":"emp-1","date":"2026-03-02"}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	emp, err := mem.GetEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 24, emp.VacationDaysRemaining)
}

func TestRecordVacation_MergeRejected(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	out := invoke(t, ts, "recordVacation",
		`{"employeeId":"emp-1","date":"2026-03-02","conflictAction":"merge"}`)
	assert.Equal(t, tools.StatusError, out.Status)
}

func TestRecordVacation_WeekendGated(t *testing.T) {
	ts, _, mem := newTestToolset(t)

	out := invoke(t, ts, "recordVacation", `{"employeeId":"emp-1","date":"2026-02-08"}`)
	require.Equal(t, tools.StatusRequiresConfirmation, out.Status)

	emp, err := mem.GetEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 25, emp.VacationDaysRemaining, "a blocked write must not touch the balance")
}

// =============================================================================
// BULK RECORD
// =============================================================================

func TestBulkRecordWork_MonthSkipsWeekendsByDefault(t *testing.T) {
	// GIVEN: February 2026 has 20 business days
	ts, _, mem := newTestToolset(t)

	out := invoke(t, ts, "bulkRecordWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","hoursPerDay":8}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 20, out.Created)
	assert.Equal(t, 0, out.Skipped)

	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.Date.IsBusinessDay(), e.Date.String())
	}
}

func TestBulkRecordWork_KeepWeekendsNeedsConfirmation(t *testing.T) {
	ts, _, mem := newTestToolset(t)

	// WHEN: Asking to keep weekends without confirming
	out := invoke(t, ts, "bulkRecordWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","hoursPerDay":8,"skipWeekends":false}`)

	// THEN: Blocked, nothing written
	require.Equal(t, tools.StatusRequiresConfirmation, out.Status)
	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, entries)

	// WHEN: Confirmed
	out = invoke(t, ts, "bulkRecordWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","hoursPerDay":8,"skipWeekends":false,"confirmed":true}`)

	// THEN: All 28 days of February
	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 28, out.Created)
}

func TestBulkRecordWork_SkipsOccupiedDays(t *testing.T) {
	ts, _, _ := newTestToolset(t)

	first := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":4}`)
	require.Equal(t, tools.StatusSuccess, first.Status)

	out := invoke(t, ts, "bulkRecordWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","hoursPerDay":8}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 19, out.Created)
	assert.Equal(t, 1, out.Skipped)
}

func TestBulkRecordWork_RejectsMixedRangeForms(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	out := invoke(t, ts, "bulkRecordWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","startDate":"2026-02-01","endDate":"2026-02-28","hoursPerDay":8}`)
	assert.Equal(t, tools.StatusError, out.Status)
}

// =============================================================================
// UPDATE AND DELETE
// =============================================================================

func TestUpdateWork_ByDateAndProject(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	created := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":4}`)
	require.Equal(t, tools.StatusSuccess, created.Status)

	out := invoke(t, ts, "updateWork",
		`{"employeeId":"emp-1","project":"Atlas Platform","date":"2026-02-10","hours":6}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, created.EntryID, out.EntryID)
	assert.Contains(t, out.Message, "6")
}

func TestUpdateWork_AmbiguousKeyNeedsLogID(t *testing.T) {
	// GIVEN: Two entries on the same key (conflictAction=add)
	ts, _, _ := newTestToolset(t)
	for i := 0; i < 2; i++ {
		out := invoke(t, ts, "recordWork",
			`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":4,"conflictAction":"add"}`)
		require.Equal(t, tools.StatusSuccess, out.Status)
	}

	out := invoke(t, ts, "updateWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":6}`)
	assert.Equal(t, tools.StatusError, out.Status)
	assert.Contains(t, out.Message, "logId")
}

func TestDeleteWork_ByLogID(t *testing.T) {
	ts, _, mem := newTestToolset(t)
	created := invoke(t, ts, "recordWork",
		`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":4}`)
	require.Equal(t, tools.StatusSuccess, created.Status)

	out := invoke(t, ts, "deleteWork",
		`{"employeeId":"emp-1","logId":"`+created.EntryID+`"}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 1, out.Deleted)
	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteVacation_RefundsBalance(t *testing.T) {
	ts, _, mem := newTestToolset(t)
	require.Equal(t, tools.StatusSuccess,
		invoke(t, ts, "recordVacation", `{"employeeId":"emp-1","date":"2026-03-02"}`).Status)

	out := invoke(t, ts, "deleteVacation", `{"employeeId":"emp-1","date":"2026-03-02"}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 1, out.Deleted)
	emp, err := mem.GetEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 25, emp.VacationDaysRemaining)
}

// =============================================================================
// BULK DELETE GATING
// =============================================================================

func TestBulkDeleteWork_GatedThenConfirmed(t *testing.T) {
	ts, _, mem := newTestToolset(t)
	require.Equal(t, tools.StatusSuccess,
		invoke(t, ts, "bulkRecordWork",
			`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","hoursPerDay":8}`).Status)

	// WHEN: Deleting without confirming
	out := invoke(t, ts, "bulkDeleteWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02"}`)

	// THEN: Blocked, message says what confirming would do
	require.Equal(t, tools.StatusRequiresConfirmation, out.Status)
	assert.Contains(t, out.Message, "Atlas Platform")
	assert.Contains(t, out.Message, "confirm to proceed")
	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 20)

	// WHEN: Confirmed
	out = invoke(t, ts, "bulkDeleteWork",
		`{"employeeId":"emp-1","project":"proj-1","month":"2026-02","confirmed":true}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 20, out.Deleted)
}

func TestBulkDeleteVacation_RefundsInOneUnit(t *testing.T) {
	ts, _, mem := newTestToolset(t)
	for _, d := range []string{"2026-03-02", "2026-03-03", "2026-03-04"} {
		require.Equal(t, tools.StatusSuccess,
			invoke(t, ts, "recordVacation", `{"employeeId":"emp-1","date":"`+d+`"}`).Status)
	}

	out := invoke(t, ts, "bulkDeleteVacation",
		`{"employeeId":"emp-1","month":"2026-03","confirmed":true}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 3, out.Deleted)
	emp, err := mem.GetEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 25, emp.VacationDaysRemaining)
}

// =============================================================================
// MAINTENANCE
// =============================================================================

func TestClearAllLogs_RequiresConfirmFlag(t *testing.T) {
	ts, _, mem := newTestToolset(t)
	require.Equal(t, tools.StatusSuccess,
		invoke(t, ts, "recordWork",
			`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":8}`).Status)

	out := invoke(t, ts, "clearAllLogs", `{"employeeId":"emp-1"}`)
	assert.Equal(t, tools.StatusError, out.Status)
	assert.Contains(t, out.Message, "confirm=true")

	out = invoke(t, ts, "clearAllLogs", `{"employeeId":"emp-1","confirm":true}`)
	require.Equal(t, tools.StatusSuccess, out.Status)
	entries, err := mem.FindWorkLogs(context.Background(), ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeduplicateWork_ReportsRemovedCount(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, tools.StatusSuccess,
			invoke(t, ts, "recordWork",
				`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":4,"conflictAction":"add"}`).Status)
	}

	out := invoke(t, ts, "deduplicateWork", `{"employeeId":"emp-1"}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	assert.Equal(t, 2, out.Deleted)
}

func TestListRecentWork_ResolvesProjectNames(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	require.Equal(t, tools.StatusSuccess,
		invoke(t, ts, "recordWork",
			`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-10","hours":8}`).Status)
	require.Equal(t, tools.StatusSuccess,
		invoke(t, ts, "recordWork",
			`{"employeeId":"emp-1","project":"proj-1","date":"2026-02-11","hours":8}`).Status)

	out := invoke(t, ts, "listRecentWork", `{"employeeId":"emp-1","limit":5}`)

	require.Equal(t, tools.StatusSuccess, out.Status)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "2026-02-11", out.Entries[0].Date, "newest first")
	assert.Equal(t, "Atlas Platform", out.Entries[0].Project)
}
