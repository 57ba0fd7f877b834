package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/ledger-engine/ledger"
	"github.com/warp/ledger-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*ledger.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := ledger.NewService(mem)
	ctx := context.Background()

	require.NoError(t, mem.SaveEmployee(ctx, ledger.Employee{
		ID:                    "emp-1",
		Name:                  "Ada Moreno",
		MonthlyCost:           decimal.NewFromInt(8000),
		VacationDaysRemaining: 25,
		CreatedAt:             time.Now().UTC(),
	}))
	require.NoError(t, mem.SaveEmployee(ctx, ledger.Employee{
		ID:                    "emp-2",
		Name:                  "Ben Keller",
		MonthlyCost:           decimal.NewFromInt(6400),
		VacationDaysRemaining: 25,
		CreatedAt:             time.Now().UTC(),
	}))
	require.NoError(t, mem.SaveProject(ctx, ledger.Project{
		ID:          "proj-1",
		Name:        "Atlas Platform",
		Start:       ledger.NewDay(2026, time.January, 1),
		PaymentType: ledger.PaymentFixed,
		TotalPrice:  decimal.NewFromInt(120000),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}))
	return svc, mem
}

func balanceOf(t *testing.T, mem *store.Memory, id ledger.EmployeeID) int {
	t.Helper()
	emp, err := mem.GetEmployee(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, emp)
	return emp.VacationDaysRemaining
}

func hours(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// =============================================================================
// HOURS VALIDATION
// =============================================================================

func TestRecordWork_InvalidHours_WritesNothing(t *testing.T) {
	// GIVEN: hours that are not a positive multiple of 0.5
	// WHEN: Recording work
	// THEN: ValidationError, and no entry exists afterwards

	svc, _ := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)

	for _, h := range []float64{0, -1, 3.7, 0.25, 8.1} {
		_, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(h), ledger.ConflictReject)
		assert.ErrorIs(t, err, ledger.ErrValidation, "hours=%v", h)

		var invalid *ledger.InvalidHoursError
		assert.ErrorAs(t, err, &invalid)
	}

	entries, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", day)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateWork_InvalidHours_Rejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(4), ledger.ConflictReject)
	require.NoError(t, err)
	require.NotNil(t, res.Entry)

	bad := hours(3.7)
	_, err = svc.UpdateWork(ctx, "emp-1", res.Entry.ID, &bad, nil)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	// Entry unchanged
	after, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", day)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.True(t, after[0].Hours.Equal(hours(4)))
}

// =============================================================================
// CONFLICT POLICIES
// =============================================================================

func TestRecordWork_Conflict_RejectByDefault(t *testing.T) {
	// GIVEN: 4h already recorded for (emp-1, proj-1, Feb 10)
	// WHEN: Recording 3h with no conflict action
	// THEN: A conflict outcome carrying the existing hours; nothing written

	svc, _ := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)

	_, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(4), ledger.ConflictReject)
	require.NoError(t, err)

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(3), ledger.ConflictReject)
	require.NoError(t, err)
	require.NotNil(t, res.Conflict)
	assert.True(t, res.Conflict.ExistingHours.Equal(hours(4)))

	entries, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", day)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordWork_Conflict_Merge(t *testing.T) {
	// GIVEN: 4h on Feb 10
	// WHEN: Recording 3h with conflictAction=merge
	// THEN: Exactly one entry of 7h

	svc, _ := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)

	_, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(4), ledger.ConflictReject)
	require.NoError(t, err)

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(3), ledger.ConflictMerge)
	require.NoError(t, err)
	assert.True(t, res.Merged)

	entries, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Hours.Equal(hours(7)), "got %s", entries[0].Hours)
}

func TestRecordWork_Conflict_Ignore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)

	_, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(4), ledger.ConflictReject)
	require.NoError(t, err)

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(3), ledger.ConflictIgnore)
	require.NoError(t, err)
	assert.True(t, res.Ignored)

	entries, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Hours.Equal(hours(4)))
}

func TestRecordWork_Conflict_Add(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)

	_, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(4), ledger.ConflictReject)
	require.NoError(t, err)

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(3), ledger.ConflictAdd)
	require.NoError(t, err)
	require.NotNil(t, res.Entry)

	entries, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", day)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestParseConflictAction_MergeForbiddenForVacation(t *testing.T) {
	_, err := ledger.ParseConflictAction("merge", true)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	action, err := ledger.ParseConflictAction("merge", false)
	require.NoError(t, err)
	assert.Equal(t, ledger.ConflictMerge, action)

	_, err = ledger.ParseConflictAction("overwrite", false)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

// =============================================================================
// THE BALANCE INVARIANT
// =============================================================================

func TestVacationBalance_InterleavedRecordsAndDeletes(t *testing.T) {
	// GIVEN: initial balance 25
	// WHEN: N=4 records and M=2 deletes, interleaved
	// THEN: balance == 25 - 4 + 2

	svc, mem := newTestService(t)
	ctx := context.Background()

	r1, err := svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, 2), ledger.ConflictReject)
	require.NoError(t, err)
	r2, err := svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, 3), ledger.ConflictReject)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVacation(ctx, "emp-1", r1.Entry.ID))

	_, err = svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, 4), ledger.ConflictReject)
	require.NoError(t, err)
	_, err = svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, 5), ledger.ConflictReject)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVacation(ctx, "emp-1", r2.Entry.ID))

	assert.Equal(t, 25-4+2, balanceOf(t, mem, "emp-1"))
}

func TestVacationBalance_MayGoNegative(t *testing.T) {
	// GIVEN: An employee with zero days remaining
	// WHEN: Recording vacation anyway
	// THEN: No floor check - the counter goes negative

	svc, mem := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mem.SaveEmployee(ctx, ledger.Employee{
		ID: "emp-zero", Name: "Zero Days", VacationDaysRemaining: 0, CreatedAt: time.Now().UTC(),
	}))

	_, err := svc.RecordVacation(ctx, "emp-zero", ledger.NewDay(2026, time.June, 1), ledger.ConflictReject)
	require.NoError(t, err)

	assert.Equal(t, -1, balanceOf(t, mem, "emp-zero"))
}

func TestRecordVacation_ConflictRejectLeavesBalanceAlone(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.March, 2)

	_, err := svc.RecordVacation(ctx, "emp-1", day, ledger.ConflictReject)
	require.NoError(t, err)

	res, err := svc.RecordVacation(ctx, "emp-1", day, ledger.ConflictReject)
	require.NoError(t, err)
	require.NotNil(t, res.Conflict)

	assert.Equal(t, 24, balanceOf(t, mem, "emp-1"))
}

func TestDeleteVacationOn_RefundsAllEntriesOnTheDay(t *testing.T) {
	// GIVEN: Two vacation entries on the same day (conflictAction=add)
	svc, mem := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.March, 2)

	_, err := svc.RecordVacation(ctx, "emp-1", day, ledger.ConflictReject)
	require.NoError(t, err)
	_, err = svc.RecordVacation(ctx, "emp-1", day, ledger.ConflictAdd)
	require.NoError(t, err)
	require.Equal(t, 23, balanceOf(t, mem, "emp-1"))

	removed, err := svc.DeleteVacationOn(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 25, balanceOf(t, mem, "emp-1"))
}

func TestDeleteVacationOn_EmptyDayIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.DeleteVacationOn(context.Background(), "emp-1", ledger.NewDay(2026, time.March, 2))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestBulkDeleteVacation_DeletionAndRefundAreOneUnit(t *testing.T) {
	// GIVEN: A vacation week
	svc, mem := newTestService(t)
	ctx := context.Background()
	for d := 2; d <= 6; d++ {
		_, err := svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, d), ledger.ConflictReject)
		require.NoError(t, err)
	}
	require.Equal(t, 20, balanceOf(t, mem, "emp-1"))

	// WHEN: Bulk-deleting the whole month
	removed, err := svc.BulkDeleteVacation(ctx, "emp-1", ledger.DateRange{
		Start: ledger.NewDay(2026, time.March, 1),
		End:   ledger.NewDay(2026, time.March, 31),
	})

	// THEN: All five refunded in one step
	require.NoError(t, err)
	assert.Equal(t, 5, removed)
	assert.Equal(t, 25, balanceOf(t, mem, "emp-1"))
}

// =============================================================================
// ROUND-TRIP
// =============================================================================

func TestRecordThenDeleteWork_RestoresLedgerState(t *testing.T) {
	// GIVEN: A clean ledger
	// WHEN: recordWork then deleteWork on the same id
	// THEN: Work entries and vacation balance are as before the pair

	svc, mem := newTestService(t)
	ctx := context.Background()
	day := ledger.NewDay(2026, time.February, 10)
	before := balanceOf(t, mem, "emp-1")

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(8), ledger.ConflictReject)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteWork(ctx, "emp-1", res.Entry.ID))

	entries, err := mem.FindWorkLogs(ctx, ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, before, balanceOf(t, mem, "emp-1"))
}

// =============================================================================
// OWNERSHIP & MISSING REFERENCES
// =============================================================================

func TestUpdateWork_CrossEmployee_Unauthorized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.RecordWork(ctx, "emp-1", "proj-1", ledger.NewDay(2026, time.February, 10), hours(4), ledger.ConflictReject)
	require.NoError(t, err)

	newHours := hours(8)
	_, err = svc.UpdateWork(ctx, "emp-2", res.Entry.ID, &newHours, nil)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = svc.DeleteWork(ctx, "emp-2", res.Entry.ID)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestRecordWork_UnknownEmployee_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecordWork(context.Background(), "emp-missing", "proj-1",
		ledger.NewDay(2026, time.February, 10), hours(4), ledger.ConflictReject)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDeleteWork_UnknownID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteWork(context.Background(), "emp-1", "no-such-entry")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// =============================================================================
// BULK WORK OPERATIONS
// =============================================================================

func TestBulkRecordWork_SkipsOccupiedDays(t *testing.T) {
	// GIVEN: Feb 10 already holds an entry
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordWork(ctx, "emp-1", "proj-1", ledger.NewDay(2026, time.February, 10), hours(4), ledger.ConflictReject)
	require.NoError(t, err)

	// WHEN: Bulk-creating over the whole of February's weekdays
	r := ledger.DateRange{Start: ledger.NewDay(2026, time.February, 1), End: ledger.NewDay(2026, time.February, 28)}
	days, _ := ledger.Expand(r, true)
	created, skipped, err := svc.BulkRecordWork(ctx, "emp-1", "proj-1", days, hours(8))

	// THEN: 19 new entries, the occupied day skipped
	require.NoError(t, err)
	assert.Equal(t, 19, created)
	assert.Equal(t, 1, skipped)
}

func TestBulkUpdateWork_SetsHoursInRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r := ledger.DateRange{Start: ledger.NewDay(2026, time.February, 2), End: ledger.NewDay(2026, time.February, 6)}
	days, _ := ledger.Expand(r, true)
	_, _, err := svc.BulkRecordWork(ctx, "emp-1", "proj-1", days, hours(8))
	require.NoError(t, err)

	updated, err := svc.BulkUpdateWork(ctx, "emp-1", "proj-1", &r, hours(6))
	require.NoError(t, err)
	assert.Equal(t, 5, updated)

	entries, err := svc.FindWorkByKey(ctx, "emp-1", "proj-1", ledger.NewDay(2026, time.February, 4))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Hours.Equal(hours(6)))
}

func TestBulkDeleteWork_RemovesRange(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	r := ledger.DateRange{Start: ledger.NewDay(2026, time.February, 2), End: ledger.NewDay(2026, time.February, 6)}
	days, _ := ledger.Expand(r, true)
	_, _, err := svc.BulkRecordWork(ctx, "emp-1", "proj-1", days, hours(8))
	require.NoError(t, err)

	deleted, err := svc.BulkDeleteWork(ctx, "emp-1", "proj-1", r)
	require.NoError(t, err)
	assert.Equal(t, 5, deleted)

	entries, err := mem.FindWorkLogs(ctx, ledger.WorkLogFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// CLEAR ALL
// =============================================================================

func TestClearAllLogs_WipesEntriesAndRestoresBalance(t *testing.T) {
	// GIVEN: Work entries and vacation entries
	svc, mem := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordWork(ctx, "emp-1", "proj-1", ledger.NewDay(2026, time.February, 10), hours(8), ledger.ConflictReject)
	require.NoError(t, err)
	_, err = svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, 2), ledger.ConflictReject)
	require.NoError(t, err)
	_, err = svc.RecordVacation(ctx, "emp-1", ledger.NewDay(2026, time.March, 3), ledger.ConflictReject)
	require.NoError(t, err)
	require.Equal(t, 23, balanceOf(t, mem, "emp-1"))

	// WHEN: Clearing everything
	work, vacation, err := svc.ClearAllLogs(ctx, "emp-1")

	// THEN: Counts reported, balance back to its initial value
	require.NoError(t, err)
	assert.Equal(t, 1, work)
	assert.Equal(t, 2, vacation)
	assert.Equal(t, 25, balanceOf(t, mem, "emp-1"))
}

// =============================================================================
// LISTING
// =============================================================================

func TestListRecent_NewestFirstWithCap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for d := 2; d <= 13; d++ {
		day := ledger.NewDay(2026, time.February, d)
		if day.IsWeekend() {
			continue
		}
		_, err := svc.RecordWork(ctx, "emp-1", "proj-1", day, hours(8), ledger.ConflictReject)
		require.NoError(t, err)
	}

	entries, err := svc.ListRecent(ctx, "emp-1", 5)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].Date.BeforeOrEqual(entries[i-1].Date))
	}
	// Newest logged weekday is Feb 13
	assert.Equal(t, "2026-02-13", entries[0].Date.String())
}
