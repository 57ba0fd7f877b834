package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayPtr(y int, m time.Month, d int) *Day {
	day := NewDay(y, m, d)
	return &day
}

func monthPtr(y int, m time.Month) *Month {
	month := Month{Year: y, Month: m}
	return &month
}

// =============================================================================
// RANGE SPEC RESOLUTION
// =============================================================================

func TestRangeSpec_StartEndPair(t *testing.T) {
	spec := RangeSpec{Start: dayPtr(2026, time.February, 2), End: dayPtr(2026, time.February, 6)}
	r, err := spec.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "2026-02-02 to 2026-02-06", r.String())
}

func TestRangeSpec_MonthToken(t *testing.T) {
	spec := RangeSpec{Month: monthPtr(2026, time.February)}
	r, err := spec.Resolve()
	require.NoError(t, err)
	assert.Equal(t, NewDay(2026, time.February, 1), r.Start)
	assert.Equal(t, NewDay(2026, time.February, 28), r.End)
}

func TestRangeSpec_MonthRange(t *testing.T) {
	spec := RangeSpec{Month: monthPtr(2026, time.February), MonthEnd: monthPtr(2026, time.April)}
	r, err := spec.Resolve()
	require.NoError(t, err)
	assert.Equal(t, NewDay(2026, time.February, 1), r.Start)
	assert.Equal(t, NewDay(2026, time.April, 30), r.End)
}

func TestRangeSpec_RejectsMixedForms(t *testing.T) {
	spec := RangeSpec{
		Start: dayPtr(2026, time.February, 2),
		End:   dayPtr(2026, time.February, 6),
		Month: monthPtr(2026, time.February),
	}
	_, err := spec.Resolve()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRangeSpec_RejectsHalfPair(t *testing.T) {
	_, err := RangeSpec{Start: dayPtr(2026, time.February, 2)}.Resolve()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRangeSpec_RejectsEmpty(t *testing.T) {
	_, err := RangeSpec{}.Resolve()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRangeSpec_RejectsReversed(t *testing.T) {
	_, err := RangeSpec{Start: dayPtr(2026, time.February, 6), End: dayPtr(2026, time.February, 2)}.Resolve()
	assert.ErrorIs(t, err, ErrValidation)

	_, err = RangeSpec{Month: monthPtr(2026, time.April), MonthEnd: monthPtr(2026, time.February)}.Resolve()
	assert.ErrorIs(t, err, ErrValidation)
}

// =============================================================================
// EXPANSION
// =============================================================================

func TestExpand_SkipWeekends_February2026(t *testing.T) {
	// GIVEN: February 2026 with skipWeekends=true
	// THEN: 20 weekday candidates, 8 weekend days reported
	r := DateRange{Start: NewDay(2026, time.February, 1), End: NewDay(2026, time.February, 28)}

	days, weekends := Expand(r, true)
	assert.Len(t, days, 20)
	assert.Len(t, weekends, 8)
	for _, d := range days {
		assert.True(t, d.IsBusinessDay(), d.String())
	}
}

func TestExpand_KeepWeekends_SurfacesThem(t *testing.T) {
	// GIVEN: skipWeekends explicitly false
	// THEN: Weekend dates stay in the candidate set AND are surfaced
	r := DateRange{Start: NewDay(2026, time.February, 1), End: NewDay(2026, time.February, 28)}

	days, weekends := Expand(r, false)
	assert.Len(t, days, 28)
	assert.Len(t, weekends, 8)
}

func TestExpand_Ordered(t *testing.T) {
	r := DateRange{Start: NewDay(2026, time.February, 2), End: NewDay(2026, time.February, 6)}
	days, _ := Expand(r, true)
	require.Len(t, days, 5)
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i-1].Before(days[i]))
	}
}
