package vacation_test

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacationflow/vacation"
)

// captureFallback redirects the calendar fallback logger for one test.
func captureFallback(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := vacation.FallbackLogger
	vacation.FallbackLogger = log.New(&buf, "", 0)
	t.Cleanup(func() { vacation.FallbackLogger = prev })
	return &buf
}

func TestComputeWorkDays_SingleWeekday(t *testing.T) {
	// 2024-06-03 is a Monday
	assert.Equal(t, 1, vacation.ComputeWorkDays("2024-06-03", "2024-06-03"))
}

func TestComputeWorkDays_SingleWeekendDay(t *testing.T) {
	assert.Equal(t, 0, vacation.ComputeWorkDays("2024-06-08", "2024-06-08"))
	assert.Equal(t, 0, vacation.ComputeWorkDays("2024-06-08", "2024-06-09"))
}

func TestComputeWorkDays_FullWeek(t *testing.T) {
	assert.Equal(t, 5, vacation.ComputeWorkDays("2024-06-03", "2024-06-07"))
	assert.Equal(t, 5, vacation.ComputeWorkDays("2024-06-03", "2024-06-09"))
}

func TestComputeWorkDays_AnySevenDaySpanHasFiveWorkDays(t *testing.T) {
	start := vacation.NewTimePoint(2024, time.January, 1)
	for i := 0; i < 14; i++ {
		s := start.AddDays(i)
		e := s.AddDays(6)
		assert.Equal(t, 5, vacation.WorkDays(s, e), "span starting %s", s)
	}
}

func TestComputeWorkDays_AcrossYearBoundary(t *testing.T) {
	// Mon 2024-12-30 .. Fri 2025-01-03
	assert.Equal(t, 5, vacation.ComputeWorkDays("2024-12-30", "2025-01-03"))
}

func TestComputeWorkDays_TimestampFallsBackToCalendarDays(t *testing.T) {
	// GIVEN: Inputs that are RFC 3339 timestamps, not plain dates
	// WHEN: Counting work days
	// THEN: The raw inclusive calendar-day count is used and logged
	buf := captureFallback(t)

	n := vacation.ComputeWorkDays("2024-06-03T00:00:00Z", "2024-06-09T00:00:00Z")

	assert.Equal(t, 7, n)
	assert.Contains(t, buf.String(), "[Calendar]")
}

func TestComputeWorkDays_UnparseableIsZero(t *testing.T) {
	buf := captureFallback(t)

	assert.Equal(t, 0, vacation.ComputeWorkDays("soon", "later"))
	assert.NotEmpty(t, buf.String())
}

func TestPeriod_WorkDays_ReversedRangeCountsZero(t *testing.T) {
	buf := captureFallback(t)

	p := vacation.Period{
		Start: vacation.NewTimePoint(2024, time.June, 10),
		End:   vacation.NewTimePoint(2024, time.June, 3),
	}

	assert.False(t, p.Valid())
	assert.Equal(t, -6, p.CalendarDays())
	assert.Equal(t, 0, p.WorkDays())
	assert.Equal(t, 0, vacation.ComputeWorkDays("2024-06-10", "2024-06-03"))
	assert.Equal(t, 0, vacation.ComputeWorkDays("2024-06-10T00:00:00Z", "2024-06-03T00:00:00Z"))
	assert.Contains(t, buf.String(), "reversed range")
}

func TestParsePeriod_Validation(t *testing.T) {
	_, err := vacation.ParsePeriod("2024-06-07", "2024-06-03")
	assert.True(t, vacation.IsValidation(err))

	_, err = vacation.ParsePeriod("06/03/2024", "2024-06-07")
	assert.True(t, vacation.IsValidation(err))

	p, err := vacation.ParsePeriod("2024-06-03", "2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, 1, p.CalendarDays())
}

func TestPeriod_DatesAndOverlaps(t *testing.T) {
	p, err := vacation.ParsePeriod("2024-02-27", "2024-03-02")
	require.NoError(t, err)

	var got []string
	for d := range p.Dates() {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, got)

	other, _ := vacation.ParsePeriod("2024-03-02", "2024-03-10")
	assert.True(t, p.Overlaps(other))
	later, _ := vacation.ParsePeriod("2024-03-03", "2024-03-10")
	assert.False(t, p.Overlaps(later))
	assert.True(t, p.Contains(vacation.NewTimePoint(2024, time.February, 29)))
}

func TestOccupiedDates_StopsEarly(t *testing.T) {
	s := vacation.NewTimePoint(2024, time.June, 1)
	n := 0
	for range vacation.OccupiedDates(s, s.AddDays(30)) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
