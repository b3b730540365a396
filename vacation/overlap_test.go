package vacation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacationflow/vacation"
)

func period(t *testing.T, start, end string) vacation.Period {
	t.Helper()
	p, err := vacation.ParsePeriod(start, end)
	require.NoError(t, err)
	return p
}

func approvedRequest(t *testing.T, user, start, end string) vacation.Request {
	return vacation.Request{
		ID:     "req-" + user + "-" + start,
		UserID: user,
		Period: period(t, start, end),
		Type:   vacation.TypeAnnual,
		Status: vacation.StatusApproved,
	}
}

func TestCheckOverlap_CapacityReached(t *testing.T) {
	// GIVEN: Two approved vacations covering June 5 in a department of max 2
	// WHEN: A third person asks for June 5
	// THEN: One warning with count 3 naming both occupants
	existing := []vacation.Request{
		approvedRequest(t, "alice", "2024-06-03", "2024-06-07"),
		approvedRequest(t, "bob", "2024-06-05", "2024-06-05"),
	}

	warnings := vacation.CheckOverlap(period(t, "2024-06-05", "2024-06-05"), existing, 2)

	require.Len(t, warnings, 1)
	w := warnings[0]
	assert.Equal(t, "2024-06-05", w.Date.String())
	assert.Equal(t, 3, w.Count)
	assert.Equal(t, 2, w.MaxAllowed)
	assert.ElementsMatch(t, []string{"alice", "bob"}, w.Employees)
}

func TestCheckOverlap_BelowCapacity(t *testing.T) {
	existing := []vacation.Request{approvedRequest(t, "alice", "2024-06-03", "2024-06-07")}

	warnings := vacation.CheckOverlap(period(t, "2024-06-03", "2024-06-07"), existing, 2)

	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

func TestCheckOverlap_IgnoresNonApproved(t *testing.T) {
	pending := approvedRequest(t, "alice", "2024-06-03", "2024-06-07")
	pending.Status = vacation.StatusPending
	cancelled := approvedRequest(t, "bob", "2024-06-03", "2024-06-07")
	cancelled.Status = vacation.StatusCancelled

	warnings := vacation.CheckOverlap(period(t, "2024-06-03", "2024-06-07"),
		[]vacation.Request{pending, cancelled}, 1)

	assert.Empty(t, warnings)
}

func TestCheckOverlap_OnlyOverlappingDatesSortedByDate(t *testing.T) {
	existing := []vacation.Request{
		approvedRequest(t, "alice", "2024-06-06", "2024-06-10"),
	}

	warnings := vacation.CheckOverlap(period(t, "2024-06-01", "2024-06-07"), existing, 1)

	require.Len(t, warnings, 2)
	assert.Equal(t, "2024-06-06", warnings[0].Date.String())
	assert.Equal(t, "2024-06-07", warnings[1].Date.String())
	assert.Equal(t, 2, warnings[0].Count)
}

func TestCheckOverlap_SameUserCountsPerRequest(t *testing.T) {
	existing := []vacation.Request{
		approvedRequest(t, "alice", "2024-06-03", "2024-06-04"),
		approvedRequest(t, "alice", "2024-06-04", "2024-06-05"),
	}

	warnings := vacation.CheckOverlap(period(t, "2024-06-04", "2024-06-04"), existing, 2)

	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Count)
}
