/*
overlap.go - Department capacity check for a candidate vacation

PURPOSE:
  Before (or while) a request is considered, tell the caller on which
  dates the department would have too many people away. The check is
  ADVISORY: it produces warnings, it never blocks a request.

ALGORITHM:
  1. Collect the calendar dates of the candidate range.
  2. For every APPROVED request, walk its dates; each date inside the
     candidate set gets +1 and the request owner appended.
  3. Every date whose count of existing occupants is >= maxAllowed
     yields a warning with Count = occupants + 1 (the candidate).

COUNTING RULE:
  The increment is per approved request covering the date. Two requests
  by the same user covering the same date count twice.

COMPLEXITY:
  O(days_in_range x approved_requests). Departments are small.

SEE ALSO:
  - calendar.go: Period.Dates
  - request.go: CheckDepartmentOverlap loads the department's requests
*/
package vacation

import (
	"sort"
	"time"
)

type occupancy struct {
	count     int
	employees []string
}

// CheckOverlap returns a warning for every date in candidate where the
// approved requests already reach maxAllowed. Non-approved requests are
// ignored. Warnings are ordered by date.
func CheckOverlap(candidate Period, requests []Request, maxAllowed int) []OverlapWarning {
	requested := make(map[time.Time]struct{})
	for d := range candidate.Dates() {
		requested[d.Time] = struct{}{}
	}

	counts := make(map[time.Time]*occupancy)
	for _, r := range requests {
		if r.Status != StatusApproved {
			continue
		}
		for d := range r.Period.Dates() {
			if _, ok := requested[d.Time]; !ok {
				continue
			}
			occ := counts[d.Time]
			if occ == nil {
				occ = &occupancy{}
				counts[d.Time] = occ
			}
			occ.count++
			occ.employees = append(occ.employees, r.UserID)
		}
	}

	warnings := make([]OverlapWarning, 0)
	for day, occ := range counts {
		if occ.count < maxAllowed {
			continue
		}
		warnings = append(warnings, OverlapWarning{
			Date:       TimePoint{Time: day},
			Count:      occ.count + 1,
			Employees:  occ.employees,
			MaxAllowed: maxAllowed,
		})
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Date.Before(warnings[j].Date)
	})
	return warnings
}
