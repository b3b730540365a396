/*
calendar.go - Dates, ranges and work-day arithmetic

PURPOSE:
  Day-granularity date handling for the vacation engine. A request covers
  an inclusive range of calendar dates; its cost is the number of work
  days (Monday to Friday) inside that range, and its footprint for overlap
  accounting is the full set of calendar dates it spans.

KEY TYPES:
  TimePoint: A calendar date at UTC midnight
  Period:    Inclusive [Start, End] date range

WORK DAYS:
  WorkDays counts Mon-Fri dates in [start, end]. Public holidays are NOT
  excluded; a work day is purely a weekday.

MALFORMED RANGES:
  A range with End before Start, or a pair of strings that only parse as
  timestamps, falls back to the raw inclusive calendar-day count
  (end - start + 1). The fallback is kept for compatibility with existing
  data and is always reported through FallbackLogger so it is never silent.

EXAMPLE:
  p := Period{Start: NewTimePoint(2024, time.June, 3), End: NewTimePoint(2024, time.June, 9)}
  p.WorkDays()   // 5
  for d := range p.Dates() { ... } // 7 dates, Mon..Sun

SEE ALSO:
  - overlap.go: Uses Period.Dates for per-date occupancy
  - request.go: Computes work_days at creation time
*/
package vacation

import (
	"fmt"
	"iter"
	"log"
	"time"
)

// DateLayout is the wire format for request dates.
const DateLayout = "2006-01-02"

// =============================================================================
// TIME POINT - A calendar date
// =============================================================================

type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: invalid date %q (use YYYY-MM-DD)", ErrValidation, s)
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }

// Arithmetic and properties
func (tp TimePoint) AddDays(n int) TimePoint      { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) Year() int                    { return tp.Time.Year() }
func (tp TimePoint) Weekday() time.Weekday        { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool                 { return tp.Time.IsZero() }
func (tp TimePoint) String() string               { return tp.Time.Format(DateLayout) }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsWorkday() bool { return !tp.IsWeekend() }

// DaysBetween returns the signed number of calendar days from -> to.
func DaysBetween(from, to TimePoint) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

type Period struct {
	Start TimePoint
	End   TimePoint
}

// ParsePeriod parses two strict dates and rejects End before Start.
func ParsePeriod(start, end string) (Period, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Period{}, err
	}
	p := Period{Start: s, End: e}
	if !p.Valid() {
		return Period{}, fmt.Errorf("%w: start date %s is after end date %s", ErrValidation, s, e)
	}
	return p, nil
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool { return p.Start.BeforeOrEqual(p.End) }

// Contains returns true if t is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Overlaps reports whether the two ranges share at least one date.
func (p Period) Overlaps(other Period) bool {
	return !p.End.Before(other.Start) && !other.End.Before(p.Start)
}

// Dates yields every calendar date in the period, inclusive. Empty when
// the period is malformed.
func (p Period) Dates() iter.Seq[TimePoint] {
	return func(yield func(TimePoint) bool) {
		for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// CalendarDays is the raw inclusive day count, end - start + 1.
func (p Period) CalendarDays() int { return DaysBetween(p.Start, p.End) + 1 }

// WorkDays counts Mon-Fri dates in the period. A reversed period counts 0.
func (p Period) WorkDays() int {
	if !p.Valid() {
		FallbackLogger.Printf("[Calendar] reversed range %s..%s, counting 0 work days", p.Start, p.End)
		return 0
	}
	n := 0
	for d := range p.Dates() {
		if d.IsWorkday() {
			n++
		}
	}
	return n
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// CALENDAR UTILITY - Free functions used by the request layer
// =============================================================================

// FallbackLogger receives a line every time a work-day count degrades.
// Replaceable in tests.
var FallbackLogger = log.Default()

// WorkDays counts Mon-Fri dates in [start, end].
func WorkDays(start, end TimePoint) int {
	return Period{Start: start, End: end}.WorkDays()
}

// OccupiedDates yields every calendar date in [start, end].
func OccupiedDates(start, end TimePoint) iter.Seq[TimePoint] {
	return Period{Start: start, End: end}.Dates()
}

// ComputeWorkDays counts work days between two wire-format dates.
// Strings that fail YYYY-MM-DD but parse as RFC 3339 timestamps fall back
// to the raw inclusive calendar-day count. Unparseable input counts 0.
func ComputeWorkDays(start, end string) int {
	s, errS := ParseDate(start)
	e, errE := ParseDate(end)
	if errS == nil && errE == nil {
		return WorkDays(s, e)
	}

	ts, errS := time.Parse(time.RFC3339, start)
	te, errE := time.Parse(time.RFC3339, end)
	if errS != nil || errE != nil {
		FallbackLogger.Printf("[Calendar] cannot parse range %q..%q, counting 0 work days", start, end)
		return 0
	}
	n := max(0, Period{Start: DateOf(ts), End: DateOf(te)}.CalendarDays())
	FallbackLogger.Printf("[Calendar] non-date range %q..%q, counting %d raw calendar days", start, end, n)
	return n
}
