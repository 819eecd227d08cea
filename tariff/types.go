/*
Package tariff provides the shift tariff resolution and earnings engine.

PURPOSE:
  Computes the pay owed for a single work interval given a set of hourly-rate
  shifts (time-of-day windows scoped to weekdays) and date-specific holiday
  rate overrides. Every minute of the interval is attributed to exactly one
  rate source (or none), adjacent minutes sharing a rate are merged into
  segments, and the segments are totalled.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: A recurring rate window, optionally limited to weekdays
  - Holiday: A date-specific override with full precedence over shifts
  - WorkRequest: The interval to price
  - Segment: A maximal span of uniform rate in the breakdown
  - EarningsResult: Totals plus breakdown, suitable for archival
  - Snapshot: The configuration captured once per computation

DESIGN PRINCIPLES:
  1. Purity: The engine never mutates its input and never reads stores
  2. Precision: Rates and earnings use decimal.Decimal
  3. Exactness: Minutes are the unit of account; hours are derived
  4. Snapshots: Configuration is passed explicitly, never held globally

USAGE:
  result, err := tariff.ComputeEarnings(tariff.WorkRequest{
      WorkDate:  tariff.NewDate(2025, time.March, 10),
      StartTime: "23:00",
      EndTime:   "01:00",
      Overnight: true,
  }, shifts, holidays)

SEE ALSO:
  - clock.go: Minute-of-day index (TimeIndex)
  - interval.go: Interval normalization
  - resolver.go: Per-minute rate resolution
  - accumulator.go: Segment accumulation strategies
  - engine.go: Orchestration
*/
package tariff

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// =============================================================================
// SHIFT - Recurring rate window
// =============================================================================

// Shift is a recurring hourly rate window. Start is inclusive, End exclusive.
// End <= Start means the window crosses midnight.
type Shift struct {
	ID       int64
	Start    ClockTime
	End      ClockTime
	Rate     decimal.Decimal
	Weekdays []time.Weekday // empty = every day
}

// Label describes the window, e.g. "22:00 - 06:00".
func (s Shift) Label() string {
	return s.Start.String() + " - " + s.End.String()
}

// CrossesMidnight reports whether the window wraps into the next day.
func (s Shift) CrossesMidnight() bool { return s.End <= s.Start }

// ActiveOn reports whether the shift applies on the given weekday.
// Shifts without weekdays apply every day.
func (s Shift) ActiveOn(wd time.Weekday) bool {
	if len(s.Weekdays) == 0 {
		return true
	}
	for _, d := range s.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// Contains reports whether the minute of day falls inside the window.
func (s Shift) Contains(minuteOfDay int) bool {
	if s.CrossesMidnight() {
		return minuteOfDay >= int(s.Start) || minuteOfDay < int(s.End)
	}
	return minuteOfDay >= int(s.Start) && minuteOfDay < int(s.End)
}

// Validate checks the shift invariants.
func (s Shift) Validate() error {
	if !s.Start.Valid() {
		return &ValidationError{Kind: ErrInvalidShift, Field: "start_time", Msg: "must be within one day"}
	}
	if !s.End.Valid() {
		return &ValidationError{Kind: ErrInvalidShift, Field: "end_time", Msg: "must be within one day"}
	}
	if s.Rate.IsNegative() {
		return &ValidationError{Kind: ErrInvalidShift, Field: "rate", Msg: "must not be negative"}
	}
	for _, d := range s.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return &ValidationError{Kind: ErrInvalidShift, Field: "weekdays", Msg: fmt.Sprintf("%d is not a weekday index (0-6)", d)}
		}
	}
	return nil
}

// Clone returns a copy that shares no memory with s.
func (s Shift) Clone() Shift {
	if s.Weekdays != nil {
		s.Weekdays = append([]time.Weekday(nil), s.Weekdays...)
	}
	return s
}

// SortShifts orders shifts by start time, keeping input order for equal starts.
func SortShifts(shifts []Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].Start < shifts[j].Start
	})
}

// =============================================================================
// HOLIDAY - Date-specific override
// =============================================================================

// Holiday overrides every shift for every minute of its date.
type Holiday struct {
	ID   int64
	Date Date
	Name string
	Rate decimal.Decimal
}

// Label is "Holiday" or "Holiday (<name>)".
func (h Holiday) Label() string {
	if name := strings.TrimSpace(h.Name); name != "" {
		return "Holiday (" + name + ")"
	}
	return "Holiday"
}

// Validate checks the holiday invariants.
func (h Holiday) Validate() error {
	if h.Date.IsZero() {
		return &ValidationError{Kind: ErrInvalidHoliday, Field: "date", Msg: "is required"}
	}
	if h.Rate.IsNegative() {
		return &ValidationError{Kind: ErrInvalidHoliday, Field: "rate", Msg: "must not be negative"}
	}
	return nil
}

// =============================================================================
// SNAPSHOT - Configuration captured once per computation
// =============================================================================

// Snapshot is the full shift and holiday configuration used for one
// computation. The engine reads nothing else.
type Snapshot struct {
	Shifts   []Shift
	Holidays []Holiday
}

// Validate checks every entry and rejects duplicate holiday dates.
func (s Snapshot) Validate() error {
	for _, sh := range s.Shifts {
		if err := sh.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[Date]bool, len(s.Holidays))
	for _, h := range s.Holidays {
		if err := h.Validate(); err != nil {
			return err
		}
		if seen[h.Date] {
			return fmt.Errorf("%w: %s", ErrDuplicateHoliday, h.Date)
		}
		seen[h.Date] = true
	}
	return nil
}

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// WorkRequest is the input to one computation. WorkDate anchors minute 0.
type WorkRequest struct {
	WorkDate  Date   `json:"work_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Overnight bool   `json:"overnight"`
}

// SegmentKind tells where a segment's rate came from.
type SegmentKind string

const (
	KindShift   SegmentKind = "shift"
	KindHoliday SegmentKind = "holiday"
)

// Segment is one contiguous span of uniform rate. Start and End are
// absolute minutes from the work date's midnight.
type Segment struct {
	Label    string          `json:"label"`
	Kind     SegmentKind     `json:"kind"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Minutes  int             `json:"minutes"`
	Hours    decimal.Decimal `json:"hours"`
	Rate     decimal.Decimal `json:"rate"`
	Earnings decimal.Decimal `json:"earnings"`
}

// newSegment builds the segment for sp. Hours is passed in by the engine so
// that segment hours always add up to the covered hours.
func newSegment(sp Span, hours decimal.Decimal) Segment {
	minutes := sp.End - sp.Start
	m := decimal.NewFromInt(int64(minutes))
	return Segment{
		Label:    sp.Rate.Label,
		Kind:     sp.Rate.Kind,
		Start:    sp.Start,
		End:      sp.End,
		Minutes:  minutes,
		Hours:    hours,
		Rate:     sp.Rate.Value,
		Earnings: sp.Rate.Value.Mul(m).Div(sixty),
	}
}

// HoursRounded is Hours rounded to two decimals for display.
func (s Segment) HoursRounded() decimal.Decimal { return s.Hours.Round(2) }

// EarningsResult is the outcome of one computation. It carries the original
// request so it can be archived as a history record unchanged.
type EarningsResult struct {
	Request          WorkRequest     `json:"request"`
	StartAbs         int             `json:"start_abs"`
	EndAbs           int             `json:"end_abs"`
	TotalMinutes     int             `json:"total_minutes"`
	UncoveredMinutes int             `json:"uncovered_minutes"`
	TotalHours       decimal.Decimal `json:"total_hours"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	Breakdown        []Segment       `json:"breakdown"`
}

// CoveredMinutes is the number of minutes attributed to some rate.
func (r EarningsResult) CoveredMinutes() int {
	return r.TotalMinutes - r.UncoveredMinutes
}

// UncoveredHours is TotalHours minus the segment hours, so the two always
// add back up to TotalHours.
func (r EarningsResult) UncoveredHours() decimal.Decimal {
	h := r.TotalHours
	for _, seg := range r.Breakdown {
		h = h.Sub(seg.Hours)
	}
	return h
}

// =============================================================================
// HISTORY RECORD - Archived result
// =============================================================================

// HistoryRecord is a write-once archive of one result.
type HistoryRecord struct {
	ID      int64
	Key     string // idempotency key, unique per store
	SavedAt time.Time
	Result  EarningsResult
}
