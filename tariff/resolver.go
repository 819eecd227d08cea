package tariff

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE - Resolved rate for one minute
// =============================================================================

// Rate is what a single minute resolves to. Two minutes belong to the same
// segment only if their rates are Same.
type Rate struct {
	Label string
	Kind  SegmentKind
	Value decimal.Decimal
}

// Same reports whether r and o would be merged into one segment.
func (r Rate) Same(o Rate) bool {
	return r.Label == o.Label && r.Kind == o.Kind && r.Value.Equal(o.Value)
}

func shiftRate(s Shift) Rate {
	return Rate{Label: s.Label(), Kind: KindShift, Value: s.Rate}
}

func holidayRate(h Holiday) Rate {
	return Rate{Label: h.Label(), Kind: KindHoliday, Value: h.Rate}
}

// =============================================================================
// RESOLVER - Per-minute rate lookup over a fixed snapshot
// =============================================================================

// Resolver answers which rate applies at an absolute minute. It is built
// once per computation and never re-reads configuration.
//
// Precedence:
//  1. A holiday on the minute's calendar date wins outright.
//  2. Otherwise the first shift, by ascending start time, that is active on
//     the calendar date's weekday and whose window contains the minute.
//  3. Otherwise the minute is uncovered.
type Resolver struct {
	workDate Date
	shifts   []Shift // sorted by Start, stable
	holidays map[Date]Holiday
}

// NewResolver captures a private copy of the snapshot anchored at workDate.
//
// If several holidays share a date, the one with the lowest ID is used;
// equal IDs keep input order.
func NewResolver(workDate Date, snap Snapshot) *Resolver {
	shifts := make([]Shift, len(snap.Shifts))
	for i, s := range snap.Shifts {
		shifts[i] = s.Clone()
	}
	SortShifts(shifts)

	holidays := make([]Holiday, len(snap.Holidays))
	copy(holidays, snap.Holidays)
	sort.SliceStable(holidays, func(i, j int) bool { return holidays[i].ID < holidays[j].ID })

	byDate := make(map[Date]Holiday, len(holidays))
	for _, h := range holidays {
		if _, exists := byDate[h.Date]; !exists {
			byDate[h.Date] = h
		}
	}

	return &Resolver{workDate: workDate, shifts: shifts, holidays: byDate}
}

// DateAt returns the calendar date of the given day offset from the work date.
func (r *Resolver) DateAt(dayOffset int) Date {
	return r.workDate.AddDays(dayOffset)
}

// Resolve returns the rate for an absolute minute, or false if uncovered.
func (r *Resolver) Resolve(absMinute int) (Rate, bool) {
	day := floorDiv(absMinute, MinutesPerDay)
	minuteOfDay := absMinute - day*MinutesPerDay
	date := r.DateAt(day)

	if h, ok := r.holidays[date]; ok {
		return holidayRate(h), true
	}

	wd := date.Weekday()
	for _, s := range r.shifts {
		if s.ActiveOn(wd) && s.Contains(minuteOfDay) {
			return shiftRate(s), true
		}
	}
	return Rate{}, false
}

// dayCoverage returns the rate spans of one calendar day clipped to the
// minute-of-day range [lo, hi), in day-local minutes. Adjacent spans with
// the same rate are already merged.
func (r *Resolver) dayCoverage(dayOffset, lo, hi int) []Span {
	date := r.DateAt(dayOffset)
	if h, ok := r.holidays[date]; ok {
		return []Span{{Start: lo, End: hi, Rate: holidayRate(h)}}
	}

	wd := date.Weekday()
	active := make([]Shift, 0, len(r.shifts))
	cuts := []int{lo, hi}
	for _, s := range r.shifts {
		if !s.ActiveOn(wd) {
			continue
		}
		active = append(active, s)
		for _, c := range [2]int{int(s.Start), int(s.End)} {
			if c > lo && c < hi {
				cuts = append(cuts, c)
			}
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.Ints(cuts)

	// No window boundary falls strictly inside [cuts[i], cuts[i+1]), so
	// every shift either contains the whole range or none of it.
	var spans []Span
	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]
		if a == b {
			continue
		}
		for _, s := range active {
			if s.Contains(a) {
				spans = appendMerged(spans, Span{Start: a, End: b, Rate: shiftRate(s)})
				break
			}
		}
	}
	return spans
}
