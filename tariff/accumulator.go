package tariff

// =============================================================================
// SEGMENT ACCUMULATION
// =============================================================================
//
// A strategy walks the normalized interval [startAbs, endAbs) through a
// Resolver and returns the covered spans in chronological order:
//   - consecutive minutes with the Same rate form one span
//   - any change of rate, including to or from uncovered, closes the span
//   - uncovered minutes are never emitted
//
// SweepStrategy is the minute-by-minute reference. IntervalStrategy computes
// the same spans from window boundaries without a minute loop and is the
// default.

// Span is a half-open range of absolute minutes resolved to one rate.
type Span struct {
	Start int
	End   int
	Rate  Rate
}

// Strategy turns a normalized interval into covered spans.
type Strategy interface {
	Accumulate(startAbs, endAbs int, r *Resolver) []Span
}

// SweepStrategy resolves every minute individually. O(duration).
type SweepStrategy struct{}

func (SweepStrategy) Accumulate(startAbs, endAbs int, r *Resolver) []Span {
	var spans []Span
	for m := startAbs; m < endAbs; m++ {
		rate, ok := r.Resolve(m)
		if !ok {
			continue
		}
		spans = appendMerged(spans, Span{Start: m, End: m + 1, Rate: rate})
	}
	return spans
}

// IntervalStrategy intersects the interval with each touched calendar day's
// coverage. O(days * shifts^2), independent of the interval length.
type IntervalStrategy struct{}

func (IntervalStrategy) Accumulate(startAbs, endAbs int, r *Resolver) []Span {
	var spans []Span
	for day := floorDiv(startAbs, MinutesPerDay); day*MinutesPerDay < endAbs; day++ {
		base := day * MinutesPerDay
		lo := max(startAbs, base) - base
		hi := min(endAbs, base+MinutesPerDay) - base
		for _, sp := range r.dayCoverage(day, lo, hi) {
			spans = appendMerged(spans, Span{Start: base + sp.Start, End: base + sp.End, Rate: sp.Rate})
		}
	}
	return spans
}

// appendMerged extends the last span when s continues it without a gap
// and with the same rate; otherwise it appends s.
func appendMerged(spans []Span, s Span) []Span {
	if n := len(spans); n > 0 && spans[n-1].End == s.Start && spans[n-1].Rate.Same(s.Rate) {
		spans[n-1].End = s.End
		return spans
	}
	return append(spans, s)
}
