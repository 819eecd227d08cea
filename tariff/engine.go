package tariff

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE - Orchestrates normalization, resolution and accumulation
// =============================================================================

// Engine computes earnings. The zero value uses IntervalStrategy.
type Engine struct {
	Strategy Strategy
}

// NewEngine returns an engine using the given strategy, or the default
// IntervalStrategy when nil.
func NewEngine(strategy Strategy) *Engine {
	return &Engine{Strategy: strategy}
}

// ComputeEarnings prices req against the given configuration using the
// default strategy.
func ComputeEarnings(req WorkRequest, shifts []Shift, holidays []Holiday) (*EarningsResult, error) {
	var e Engine
	return e.Compute(req, Snapshot{Shifts: shifts, Holidays: holidays})
}

// Compute prices req against snap.
//
// Fails with ErrNoConfiguration when snap has no shifts (holidays alone are
// not enough) and with ErrInvalidInterval when the request cannot be
// normalized. Uncovered minutes are not an error: they count toward
// TotalMinutes but earn nothing and break segment continuity.
func (e *Engine) Compute(req WorkRequest, snap Snapshot) (*EarningsResult, error) {
	if len(snap.Shifts) == 0 {
		return nil, ErrNoConfiguration
	}

	startAbs, endAbs, err := Normalize(req)
	if err != nil {
		return nil, err
	}

	strategy := e.Strategy
	if strategy == nil {
		strategy = IntervalStrategy{}
	}
	spans := strategy.Accumulate(startAbs, endAbs, NewResolver(req.WorkDate, snap))

	total := endAbs - startAbs
	result := &EarningsResult{
		Request:       req,
		StartAbs:      startAbs,
		EndAbs:        endAbs,
		TotalMinutes:  total,
		TotalHours:    decimal.NewFromInt(int64(total)).Div(sixty),
		TotalEarnings: decimal.Zero,
		Breakdown:     make([]Segment, 0, len(spans)),
	}

	// Segment hours are differences of the running covered total, so their
	// sum is exactly covered/60 however the minutes split.
	covered := 0
	coveredHours := decimal.Zero
	for _, sp := range spans {
		covered += sp.End - sp.Start
		upTo := decimal.NewFromInt(int64(covered)).Div(sixty)
		seg := newSegment(sp, upTo.Sub(coveredHours))
		coveredHours = upTo
		result.TotalEarnings = result.TotalEarnings.Add(seg.Earnings)
		result.Breakdown = append(result.Breakdown, seg)
	}
	result.UncoveredMinutes = total - covered

	return result, nil
}
