package tariff_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tariff-engine/tariff"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// monday is 2025-03-03.
var monday = tariff.NewDate(2025, time.March, 3)

func shift(id int64, start, end string, rate int64, days ...time.Weekday) tariff.Shift {
	return tariff.Shift{
		ID:       id,
		Start:    tariff.MustParseClock(start),
		End:      tariff.MustParseClock(end),
		Rate:     decimal.NewFromInt(rate),
		Weekdays: days,
	}
}

func holiday(id int64, date tariff.Date, name string, rate int64) tariff.Holiday {
	return tariff.Holiday{ID: id, Date: date, Name: name, Rate: decimal.NewFromInt(rate)}
}

// nightShifts are four consecutive windows from midnight to 06:00.
func nightShifts() []tariff.Shift {
	return []tariff.Shift{
		shift(1, "00:00", "02:00", 12),
		shift(2, "02:00", "04:00", 10),
		shift(3, "04:00", "05:00", 20),
		shift(4, "05:00", "06:00", 15),
	}
}

func request(date tariff.Date, start, end string, overnight bool) tariff.WorkRequest {
	return tariff.WorkRequest{WorkDate: date, StartTime: start, EndTime: end, Overnight: overnight}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// assertTotals checks the accounting identities every result must satisfy.
func assertTotals(t *testing.T, res *tariff.EarningsResult) {
	t.Helper()
	sum := decimal.Zero
	hours := decimal.Zero
	minutes := 0
	for _, seg := range res.Breakdown {
		sum = sum.Add(seg.Earnings)
		hours = hours.Add(seg.Hours)
		minutes += seg.Minutes
		assert.Equal(t, seg.End-seg.Start, seg.Minutes)
	}
	assert.True(t, sum.Equal(res.TotalEarnings), "total %s != sum %s", res.TotalEarnings, sum)
	assert.True(t, hours.LessThanOrEqual(res.TotalHours), "covered hours exceed total")
	assert.Equal(t, res.TotalMinutes, minutes+res.UncoveredMinutes)
	assert.Equal(t, res.UncoveredMinutes == 0, hours.Equal(res.TotalHours))
	assert.True(t, hours.Add(res.UncoveredHours()).Equal(res.TotalHours),
		"segment hours %s + uncovered %s != total %s", hours, res.UncoveredHours(), res.TotalHours)
	assert.Equal(t, res.TotalMinutes-res.UncoveredMinutes, res.CoveredMinutes())
}

// =============================================================================
// CONCRETE SCENARIOS
// =============================================================================

func TestCompute_FourNightShifts(t *testing.T) {
	// GIVEN: Four consecutive shifts covering 00:00-06:00 every day
	// WHEN: Pricing 00:00-06:00 on a Monday
	res, err := tariff.ComputeEarnings(request(monday, "00:00", "06:00", false), nightShifts(), nil)
	require.NoError(t, err)

	// THEN: One segment per shift, 6h, 79.00
	assertDecimal(t, "6", res.TotalHours)
	assertDecimal(t, "79", res.TotalEarnings)
	assert.Equal(t, "79.00", res.TotalEarnings.StringFixed(2))
	assert.Equal(t, 0, res.UncoveredMinutes)

	require.Len(t, res.Breakdown, 4)
	wants := []struct {
		label      string
		start, end int
		earnings   string
	}{
		{"00:00 - 02:00", 0, 120, "24"},
		{"02:00 - 04:00", 120, 240, "20"},
		{"04:00 - 05:00", 240, 300, "20"},
		{"05:00 - 06:00", 300, 360, "15"},
	}
	for i, w := range wants {
		seg := res.Breakdown[i]
		assert.Equal(t, w.label, seg.Label)
		assert.Equal(t, tariff.KindShift, seg.Kind)
		assert.Equal(t, w.start, seg.Start)
		assert.Equal(t, w.end, seg.End)
		assertDecimal(t, w.earnings, seg.Earnings, "segment %d", i)
	}
	assertTotals(t, res)
}

func TestCompute_OvernightWithUncoveredLead(t *testing.T) {
	// GIVEN: The night shifts; nothing covers 23:30-24:00
	// WHEN: Pricing 23:30-00:30 overnight
	res, err := tariff.ComputeEarnings(request(monday, "23:30", "00:30", true), nightShifts(), nil)
	require.NoError(t, err)

	// THEN: 1h elapsed, one 30min segment at 12
	assertDecimal(t, "1", res.TotalHours)
	assert.Equal(t, 30, res.UncoveredMinutes)
	require.Len(t, res.Breakdown, 1)

	seg := res.Breakdown[0]
	assert.Equal(t, "00:00 - 02:00", seg.Label)
	assert.Equal(t, tariff.MinutesPerDay, seg.Start)
	assert.Equal(t, tariff.MinutesPerDay+30, seg.End)
	assertDecimal(t, "0.5", seg.Hours)
	assertDecimal(t, "6", seg.Earnings)
	assert.Equal(t, "6.00", res.TotalEarnings.StringFixed(2))
	assertTotals(t, res)
}

func TestCompute_HolidayOverridesWholeInterval(t *testing.T) {
	// GIVEN: The night shifts and a holiday on the work date at 25
	holidays := []tariff.Holiday{holiday(1, monday, "", 25)}

	// WHEN: Pricing 00:00-06:00
	res, err := tariff.ComputeEarnings(request(monday, "00:00", "06:00", false), nightShifts(), holidays)
	require.NoError(t, err)

	// THEN: A single holiday segment for the whole interval
	require.Len(t, res.Breakdown, 1)
	seg := res.Breakdown[0]
	assert.Equal(t, "Holiday", seg.Label)
	assert.Equal(t, tariff.KindHoliday, seg.Kind)
	assert.Equal(t, 360, seg.Minutes)
	assertDecimal(t, "25", seg.Rate)
	assertDecimal(t, "150", res.TotalEarnings)
	assertTotals(t, res)
}

func TestCompute_HolidayCoversUnshiftedMinutes(t *testing.T) {
	// GIVEN: A holiday on a date where no shift covers the afternoon
	holidays := []tariff.Holiday{holiday(1, monday, "Founders Day", 30)}

	// WHEN: Pricing 13:00-15:00
	res, err := tariff.ComputeEarnings(request(monday, "13:00", "15:00", false), nightShifts(), holidays)
	require.NoError(t, err)

	// THEN: The holiday still prices every minute
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "Holiday (Founders Day)", res.Breakdown[0].Label)
	assert.Equal(t, 0, res.UncoveredMinutes)
	assertDecimal(t, "60", res.TotalEarnings)
}

// =============================================================================
// OVERNIGHT ATTRIBUTION
// =============================================================================

func TestCompute_OvernightAttributesMinutesToCalendarDay(t *testing.T) {
	// GIVEN: A Monday-only late shift and a Tuesday-only early shift
	shifts := []tariff.Shift{
		shift(1, "22:00", "00:00", 10, time.Monday),
		shift(2, "00:00", "06:00", 20, time.Tuesday),
	}

	// WHEN: Pricing Monday 23:00 to 01:00 overnight
	res, err := tariff.ComputeEarnings(request(monday, "23:00", "01:00", true), shifts, nil)
	require.NoError(t, err)

	// THEN: 23:00-24:00 uses Monday's shift, 00:00-01:00 uses Tuesday's
	assertDecimal(t, "2", res.TotalHours)
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, "22:00 - 00:00", res.Breakdown[0].Label)
	assert.Equal(t, 23*60, res.Breakdown[0].Start)
	assert.Equal(t, tariff.MinutesPerDay, res.Breakdown[0].End)
	assert.Equal(t, "00:00 - 06:00", res.Breakdown[1].Label)
	assert.Equal(t, tariff.MinutesPerDay, res.Breakdown[1].Start)
	assertDecimal(t, "30", res.TotalEarnings)
	assertTotals(t, res)
}

func TestCompute_OvernightNextDayHoliday(t *testing.T) {
	// GIVEN: The same shifts and a holiday on Tuesday
	shifts := []tariff.Shift{
		shift(1, "22:00", "00:00", 10, time.Monday),
		shift(2, "00:00", "06:00", 20, time.Tuesday),
	}
	holidays := []tariff.Holiday{holiday(7, monday.AddDays(1), "", 25)}

	// WHEN: Pricing Monday 23:00 to 01:00 overnight
	res, err := tariff.ComputeEarnings(request(monday, "23:00", "01:00", true), shifts, holidays)
	require.NoError(t, err)

	// THEN: Only the post-midnight hour becomes holiday
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, tariff.KindShift, res.Breakdown[0].Kind)
	assert.Equal(t, tariff.KindHoliday, res.Breakdown[1].Kind)
	assertDecimal(t, "35", res.TotalEarnings)
}

func TestCompute_CrossMidnightShiftMergesIntoOneSegment(t *testing.T) {
	// GIVEN: One every-day shift spanning midnight
	shifts := []tariff.Shift{shift(1, "22:00", "06:00", 18)}

	// WHEN: Pricing 23:00-01:00 overnight
	res, err := tariff.ComputeEarnings(request(monday, "23:00", "01:00", true), shifts, nil)
	require.NoError(t, err)

	// THEN: The two calendar days collapse into one segment
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, 120, res.Breakdown[0].Minutes)
	assertDecimal(t, "36", res.TotalEarnings)
}

func TestCompute_CrossMidnightShiftFollowsMinuteWeekday(t *testing.T) {
	// GIVEN: A Monday-only shift 22:00-06:00
	shifts := []tariff.Shift{shift(1, "22:00", "06:00", 18, time.Monday)}

	// WHEN: Pricing Monday 23:00 to Tuesday 01:00
	res, err := tariff.ComputeEarnings(request(monday, "23:00", "01:00", true), shifts, nil)
	require.NoError(t, err)

	// THEN: Tuesday's minutes are uncovered
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, 60, res.Breakdown[0].Minutes)
	assert.Equal(t, 60, res.UncoveredMinutes)
	assertTotals(t, res)
}

// =============================================================================
// RESOLUTION RULES
// =============================================================================

func TestCompute_OverlapEarlierStartWins(t *testing.T) {
	// GIVEN: Overlapping shifts, listed later-start first
	shifts := []tariff.Shift{
		shift(1, "10:00", "14:00", 20),
		shift(2, "08:00", "12:00", 10),
	}

	// WHEN: Pricing 09:00-13:00
	res, err := tariff.ComputeEarnings(request(monday, "09:00", "13:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: 08:00 shift owns 09:00-12:00, 10:00 shift only 12:00-13:00
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, "08:00 - 12:00", res.Breakdown[0].Label)
	assert.Equal(t, 180, res.Breakdown[0].Minutes)
	assert.Equal(t, "10:00 - 14:00", res.Breakdown[1].Label)
	assert.Equal(t, 60, res.Breakdown[1].Minutes)
	assertDecimal(t, "50", res.TotalEarnings)
}

func TestCompute_EqualStartKeepsInputOrder(t *testing.T) {
	// GIVEN: Two shifts starting at the same time
	shifts := []tariff.Shift{
		shift(5, "08:00", "10:00", 30),
		shift(1, "08:00", "12:00", 10),
	}

	// WHEN: Pricing 08:00-09:00
	res, err := tariff.ComputeEarnings(request(monday, "08:00", "09:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: The first listed wins
	require.Len(t, res.Breakdown, 1)
	assertDecimal(t, "30", res.Breakdown[0].Rate)
}

func TestCompute_WeekdayFilter(t *testing.T) {
	// GIVEN: A weekend-only shift and an every-day shift
	shifts := []tariff.Shift{
		shift(1, "08:00", "16:00", 40, time.Saturday, time.Sunday),
		shift(2, "09:00", "17:00", 15),
	}

	// WHEN: Pricing 09:00-10:00 on Monday and on Saturday
	weekday, err := tariff.ComputeEarnings(request(monday, "09:00", "10:00", false), shifts, nil)
	require.NoError(t, err)
	saturday, err := tariff.ComputeEarnings(request(monday.AddDays(5), "09:00", "10:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: Monday falls through to the every-day shift
	assertDecimal(t, "15", weekday.TotalEarnings)
	assertDecimal(t, "40", saturday.TotalEarnings)
}

func TestCompute_GapSplitsEqualRates(t *testing.T) {
	// GIVEN: Two windows at the same rate with a gap between them
	shifts := []tariff.Shift{
		shift(1, "08:00", "10:00", 10),
		shift(2, "11:00", "13:00", 10),
	}

	// WHEN: Pricing across the gap
	res, err := tariff.ComputeEarnings(request(monday, "09:00", "12:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: Two segments, uncovered hour counted but unpaid
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, 60, res.UncoveredMinutes)
	assertDecimal(t, "3", res.TotalHours)
	assertDecimal(t, "20", res.TotalEarnings)
	assertTotals(t, res)
}

func TestCompute_ThirdsOfAnHourAddUp(t *testing.T) {
	// GIVEN: Three 20 minute windows filling one hour
	shifts := []tariff.Shift{
		shift(1, "00:00", "00:20", 10),
		shift(2, "00:20", "00:40", 12),
		shift(3, "00:40", "01:00", 15),
	}

	// WHEN: Pricing the whole hour
	res, err := tariff.ComputeEarnings(request(monday, "00:00", "01:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: Fully covered, so segment hours add up to exactly one hour
	require.Len(t, res.Breakdown, 3)
	assert.Equal(t, 0, res.UncoveredMinutes)
	assertDecimal(t, "1", res.TotalHours)
	assertDecimal(t, "0", res.UncoveredHours())
	for _, seg := range res.Breakdown {
		assert.Equal(t, "0.33", seg.HoursRounded().StringFixed(2))
	}
	assert.Equal(t, "12.33", res.TotalEarnings.StringFixed(2))
	assertTotals(t, res)
}

func TestCompute_ThirdsWithGapKeepUncoveredExact(t *testing.T) {
	// GIVEN: 20 minute windows with a 20 minute hole in the middle
	shifts := []tariff.Shift{
		shift(1, "00:00", "00:20", 10),
		shift(2, "00:40", "01:00", 15),
	}

	// WHEN: Pricing the whole hour
	res, err := tariff.ComputeEarnings(request(monday, "00:00", "01:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: Covered and uncovered parts still sum to the hour
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, 20, res.UncoveredMinutes)
	assert.Equal(t, 40, res.CoveredMinutes())
	assert.Equal(t, "0.33", res.UncoveredHours().StringFixed(2))
	assertTotals(t, res)
}

func TestCompute_DuplicateHolidayLowestIDWins(t *testing.T) {
	// GIVEN: Two holidays on the same date
	holidays := []tariff.Holiday{
		holiday(9, monday, "Later", 50),
		holiday(3, monday, "Earlier", 20),
	}

	// WHEN: Pricing an hour on that date
	res, err := tariff.ComputeEarnings(request(monday, "10:00", "11:00", false), nightShifts(), holidays)
	require.NoError(t, err)

	// THEN: The lowest id is used
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "Holiday (Earlier)", res.Breakdown[0].Label)
	assertDecimal(t, "20", res.TotalEarnings)
}

func TestCompute_FractionalRate(t *testing.T) {
	// GIVEN: A rate that does not divide evenly by 60
	shifts := []tariff.Shift{{Start: 0, End: 0, Rate: decimal.RequireFromString("12.35")}}

	// WHEN: Pricing 7 minutes
	res, err := tariff.ComputeEarnings(request(monday, "10:00", "10:07", false), shifts, nil)
	require.NoError(t, err)

	// THEN: Earnings are exact and round only for display
	assert.Equal(t, "1.44", res.TotalEarnings.StringFixed(2))
	assertTotals(t, res)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestCompute_NonOvernightReversedIsInvalid(t *testing.T) {
	_, err := tariff.ComputeEarnings(request(monday, "10:00", "09:00", false), nightShifts(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, tariff.ErrInvalidInterval))
	var ie *tariff.IntervalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "10:00", ie.StartTime)
}

func TestCompute_NoShiftsIsNoConfiguration(t *testing.T) {
	// GIVEN: Only holidays configured
	holidays := []tariff.Holiday{holiday(1, monday, "", 25)}

	_, err := tariff.ComputeEarnings(request(monday, "10:00", "11:00", false), nil, holidays)

	assert.ErrorIs(t, err, tariff.ErrNoConfiguration)
}

func TestCompute_NoConfigurationCheckedFirst(t *testing.T) {
	_, err := tariff.ComputeEarnings(request(monday, "bad", "09:00", false), nil, nil)

	assert.ErrorIs(t, err, tariff.ErrNoConfiguration)
}

func TestCompute_MalformedTimeIsInvalid(t *testing.T) {
	_, err := tariff.ComputeEarnings(request(monday, "25:00", "09:00", true), nightShifts(), nil)

	assert.ErrorIs(t, err, tariff.ErrInvalidInterval)
	var fe *tariff.TimeFormatError
	assert.ErrorAs(t, err, &fe)
}

// =============================================================================
// PURITY
// =============================================================================

func TestCompute_DoesNotMutateInput(t *testing.T) {
	// GIVEN: Shifts out of start order with weekday slices
	shifts := []tariff.Shift{
		shift(2, "12:00", "18:00", 10, time.Monday),
		shift(1, "06:00", "12:00", 12, time.Monday, time.Tuesday),
	}
	before := []tariff.Shift{shifts[0].Clone(), shifts[1].Clone()}

	// WHEN: Computing
	_, err := tariff.ComputeEarnings(request(monday, "06:00", "18:00", false), shifts, nil)
	require.NoError(t, err)

	// THEN: Order and contents unchanged
	assert.Equal(t, before, shifts)
}

func TestEngine_StrategiesAgreeOnScenario(t *testing.T) {
	snap := tariff.Snapshot{Shifts: nightShifts()}
	req := request(monday, "01:30", "05:30", false)

	sweep, err := tariff.NewEngine(tariff.SweepStrategy{}).Compute(req, snap)
	require.NoError(t, err)
	interval, err := tariff.NewEngine(tariff.IntervalStrategy{}).Compute(req, snap)
	require.NoError(t, err)

	assert.Equal(t, sweep.Breakdown, interval.Breakdown)
	assert.True(t, sweep.TotalEarnings.Equal(interval.TotalEarnings))
}
