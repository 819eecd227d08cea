package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tariff-engine/tariff"
	"github.com/warp/tariff-engine/tariff/store"
)

func newShift(start, end string, rate int64, days ...time.Weekday) tariff.Shift {
	return tariff.Shift{
		Start:    tariff.MustParseClock(start),
		End:      tariff.MustParseClock(end),
		Rate:     decimal.NewFromInt(rate),
		Weekdays: days,
	}
}

func savedRecord(key string, at time.Time) tariff.HistoryRecord {
	return tariff.HistoryRecord{
		Key:     key,
		SavedAt: at,
		Result: tariff.EarningsResult{
			Request:       tariff.WorkRequest{WorkDate: tariff.NewDate(2025, time.March, 3), StartTime: "08:00", EndTime: "09:00"},
			TotalMinutes:  60,
			TotalHours:    decimal.NewFromInt(1),
			TotalEarnings: decimal.NewFromInt(12),
		},
	}
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestMemory_ShiftsOrderedByStart(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: Shifts added out of order
	_, err := m.AddShift(ctx, newShift("12:00", "18:00", 10))
	require.NoError(t, err)
	_, err = m.AddShift(ctx, newShift("06:00", "12:00", 12, time.Monday))
	require.NoError(t, err)

	// WHEN: Listing
	shifts, err := m.ListShifts(ctx)
	require.NoError(t, err)

	// THEN: Ordered by start time
	require.Len(t, shifts, 2)
	assert.Equal(t, "06:00 - 12:00", shifts[0].Label())
	assert.Equal(t, []time.Weekday{time.Monday}, shifts[0].Weekdays)
	assert.Equal(t, "12:00 - 18:00", shifts[1].Label())
}

func TestMemory_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	_, err := m.AddShift(ctx, newShift("06:00", "12:00", 12, time.Monday))
	require.NoError(t, err)

	shifts, _ := m.ListShifts(ctx)
	shifts[0].Weekdays[0] = time.Sunday

	again, _ := m.ListShifts(ctx)
	assert.Equal(t, time.Monday, again[0].Weekdays[0])
}

func TestMemory_UpdateAndDeleteShift(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	id, err := m.AddShift(ctx, newShift("06:00", "12:00", 12))
	require.NoError(t, err)

	updated := newShift("07:00", "12:00", 14)
	updated.ID = id
	require.NoError(t, m.UpdateShift(ctx, updated))

	shifts, _ := m.ListShifts(ctx)
	require.Len(t, shifts, 1)
	assert.Equal(t, tariff.MustParseClock("07:00"), shifts[0].Start)

	require.NoError(t, m.DeleteShift(ctx, id))
	assert.ErrorIs(t, m.DeleteShift(ctx, id), tariff.ErrNotFound)

	updated.ID = 999
	assert.ErrorIs(t, m.UpdateShift(ctx, updated), tariff.ErrNotFound)
}

func TestMemory_RejectsInvalidShift(t *testing.T) {
	_, err := store.NewMemory().AddShift(context.Background(), newShift("06:00", "12:00", -5))

	assert.ErrorIs(t, err, tariff.ErrInvalidShift)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestMemory_DuplicateHolidayDate(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	date := tariff.NewDate(2025, time.December, 25)

	_, err := m.AddHoliday(ctx, tariff.Holiday{Date: date, Name: "Christmas", Rate: decimal.NewFromInt(30)})
	require.NoError(t, err)

	_, err = m.AddHoliday(ctx, tariff.Holiday{Date: date, Rate: decimal.NewFromInt(40)})
	assert.ErrorIs(t, err, tariff.ErrDuplicateHoliday)

	holidays, _ := m.ListHolidays(ctx)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Christmas", holidays[0].Name)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestMemory_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	base := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

	// GIVEN: Two records at the same instant and one later
	_, err := m.AppendHistory(ctx, savedRecord("a", base))
	require.NoError(t, err)
	_, err = m.AppendHistory(ctx, savedRecord("b", base))
	require.NoError(t, err)
	_, err = m.AppendHistory(ctx, savedRecord("c", base.Add(time.Minute)))
	require.NoError(t, err)

	// WHEN: Listing
	all, err := m.ListHistory(ctx, 0)
	require.NoError(t, err)

	// THEN: Newest first, ties by higher id
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].Key, all[1].Key, all[2].Key})

	limited, _ := m.ListHistory(ctx, 2)
	assert.Len(t, limited, 2)
}

func TestMemory_HistoryIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: A saved record with a breakdown
	rec := savedRecord("k1", time.Now())
	rec.Result.Breakdown = []tariff.Segment{{Label: "08:00 - 09:00", Start: 480, End: 540, Minutes: 60}}
	_, err := m.AppendHistory(ctx, rec)
	require.NoError(t, err)

	// WHEN: The caller edits its result and a listed copy afterwards
	rec.Result.Breakdown[0].Label = "edited"
	listed, err := m.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Result.Breakdown[0].Label = "edited"

	// THEN: The archive is unchanged
	again, err := m.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, again[0].Result.Breakdown, 1)
	assert.Equal(t, "08:00 - 09:00", again[0].Result.Breakdown[0].Label)
}

func TestMemory_HistoryIdempotencyAndClear(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, err := m.AppendHistory(ctx, savedRecord("k1", time.Now()))
	require.NoError(t, err)
	_, err = m.AppendHistory(ctx, savedRecord("k1", time.Now()))
	assert.ErrorIs(t, err, tariff.ErrDuplicateIdempotencyKey)

	require.NoError(t, m.ClearHistory(ctx))
	all, _ := m.ListHistory(ctx, 0)
	assert.Empty(t, all)

	// Keys are released by a clear.
	_, err = m.AppendHistory(ctx, savedRecord("k1", time.Now()))
	assert.NoError(t, err)
}

// =============================================================================
// REPLACE
// =============================================================================

func TestMemory_ReplaceConfig(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	_, err := m.AddShift(ctx, newShift("06:00", "12:00", 12))
	require.NoError(t, err)

	// GIVEN: An invalid replacement
	bad := tariff.Snapshot{Shifts: []tariff.Shift{newShift("00:00", "06:00", -1)}}
	assert.ErrorIs(t, m.ReplaceConfig(ctx, bad), tariff.ErrInvalidShift)

	// THEN: Existing configuration survives
	snap, err := tariff.TakeSnapshot(ctx, m)
	require.NoError(t, err)
	require.Len(t, snap.Shifts, 1)

	// WHEN: A valid replacement
	good := tariff.Snapshot{
		Shifts:   []tariff.Shift{newShift("22:00", "06:00", 18), newShift("06:00", "22:00", 12)},
		Holidays: []tariff.Holiday{{Date: tariff.NewDate(2025, time.January, 1), Rate: decimal.NewFromInt(25)}},
	}
	require.NoError(t, m.ReplaceConfig(ctx, good))

	snap, err = tariff.TakeSnapshot(ctx, m)
	require.NoError(t, err)
	assert.Len(t, snap.Shifts, 2)
	assert.Len(t, snap.Holidays, 1)
	assert.Equal(t, "06:00 - 22:00", snap.Shifts[0].Label())
}
