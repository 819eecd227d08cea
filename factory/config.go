/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON shift and holiday definitions into tariff.Shift and
  tariff.Holiday values, and back. The same JSON shapes are used by the
  HTTP API, the CLI, and configuration files, so a document exported from
  one can be imported by the others.

JSON SCHEMA:
  {
    "shifts": [
      {"start_time": "22:00", "end_time": "06:00", "rate": 18.5, "weekdays": [5, 6]},
      {"start_time": "06:00", "end_time": "22:00", "rate": "12"}
    ],
    "holidays": [
      {"date": "2025-12-25", "name": "Christmas", "rate": 30}
    ]
  }

  - rate accepts a JSON number or a decimal string
  - weekdays are 0-6 with Sunday = 0; absent or empty means every day
  - end_time at or before start_time means the window crosses midnight

KEY FEATURES:
  - Validates every entry (times, rates, weekdays)
  - Rejects duplicate holiday dates within one document
  - Provides the default shift set used to seed an empty store

SEE ALSO:
  - tariff/types.go: Shift and Holiday definitions
  - api/dto.go: Embeds these JSON types
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/tariff-engine/tariff"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ShiftJSON is the JSON representation of a shift.
type ShiftJSON struct {
	ID        int64           `json:"id,omitempty"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Rate      decimal.Decimal `json:"rate"`
	Weekdays  []int           `json:"weekdays,omitempty"`
	Label     string          `json:"label,omitempty"` // output only
}

// HolidayJSON is the JSON representation of a holiday.
type HolidayJSON struct {
	ID   int64           `json:"id,omitempty"`
	Date string          `json:"date"`
	Name string          `json:"name,omitempty"`
	Rate decimal.Decimal `json:"rate"`
}

// ConfigJSON is a complete configuration document.
type ConfigJSON struct {
	Shifts   []ShiftJSON   `json:"shifts"`
	Holidays []HolidayJSON `json:"holidays"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseShift converts and validates a shift definition.
func ParseShift(sj ShiftJSON) (tariff.Shift, error) {
	start, err := tariff.ParseClock(sj.StartTime)
	if err != nil {
		return tariff.Shift{}, &tariff.ValidationError{Kind: tariff.ErrInvalidShift, Field: "start_time", Msg: fmt.Sprintf("%q is not HH:MM", sj.StartTime)}
	}
	end, err := tariff.ParseClock(sj.EndTime)
	if err != nil {
		return tariff.Shift{}, &tariff.ValidationError{Kind: tariff.ErrInvalidShift, Field: "end_time", Msg: fmt.Sprintf("%q is not HH:MM", sj.EndTime)}
	}

	var weekdays []time.Weekday
	for _, d := range sj.Weekdays {
		weekdays = append(weekdays, time.Weekday(d))
	}

	shift := tariff.Shift{
		ID:       sj.ID,
		Start:    start,
		End:      end,
		Rate:     sj.Rate,
		Weekdays: weekdays,
	}
	if err := shift.Validate(); err != nil {
		return tariff.Shift{}, err
	}
	return shift, nil
}

// ParseHoliday converts and validates a holiday definition.
func ParseHoliday(hj HolidayJSON) (tariff.Holiday, error) {
	date, err := tariff.ParseDate(hj.Date)
	if err != nil {
		return tariff.Holiday{}, &tariff.ValidationError{Kind: tariff.ErrInvalidHoliday, Field: "date", Msg: fmt.Sprintf("%q is not YYYY-MM-DD", hj.Date)}
	}
	holiday := tariff.Holiday{
		ID:   hj.ID,
		Date: date,
		Name: hj.Name,
		Rate: hj.Rate,
	}
	if err := holiday.Validate(); err != nil {
		return tariff.Holiday{}, err
	}
	return holiday, nil
}

// ParseConfig decodes and validates a configuration document.
func ParseConfig(data []byte) (tariff.Snapshot, error) {
	var doc ConfigJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return tariff.Snapshot{}, fmt.Errorf("invalid config JSON: %w", err)
	}
	return FromJSON(doc)
}

// FromJSON converts a decoded document into a snapshot.
func FromJSON(doc ConfigJSON) (tariff.Snapshot, error) {
	var snap tariff.Snapshot
	for i, sj := range doc.Shifts {
		s, err := ParseShift(sj)
		if err != nil {
			return tariff.Snapshot{}, fmt.Errorf("shifts[%d]: %w", i, err)
		}
		snap.Shifts = append(snap.Shifts, s)
	}
	for i, hj := range doc.Holidays {
		h, err := ParseHoliday(hj)
		if err != nil {
			return tariff.Snapshot{}, fmt.Errorf("holidays[%d]: %w", i, err)
		}
		snap.Holidays = append(snap.Holidays, h)
	}
	if err := snap.Validate(); err != nil {
		return tariff.Snapshot{}, err
	}
	return snap, nil
}

// =============================================================================
// EXPORT
// =============================================================================

func ShiftToJSON(s tariff.Shift) ShiftJSON {
	sj := ShiftJSON{
		ID:        s.ID,
		StartTime: s.Start.String(),
		EndTime:   s.End.String(),
		Rate:      s.Rate,
		Label:     s.Label(),
	}
	for _, d := range s.Weekdays {
		sj.Weekdays = append(sj.Weekdays, int(d))
	}
	return sj
}

func HolidayToJSON(h tariff.Holiday) HolidayJSON {
	return HolidayJSON{
		ID:   h.ID,
		Date: h.Date.String(),
		Name: h.Name,
		Rate: h.Rate,
	}
}

// ToJSON converts a snapshot into a document. IDs are dropped so the
// document can be imported into another store.
func ToJSON(snap tariff.Snapshot) ConfigJSON {
	doc := ConfigJSON{
		Shifts:   make([]ShiftJSON, 0, len(snap.Shifts)),
		Holidays: make([]HolidayJSON, 0, len(snap.Holidays)),
	}
	for _, s := range snap.Shifts {
		sj := ShiftToJSON(s)
		sj.ID, sj.Label = 0, ""
		doc.Shifts = append(doc.Shifts, sj)
	}
	for _, h := range snap.Holidays {
		hj := HolidayToJSON(h)
		hj.ID = 0
		doc.Holidays = append(doc.Holidays, hj)
	}
	return doc
}

// =============================================================================
// PRESETS
// =============================================================================

// DefaultShifts is the shift set seeded into an empty store: the
// night-shifts preset, four consecutive windows from midnight to 06:00.
func DefaultShifts() []tariff.Shift {
	snap, err := LoadPreset(DefaultPresetID)
	if err != nil {
		panic(err)
	}
	return snap.Shifts
}
