package factory

import (
	"fmt"

	"github.com/warp/tariff-engine/tariff"
)

// =============================================================================
// PRESET CONFIGURATIONS
// =============================================================================

// Preset is a named configuration document for demos and first runs.
type Preset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ConfigJSON  string `json:"-"`
}

// DefaultPresetID is the preset whose shifts seed an empty store.
const DefaultPresetID = "night-shifts"

var presets = []Preset{
	{
		ID:          "night-shifts",
		Name:        "Night Shifts",
		Description: "The default four windows from midnight to 06:00, every day",
		ConfigJSON: `{
			"shifts": [
				{"start_time": "00:00", "end_time": "02:00", "rate": "12"},
				{"start_time": "02:00", "end_time": "04:00", "rate": "10"},
				{"start_time": "04:00", "end_time": "05:00", "rate": "20"},
				{"start_time": "05:00", "end_time": "06:00", "rate": "15"}
			],
			"holidays": []
		}`,
	},
	{
		ID:          "round-the-clock",
		Name:        "Round the Clock",
		Description: "Day, evening and night rates with a weekend premium",
		ConfigJSON: `{
			"shifts": [
				{"start_time": "00:00", "end_time": "00:00", "rate": "20", "weekdays": [0, 6]},
				{"start_time": "06:00", "end_time": "18:00", "rate": "12", "weekdays": [1, 2, 3, 4, 5]},
				{"start_time": "18:00", "end_time": "22:00", "rate": "14", "weekdays": [1, 2, 3, 4, 5]},
				{"start_time": "22:00", "end_time": "06:00", "rate": "18", "weekdays": [1, 2, 3, 4, 5]}
			],
			"holidays": []
		}`,
	},
	{
		ID:          "holiday-season",
		Name:        "Holiday Season",
		Description: "Flat day rate with premium pay on the year-end holidays",
		ConfigJSON: `{
			"shifts": [
				{"start_time": "08:00", "end_time": "20:00", "rate": "12"},
				{"start_time": "20:00", "end_time": "08:00", "rate": "15"}
			],
			"holidays": [
				{"date": "2025-12-24", "name": "Christmas Eve", "rate": "22"},
				{"date": "2025-12-25", "name": "Christmas", "rate": "30"},
				{"date": "2025-12-31", "name": "New Year's Eve", "rate": "22"},
				{"date": "2026-01-01", "name": "New Year", "rate": "30"}
			]
		}`,
	},
}

// Presets lists the built-in configurations.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LoadPreset parses the preset with the given id.
func LoadPreset(id string) (tariff.Snapshot, error) {
	for _, p := range presets {
		if p.ID == id {
			return ParseConfig([]byte(p.ConfigJSON))
		}
	}
	return tariff.Snapshot{}, fmt.Errorf("preset %q: %w", id, tariff.ErrNotFound)
}
