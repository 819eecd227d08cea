/*
scenarios.go - Preset configuration loaders for demos

PURPOSE:

	Lets a fresh install be populated with a realistic shift and holiday
	configuration in one call. Each scenario is a factory preset document.

AVAILABLE SCENARIOS:

	night-shifts:     The four default windows from midnight to 06:00
	round-the-clock:  Weekday day/evening/night rates, flat weekend premium
	holiday-season:   Day/night rates plus year-end holiday overrides

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/load
	{"scenario_id": "round-the-clock"}

NOTE:

	Loading a scenario replaces every shift and holiday. History is kept.

SEE ALSO:
  - factory/presets.go: Preset documents
  - calculator/service.go: ReplaceConfig
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/tariff-engine/factory"
)

// ScenarioDTO describes a loadable scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ListScenarios returns the available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	presets := factory.Presets()
	dtos := make([]ScenarioDTO, 0, len(presets))
	for _, p := range presets {
		dtos = append(dtos, ScenarioDTO{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario replaces the configuration with a preset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snap, err := factory.LoadPreset(req.ScenarioID)
	if err != nil {
		h.writeServiceError(w, r, "Unknown scenario", err)
		return
	}
	if err := h.Service.ReplaceConfig(r.Context(), snap); err != nil {
		h.writeServiceError(w, r, "Failed to load scenario", err)
		return
	}

	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID,
		"shifts", len(snap.Shifts), "holidays", len(snap.Holidays))
	h.ExportConfig(w, r)
}
