/*
handlers.go - HTTP API handlers for the tariff engine

PURPOSE:
  Exposes shift/holiday configuration, earnings calculation and the
  calculation history via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the calculator service.

ENDPOINTS:
  Shifts:
    GET    /api/shifts                 List shifts (by start time)
    POST   /api/shifts                 Create shift
    PUT    /api/shifts/{id}            Replace shift
    DELETE /api/shifts/{id}            Delete shift
    POST   /api/shifts/defaults        Seed default shifts into an empty store

  Holidays:
    GET    /api/holidays               List holidays
    POST   /api/holidays               Create holiday (409 if date taken)
    DELETE /api/holidays/{id}          Delete holiday

  Calculation:
    POST   /api/calculate              Price a work interval

  History:
    GET    /api/history                List archived results, newest first
    POST   /api/history                Price and archive (Idempotency-Key header)
    DELETE /api/history                Clear all archived results

  Configuration:
    GET    /api/config                 Export shifts and holidays
    PUT    /api/config                 Replace shifts and holidays

  Scenarios (scenarios.go):
    GET    /api/scenarios              List preset configurations
    POST   /api/scenarios/load         Replace configuration with a preset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid interval, malformed input, validation errors
  - 404: Record not found
  - 409: Duplicate holiday date, duplicate idempotency key
  - 422: No shifts configured
  - 500: Internal errors (logged with request id)

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/tariff-engine/calculator"
	"github.com/warp/tariff-engine/factory"
	"github.com/warp/tariff-engine/tariff"
)

// IdempotencyHeader carries the client's key for POST /api/history.
const IdempotencyHeader = "Idempotency-Key"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *calculator.Service
	Logger  *slog.Logger
}

// NewHandler creates a new handler around the service.
func NewHandler(svc *calculator.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: svc, Logger: logger}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns all shifts.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Service.Config.ListShifts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to list shifts", err)
		return
	}

	dtos := make([]factory.ShiftJSON, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, factory.ShiftToJSON(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShift creates a new shift.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req factory.ShiftJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := factory.ParseShift(req)
	if err != nil {
		h.writeServiceError(w, r, "Invalid shift", err)
		return
	}
	shift.ID, err = h.Service.Config.AddShift(r.Context(), shift)
	if err != nil {
		h.writeServiceError(w, r, "Failed to create shift", err)
		return
	}

	writeJSON(w, http.StatusCreated, factory.ShiftToJSON(shift))
}

// UpdateShift replaces a shift.
// PUT /api/shifts/{id}
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req factory.ShiftJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := factory.ParseShift(req)
	if err != nil {
		h.writeServiceError(w, r, "Invalid shift", err)
		return
	}
	shift.ID = id
	if err := h.Service.Config.UpdateShift(r.Context(), shift); err != nil {
		h.writeServiceError(w, r, "Failed to update shift", err)
		return
	}

	writeJSON(w, http.StatusOK, factory.ShiftToJSON(shift))
}

// DeleteShift deletes a shift.
// DELETE /api/shifts/{id}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Config.DeleteShift(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "Failed to delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedDefaultShifts installs the default shift set if no shifts exist.
// POST /api/shifts/defaults
func (h *Handler) SeedDefaultShifts(w http.ResponseWriter, r *http.Request) {
	added, err := h.Service.SeedDefaults(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to seed default shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.Config.ListHolidays(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to list holidays", err)
		return
	}

	dtos := make([]factory.HolidayJSON, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, factory.HolidayToJSON(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	holiday, err := factory.ParseHoliday(req)
	if err != nil {
		h.writeServiceError(w, r, "Invalid holiday", err)
		return
	}
	holiday.ID, err = h.Service.Config.AddHoliday(r.Context(), holiday)
	if err != nil {
		h.writeServiceError(w, r, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, factory.HolidayToJSON(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Config.DeleteHoliday(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate prices a work interval without archiving it.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Calculate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "Failed to calculate earnings", err)
		return
	}
	writeJSON(w, http.StatusOK, toEarningsDTO(result))
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListHistory returns archived results, newest first.
// GET /api/history?limit=N
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Service.History.ListHistory(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list history", err)
		return
	}

	dtos := make([]HistoryDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toHistoryDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveCalculation prices a work interval and archives the result.
// POST /api/history
func (h *Handler) SaveCalculation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.CalculateAndSave(r.Context(), r.Header.Get(IdempotencyHeader), req)
	if err != nil {
		h.writeServiceError(w, r, "Failed to save calculation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHistoryDTO(rec))
}

// ClearHistory removes all archived results.
// DELETE /api/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.History.ClearHistory(r.Context()); err != nil {
		h.writeServiceError(w, r, "Failed to clear history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// ExportConfig returns shifts and holidays as one document.
// GET /api/config
func (h *Handler) ExportConfig(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Snapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to export configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToJSON(snap))
}

// ImportConfig replaces shifts and holidays with the posted document.
// PUT /api/config
func (h *Handler) ImportConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	snap, err := factory.ParseConfig(body)
	if err != nil {
		if tariff.IsClientError(err) || tariff.IsConflict(err) {
			h.writeServiceError(w, r, "Invalid configuration", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid configuration", err)
		return
	}
	if err := h.Service.ReplaceConfig(r.Context(), snap); err != nil {
		h.writeServiceError(w, r, "Failed to import configuration", err)
		return
	}
	h.ExportConfig(w, r)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeCalculateRequest(w http.ResponseWriter, r *http.Request) (tariff.WorkRequest, bool) {
	var body CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return tariff.WorkRequest{}, false
	}
	req, err := body.toWorkRequest()
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_interval", "Invalid work date", err)
		return tariff.WorkRequest{}, false
	}
	return req, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// writeServiceError maps tariff errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, tariff.ErrInvalidInterval):
		writeErrorCode(w, http.StatusBadRequest, "invalid_interval", message, err)
	case errors.Is(err, tariff.ErrNoConfiguration):
		writeErrorCode(w, http.StatusUnprocessableEntity, "no_configuration", message, err)
	case tariff.IsClientError(err):
		writeErrorCode(w, http.StatusBadRequest, "validation_failed", message, err)
	case errors.Is(err, tariff.ErrDuplicateHoliday):
		writeErrorCode(w, http.StatusConflict, "duplicate_holiday", message, err)
	case errors.Is(err, tariff.ErrDuplicateIdempotencyKey):
		writeErrorCode(w, http.StatusConflict, "duplicate_key", message, err)
	case tariff.IsNotFound(err):
		writeErrorCode(w, http.StatusNotFound, "not_found", message, err)
	default:
		h.Logger.Error(message,
			"err", err,
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeErrorCode(w, status, "", message, err)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
