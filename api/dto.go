/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Configuration:
    factory.ShiftJSON, factory.HolidayJSON, factory.ConfigJSON (reused)

  Calculation:
    CalculateRequest, EarningsDTO, SegmentDTO

  History:
    HistoryDTO

MONEY AND HOURS:
  Rendered as decimal strings. Hours and earnings are rounded to two
  decimals for display only; totals are computed at full precision.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: Configuration JSON types
*/
package api

import (
	"time"

	"github.com/warp/tariff-engine/tariff"
)

// CalculateRequest is the request to price a work interval.
type CalculateRequest struct {
	WorkDate  string `json:"work_date"` // YYYY-MM-DD
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Overnight bool   `json:"overnight"`
}

// SegmentDTO is one line of the breakdown.
type SegmentDTO struct {
	Time     string `json:"time"` // label, e.g. "00:00 - 02:00" or "Holiday (Christmas)"
	Kind     string `json:"kind"`
	From     string `json:"from"`
	To       string `json:"to"`
	Minutes  int    `json:"minutes"`
	Hours    string `json:"hours"`
	Rate     string `json:"rate"`
	Earnings string `json:"earnings"`
}

// EarningsDTO is a computed result.
type EarningsDTO struct {
	WorkDate       string       `json:"work_date"`
	StartTime      string       `json:"start_time"`
	EndTime        string       `json:"end_time"`
	Overnight      bool         `json:"overnight"`
	TotalHours     string       `json:"total_hours"`
	UncoveredHours string       `json:"uncovered_hours"`
	TotalEarnings  string       `json:"total_earnings"`
	Breakdown      []SegmentDTO `json:"breakdown"`
}

// HistoryDTO is an archived result.
type HistoryDTO struct {
	ID      int64       `json:"id"`
	Key     string      `json:"key"`
	SavedAt string      `json:"saved_at"`
	Result  EarningsDTO `json:"result"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func (r CalculateRequest) toWorkRequest() (tariff.WorkRequest, error) {
	date, err := tariff.ParseDate(r.WorkDate)
	if err != nil {
		return tariff.WorkRequest{}, err
	}
	return tariff.WorkRequest{
		WorkDate:  date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Overnight: r.Overnight,
	}, nil
}

func toEarningsDTO(res *tariff.EarningsResult) EarningsDTO {
	dto := EarningsDTO{
		WorkDate:       res.Request.WorkDate.String(),
		StartTime:      res.Request.StartTime,
		EndTime:        res.Request.EndTime,
		Overnight:      res.Request.Overnight,
		TotalHours:     res.TotalHours.StringFixed(2),
		UncoveredHours: res.UncoveredHours().StringFixed(2),
		TotalEarnings:  res.TotalEarnings.StringFixed(2),
		Breakdown:      make([]SegmentDTO, 0, len(res.Breakdown)),
	}
	for _, seg := range res.Breakdown {
		dto.Breakdown = append(dto.Breakdown, SegmentDTO{
			Time:     seg.Label,
			Kind:     string(seg.Kind),
			From:     tariff.FormatMinutes(seg.Start),
			To:       tariff.FormatMinutes(seg.End),
			Minutes:  seg.Minutes,
			Hours:    seg.HoursRounded().StringFixed(2),
			Rate:     seg.Rate.String(),
			Earnings: seg.Earnings.StringFixed(2),
		})
	}
	return dto
}

func toHistoryDTO(rec tariff.HistoryRecord) HistoryDTO {
	return HistoryDTO{
		ID:      rec.ID,
		Key:     rec.Key,
		SavedAt: rec.SavedAt.Format(time.RFC3339),
		Result:  toEarningsDTO(&rec.Result),
	}
}
