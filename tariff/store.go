/*
store.go - Persistence interfaces for configuration and history

PURPOSE:
  Defines the contract between the calculation service and storage.
  The engine itself never touches a store: callers take one Snapshot from
  the configuration stores and pass it in.

KEY INTERFACES:
  ShiftStore:   Shift CRUD, auto-generated ids
  HolidayStore: Holiday add/delete, one holiday per date
  HistoryStore: Append-only archive of results, bulk clear
  ConfigStore:  ShiftStore + HolidayStore (what a computation needs)

APPEND-ONLY CONTRACT:
  HistoryStore records are never updated. The only way to remove a record
  is ClearHistory, which removes all of them.

IDEMPOTENCY:
  Every history append carries a key. If the key already exists the write is
  rejected with ErrDuplicateIdempotencyKey, so a retried "save" cannot
  archive the same calculation twice.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - tariff/store/memory.go: In-memory for testing

SEE ALSO:
  - calculator/service.go: Consumer of these interfaces
*/
package tariff

import "context"

// ShiftStore persists shifts.
type ShiftStore interface {
	// ListShifts returns all shifts ordered by start time, then id.
	ListShifts(ctx context.Context) ([]Shift, error)

	// AddShift validates and stores s, returning the generated id.
	AddShift(ctx context.Context, s Shift) (int64, error)

	// UpdateShift replaces the shift with s.ID. ErrNotFound if missing.
	UpdateShift(ctx context.Context, s Shift) error

	// DeleteShift removes a shift. ErrNotFound if missing.
	DeleteShift(ctx context.Context, id int64) error
}

// HolidayStore persists holidays.
type HolidayStore interface {
	// ListHolidays returns all holidays ordered by date.
	ListHolidays(ctx context.Context) ([]Holiday, error)

	// AddHoliday validates and stores h. ErrDuplicateHoliday if the date is taken.
	AddHoliday(ctx context.Context, h Holiday) (int64, error)

	// DeleteHoliday removes a holiday. ErrNotFound if missing.
	DeleteHoliday(ctx context.Context, id int64) error
}

// ConfigStore is everything a computation reads.
type ConfigStore interface {
	ShiftStore
	HolidayStore
}

// HistoryStore archives results.
type HistoryStore interface {
	// AppendHistory stores rec and returns it with ID set.
	AppendHistory(ctx context.Context, rec HistoryRecord) (HistoryRecord, error)

	// ListHistory returns records newest first. limit <= 0 means all.
	ListHistory(ctx context.Context, limit int) ([]HistoryRecord, error)

	// ClearHistory removes every record.
	ClearHistory(ctx context.Context) error
}

// TakeSnapshot reads shifts and holidays once each.
func TakeSnapshot(ctx context.Context, store ConfigStore) (Snapshot, error) {
	shifts, err := store.ListShifts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	holidays, err := store.ListHolidays(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Shifts: shifts, Holidays: holidays}, nil
}
