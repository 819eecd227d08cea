/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the configuration and history stores (tariff.ShiftStore,
  tariff.HolidayStore, tariff.HistoryStore) on SQLite.

KEY TABLES:
  shifts:   Recurring rate windows (minute-of-day bounds, decimal rate)
  holidays: Date-specific overrides, one per date
  history:  Archived calculation results (append-only)

APPEND-ONLY ENFORCEMENT:
  No UPDATE statements on the history table. DELETE only as a bulk clear.

BACKWARD COMPATIBILITY:
  shifts.weekdays is NULL for rows written before weekday scoping existed.
  NULL (or an empty list) is read back as "every day".

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer.

USAGE:
  store, err := sqlite.New("./data/tariff.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - tariff/store.go: Interface definitions
  - tariff/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/tariff-engine/tariff"
)

// savedAtLayout is fixed-width so saved_at sorts lexically in time order.
const savedAtLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements the tariff store interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ tariff.ConfigStore  = (*Store)(nil)
	_ tariff.HistoryStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Shifts (recurring rate windows)
	CREATE TABLE IF NOT EXISTS shifts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		rate TEXT NOT NULL,
		weekdays TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_start
		ON shifts(start_minute, id);

	-- Holidays (one per calendar date)
	CREATE TABLE IF NOT EXISTS holidays (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);

	-- History (append-only archive of results)
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		idempotency_key TEXT UNIQUE,
		saved_at TEXT NOT NULL,
		work_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		overnight BOOLEAN NOT NULL DEFAULT FALSE,
		total_minutes INTEGER NOT NULL,
		total_earnings TEXT NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_saved_at
		ON history(saved_at DESC, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (tariff.ShiftStore interface)
// =============================================================================

// ListShifts returns all shifts ordered by start time.
func (s *Store) ListShifts(ctx context.Context) ([]tariff.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_minute, end_minute, rate, weekdays
		FROM shifts
		ORDER BY start_minute ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []tariff.Shift
	for rows.Next() {
		var (
			sh       tariff.Shift
			start    int
			end      int
			rate     string
			weekdays sql.NullString
		)
		if err := rows.Scan(&sh.ID, &start, &end, &rate, &weekdays); err != nil {
			return nil, err
		}
		sh.Start = tariff.ClockTime(start)
		sh.End = tariff.ClockTime(end)
		if sh.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("shift %d: bad rate %q: %w", sh.ID, rate, err)
		}
		if sh.Weekdays, err = parseWeekdays(weekdays); err != nil {
			return nil, fmt.Errorf("shift %d: %w", sh.ID, err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// AddShift validates and inserts a shift.
func (s *Store) AddShift(ctx context.Context, sh tariff.Shift) (int64, error) {
	if err := sh.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (start_minute, end_minute, rate, weekdays, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		int(sh.Start),
		int(sh.End),
		sh.Rate.String(),
		formatWeekdays(sh.Weekdays),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add shift: %w", err)
	}
	return res.LastInsertId()
}

// UpdateShift replaces an existing shift.
func (s *Store) UpdateShift(ctx context.Context, sh tariff.Shift) error {
	if err := sh.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET start_minute = ?, end_minute = ?, rate = ?, weekdays = ?
		WHERE id = ?
	`,
		int(sh.Start),
		int(sh.End),
		sh.Rate.String(),
		formatWeekdays(sh.Weekdays),
		sh.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return requireAffected(res, "shift", sh.ID)
}

// DeleteShift deletes a shift by ID.
func (s *Store) DeleteShift(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return requireAffected(res, "shift", id)
}

// =============================================================================
// HOLIDAY STORE (tariff.HolidayStore interface)
// =============================================================================

// ListHolidays returns all holidays ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]tariff.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, rate
		FROM holidays
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []tariff.Holiday
	for rows.Next() {
		var (
			h       tariff.Holiday
			dateStr string
			rate    string
		)
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &rate); err != nil {
			return nil, err
		}
		if h.Date, err = tariff.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("holiday %d: %w", h.ID, err)
		}
		if h.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("holiday %d: bad rate %q: %w", h.ID, rate, err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// AddHoliday saves a holiday. A second holiday on the same date is rejected.
func (s *Store) AddHoliday(ctx context.Context, h tariff.Holiday) (int64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (date, name, rate, created_at)
		VALUES (?, ?, ?, ?)
	`,
		h.Date.String(),
		h.Name,
		h.Rate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, fmt.Errorf("%w: %s", tariff.ErrDuplicateHoliday, h.Date)
		}
		return 0, fmt.Errorf("failed to add holiday: %w", err)
	}
	return res.LastInsertId()
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return requireAffected(res, "holiday", id)
}

// =============================================================================
// HISTORY STORE (tariff.HistoryStore interface)
// =============================================================================

// AppendHistory archives a result. Duplicate keys are rejected.
func (s *Store) AppendHistory(ctx context.Context, rec tariff.HistoryRecord) (tariff.HistoryRecord, error) {
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return tariff.HistoryRecord{}, fmt.Errorf("failed to encode result: %w", err)
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := rec.Result.Request
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history
		(idempotency_key, saved_at, work_date, start_time, end_time, overnight,
		 total_minutes, total_earnings, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullString(rec.Key),
		rec.SavedAt.UTC().Format(savedAtLayout),
		req.WorkDate.String(),
		req.StartTime,
		req.EndTime,
		req.Overnight,
		rec.Result.TotalMinutes,
		rec.Result.TotalEarnings.String(),
		string(resultJSON),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return tariff.HistoryRecord{}, tariff.ErrDuplicateIdempotencyKey
		}
		return tariff.HistoryRecord{}, fmt.Errorf("failed to append history: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return tariff.HistoryRecord{}, err
	}
	return rec, nil
}

// ListHistory returns archived results, newest first.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]tariff.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, idempotency_key, saved_at, result_json
		FROM history
		ORDER BY saved_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []tariff.HistoryRecord
	for rows.Next() {
		var (
			rec        tariff.HistoryRecord
			key        sql.NullString
			savedAt    string
			resultJSON string
		)
		if err := rows.Scan(&rec.ID, &key, &savedAt, &resultJSON); err != nil {
			return nil, err
		}
		rec.Key = key.String
		if rec.SavedAt, err = time.Parse(savedAtLayout, savedAt); err != nil {
			return nil, fmt.Errorf("history %d: bad saved_at: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, fmt.Errorf("history %d: bad result: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ClearHistory deletes every archived result.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	return err
}

// =============================================================================
// ADMIN
// =============================================================================

// ReplaceConfig swaps the whole shift and holiday configuration atomically.
func (s *Store) ReplaceConfig(ctx context.Context, snap tariff.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, "DELETE FROM shifts"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM holidays"); err != nil {
		return err
	}
	for _, sh := range snap.Shifts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shifts (start_minute, end_minute, rate, weekdays, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, int(sh.Start), int(sh.End), sh.Rate.String(), formatWeekdays(sh.Weekdays), now); err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}
	for _, h := range snap.Holidays {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO holidays (date, name, rate, created_at)
			VALUES (?, ?, ?, ?)
		`, h.Date.String(), h.Name, h.Rate.String(), now); err != nil {
			return fmt.Errorf("failed to insert holiday: %w", err)
		}
	}
	return tx.Commit()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// formatWeekdays stores weekdays as "1,3,5"; an empty set is stored as NULL.
func formatWeekdays(days []time.Weekday) sql.NullString {
	if len(days) == 0 {
		return sql.NullString{}
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return sql.NullString{String: strings.Join(parts, ","), Valid: true}
}

func parseWeekdays(v sql.NullString) ([]time.Weekday, error) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil, nil
	}
	parts := strings.Split(v.String, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("bad weekdays %q", v.String)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, tariff.ErrNotFound)
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
