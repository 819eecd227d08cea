// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/tariff-engine/tariff"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements tariff.ConfigStore and tariff.HistoryStore.
type Memory struct {
	mu       sync.RWMutex
	shifts   map[int64]tariff.Shift
	holidays map[int64]tariff.Holiday
	history  []tariff.HistoryRecord
	keys     map[string]bool
	nextID   int64
}

var (
	_ tariff.ConfigStore  = (*Memory)(nil)
	_ tariff.HistoryStore = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		shifts:   make(map[int64]tariff.Shift),
		holidays: make(map[int64]tariff.Holiday),
		keys:     make(map[string]bool),
	}
}

func (m *Memory) newID() int64 {
	m.nextID++
	return m.nextID
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) ListShifts(_ context.Context) ([]tariff.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]tariff.Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		result = append(result, s.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Start == result[j].Start {
			return result[i].ID < result[j].ID
		}
		return result[i].Start < result[j].Start
	})
	return result, nil
}

func (m *Memory) AddShift(_ context.Context, s tariff.Shift) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s = s.Clone()
	s.ID = m.newID()
	m.shifts[s.ID] = s
	return s.ID, nil
}

func (m *Memory) UpdateShift(_ context.Context, s tariff.Shift) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[s.ID]; !ok {
		return fmt.Errorf("shift %d: %w", s.ID, tariff.ErrNotFound)
	}
	m.shifts[s.ID] = s.Clone()
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[id]; !ok {
		return fmt.Errorf("shift %d: %w", id, tariff.ErrNotFound)
	}
	delete(m.shifts, id)
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) ListHolidays(_ context.Context) ([]tariff.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]tariff.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date == result[j].Date {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *Memory) AddHoliday(_ context.Context, h tariff.Holiday) (int64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.holidays {
		if existing.Date == h.Date {
			return 0, fmt.Errorf("%w: %s", tariff.ErrDuplicateHoliday, h.Date)
		}
	}
	h.ID = m.newID()
	m.holidays[h.ID] = h
	return h.ID, nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return fmt.Errorf("holiday %d: %w", id, tariff.ErrNotFound)
	}
	delete(m.holidays, id)
	return nil
}

// =============================================================================
// HISTORY - Append-only
// =============================================================================

func (m *Memory) AppendHistory(_ context.Context, rec tariff.HistoryRecord) (tariff.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.Key != "" && m.keys[rec.Key] {
		return tariff.HistoryRecord{}, tariff.ErrDuplicateIdempotencyKey
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}
	rec.ID = m.newID()
	m.history = append(m.history, cloneRecord(rec))
	if rec.Key != "" {
		m.keys[rec.Key] = true
	}
	return rec, nil
}

// ListHistory returns records newest first; ties on SavedAt go to the
// higher id.
func (m *Memory) ListHistory(_ context.Context, limit int) ([]tariff.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]tariff.HistoryRecord, len(m.history))
	for i, rec := range m.history {
		result[i] = cloneRecord(rec)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].SavedAt.Equal(result[j].SavedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].SavedAt.After(result[j].SavedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// cloneRecord detaches the breakdown so archived records never share
// memory with callers.
func cloneRecord(rec tariff.HistoryRecord) tariff.HistoryRecord {
	if rec.Result.Breakdown != nil {
		rec.Result.Breakdown = append([]tariff.Segment(nil), rec.Result.Breakdown...)
	}
	return rec
}

func (m *Memory) ClearHistory(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = nil
	m.keys = make(map[string]bool)
	return nil
}

// ReplaceConfig swaps all shifts and holidays under one lock.
func (m *Memory) ReplaceConfig(_ context.Context, snap tariff.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shifts = make(map[int64]tariff.Shift, len(snap.Shifts))
	for _, s := range snap.Shifts {
		s = s.Clone()
		s.ID = m.newID()
		m.shifts[s.ID] = s
	}
	m.holidays = make(map[int64]tariff.Holiday, len(snap.Holidays))
	for _, h := range snap.Holidays {
		h.ID = m.newID()
		m.holidays[h.ID] = h
	}
	return nil
}
