/*
Package calculator ties the tariff engine to its stores.

PURPOSE:
  The engine is pure; this package is where configuration is read and
  results are archived. Every calculation takes one Snapshot of the
  configuration store before pricing, so a concurrent edit can never make
  two minutes of the same interval resolve against different versions.

OPERATIONS:
  Calculate:        snapshot + compute, nothing persisted
  Save:             archive an existing result under an idempotency key
  CalculateAndSave: both, in order
  SeedDefaults:     install the default shift set into an empty store
  ReplaceConfig:    import a whole configuration document

SEE ALSO:
  - tariff/engine.go: The computation
  - tariff/store.go: Store contracts
  - api/handlers.go, cmd/paycalc: Callers
*/
package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/warp/tariff-engine/factory"
	"github.com/warp/tariff-engine/tariff"
)

// Service computes and archives earnings.
type Service struct {
	Config  tariff.ConfigStore
	History tariff.HistoryStore
	Engine  *tariff.Engine
	Logger  *slog.Logger

	// Now is the clock used for SavedAt. Defaults to time.Now.
	Now func() time.Time
}

// New creates a service using the default engine strategy.
func New(config tariff.ConfigStore, history tariff.HistoryStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Config:  config,
		History: history,
		Engine:  tariff.NewEngine(nil),
		Logger:  logger,
		Now:     time.Now,
	}
}

// Snapshot reads the current configuration once.
func (s *Service) Snapshot(ctx context.Context) (tariff.Snapshot, error) {
	snap, err := tariff.TakeSnapshot(ctx, s.Config)
	if err != nil {
		return tariff.Snapshot{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return snap, nil
}

// Calculate prices req against a fresh configuration snapshot.
func (s *Service) Calculate(ctx context.Context, req tariff.WorkRequest) (*tariff.EarningsResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.Engine.Compute(req, snap)
	if err != nil {
		return nil, err
	}

	s.Logger.Debug("earnings computed",
		"work_date", req.WorkDate.String(),
		"start", req.StartTime,
		"end", req.EndTime,
		"overnight", req.Overnight,
		"segments", len(result.Breakdown),
		"uncovered_minutes", result.UncoveredMinutes,
		"total", result.TotalEarnings.StringFixed(2),
	)
	return result, nil
}

// Save archives result. An empty key gets a random one, so only callers
// that pass their own key are protected against double saves.
func (s *Service) Save(ctx context.Context, key string, result *tariff.EarningsResult) (tariff.HistoryRecord, error) {
	if result == nil {
		return tariff.HistoryRecord{}, errors.New("nil result")
	}
	if key == "" {
		key = uuid.NewString()
	}
	rec, err := s.History.AppendHistory(ctx, tariff.HistoryRecord{
		Key:     key,
		SavedAt: s.now(),
		Result:  *result,
	})
	if err != nil {
		return tariff.HistoryRecord{}, err
	}
	s.Logger.Info("calculation archived", "history_id", rec.ID, "key", rec.Key)
	return rec, nil
}

// CalculateAndSave prices req and archives the result.
func (s *Service) CalculateAndSave(ctx context.Context, key string, req tariff.WorkRequest) (tariff.HistoryRecord, error) {
	result, err := s.Calculate(ctx, req)
	if err != nil {
		return tariff.HistoryRecord{}, err
	}
	return s.Save(ctx, key, result)
}

// SeedDefaults installs factory.DefaultShifts when no shifts exist.
// Returns the number of shifts added.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := s.Config.ListShifts(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	defaults := factory.DefaultShifts()
	for _, sh := range defaults {
		if _, err := s.Config.AddShift(ctx, sh); err != nil {
			return 0, fmt.Errorf("failed to seed default shifts: %w", err)
		}
	}
	s.Logger.Info("seeded default shifts", "count", len(defaults))
	return len(defaults), nil
}

// configReplacer is implemented by stores that can swap configuration
// atomically.
type configReplacer interface {
	ReplaceConfig(ctx context.Context, snap tariff.Snapshot) error
}

// ReplaceConfig replaces every shift and holiday with snap.
// Stores without atomic replacement get a delete-then-add sequence.
func (s *Service) ReplaceConfig(ctx context.Context, snap tariff.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if r, ok := s.Config.(configReplacer); ok {
		return r.ReplaceConfig(ctx, snap)
	}

	current, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, sh := range current.Shifts {
		if err := s.Config.DeleteShift(ctx, sh.ID); err != nil {
			return err
		}
	}
	for _, h := range current.Holidays {
		if err := s.Config.DeleteHoliday(ctx, h.ID); err != nil {
			return err
		}
	}
	for _, sh := range snap.Shifts {
		if _, err := s.Config.AddShift(ctx, sh); err != nil {
			return err
		}
	}
	for _, h := range snap.Holidays {
		if _, err := s.Config.AddHoliday(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
