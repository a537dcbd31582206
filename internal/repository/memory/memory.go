// Package memory provides in-process storage used when no database is configured and in tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/repository"
)

// Store keeps configurations and snapshots in memory. Values are cloned on
// the way in and out so callers never share slices with the store.
type Store struct {
	mu        sync.RWMutex
	configs   map[string]models.BepConfig
	snapshots []models.BreakEvenSnapshot
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		configs: make(map[string]models.BepConfig),
		now:     time.Now,
	}
}

// Load returns the configuration of a restaurant, or repository.ErrNotFound.
func (s *Store) Load(_ context.Context, restaurantID string) (models.BepConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[restaurantID]
	if !ok {
		return models.BepConfig{}, repository.ErrNotFound
	}
	return cfg.Clone(), nil
}

// Save replaces the configuration of a restaurant when cfg.Version matches the
// stored version, and bumps it. Otherwise it returns repository.ErrVersionConflict.
func (s *Store) Save(_ context.Context, cfg models.BepConfig) error {
	if cfg.RestaurantID == "" {
		return errors.New("restaurant id must not be empty")
	}
	cfg = cfg.Clone()
	cfg.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configs[cfg.RestaurantID].Version != cfg.Version {
		return repository.ErrVersionConflict
	}
	cfg.Version++
	s.configs[cfg.RestaurantID] = cfg
	return nil
}

// SaveSnapshot appends a break-even snapshot.
func (s *Store) SaveSnapshot(_ context.Context, snapshot models.BreakEvenSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

// Snapshots returns a copy of the stored snapshots.
func (s *Store) Snapshots() []models.BreakEvenSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BreakEvenSnapshot(nil), s.snapshots...)
}

// Roster is a fixed staff list.
type Roster struct {
	Employees []models.Employee
}

// ListEmployees returns a copy of the roster.
func (r Roster) ListEmployees(_ context.Context) ([]models.Employee, error) {
	return append([]models.Employee(nil), r.Employees...), nil
}
