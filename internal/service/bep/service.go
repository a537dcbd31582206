package bep

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
	"github.com/mamadbah2/breakeven/internal/repository"
)

var (
	// ErrInvalidConfig indicates a configuration was rejected before saving.
	ErrInvalidConfig = errors.New("invalid break-even configuration")

	// ErrFixedCostNotFound indicates no fixed cost line matches the given id.
	ErrFixedCostNotFound = errors.New("fixed cost not found")

	// ErrAmbiguousID indicates an id prefix matches more than one line.
	ErrAmbiguousID = errors.New("id prefix matches more than one fixed cost")
)

// ConfigStore loads and saves the configuration aggregate as a whole.
type ConfigStore interface {
	Load(ctx context.Context, restaurantID string) (models.BepConfig, error)
	Save(ctx context.Context, cfg models.BepConfig) error
}

// EmployeeSource provides the staff roster.
type EmployeeSource interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

// Snapshot is a consistent view of configuration and roster for one calculation.
type Snapshot struct {
	Config    models.BepConfig
	Employees []models.Employee
}

// Summary is the global break-even view of a restaurant.
type Summary struct {
	RestaurantID  string                 `json:"restaurant_id"`
	AverageTicket float64                `json:"average_ticket"`
	FixedCosts    engine.FixedCostTotals `json:"fixed_costs"`
	BreakEven     engine.BreakEvenResult `json:"break_even"`
	Mix           engine.MixValidation   `json:"mix"`
	Issues        []Issue                `json:"issues"`
}

// updateAttempts bounds how often an update is replayed after a version conflict.
const updateAttempts = 3

// Service runs the engine over freshly loaded configuration snapshots.
type Service struct {
	store  ConfigStore
	staff  EmployeeSource
	logger *zap.Logger
	newID  func() string

	// serializes read-modify-write updates of a configuration
	mu sync.Mutex
}

// NewService wires the break-even service.
func NewService(store ConfigStore, staff EmployeeSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		staff:  staff,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Config returns the stored configuration, or the default one for a new restaurant.
func (s *Service) Config(ctx context.Context, restaurantID string) (models.BepConfig, error) {
	cfg, err := s.store.Load(ctx, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug("no configuration stored, using defaults", zap.String("restaurant_id", restaurantID))
		return models.DefaultBepConfig(restaurantID), nil
	}
	if err != nil {
		return models.BepConfig{}, err
	}
	return cfg, nil
}

// SaveConfig validates and replaces the whole configuration. A zero Version
// overwrites whatever is stored; a non-zero one must match the stored version
// or repository.ErrVersionConflict is returned.
func (s *Service) SaveConfig(ctx context.Context, cfg models.BepConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Version == 0 && cfg.RestaurantID != "" {
		current, err := s.store.Load(ctx, cfg.RestaurantID)
		switch {
		case err == nil:
			cfg.Version = current.Version
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	return s.save(ctx, cfg)
}

func (s *Service) save(ctx context.Context, cfg models.BepConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	for i := range cfg.FixedCosts {
		if cfg.FixedCosts[i].ID == "" {
			cfg.FixedCosts[i].ID = s.newID()
		}
	}
	for i := range cfg.ProductMix.Categories {
		if cfg.ProductMix.Categories[i].ID == "" {
			cfg.ProductMix.Categories[i].ID = s.newID()
		}
	}
	if err := s.store.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	s.logger.Info("configuration saved", zap.String("restaurant_id", cfg.RestaurantID), zap.Int64("version", cfg.Version+1))
	return nil
}

// Snapshot loads the configuration and the roster concurrently.
func (s *Service) Snapshot(ctx context.Context, restaurantID string) (Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := s.Config(gctx, restaurantID)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		snap.Config = cfg
		return nil
	})
	g.Go(func() error {
		if s.staff == nil {
			return nil
		}
		employees, err := s.staff.ListEmployees(gctx)
		if err != nil {
			return fmt.Errorf("load staff roster: %w", err)
		}
		snap.Employees = employees
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Summary computes fixed cost totals, break-even and mix validation.
func (s *Service) Summary(ctx context.Context, restaurantID string) (Summary, error) {
	snap, err := s.Snapshot(ctx, restaurantID)
	if err != nil {
		return Summary{}, err
	}

	cfg := snap.Config
	totals := engine.AggregateFixedCosts(snap.Employees, cfg.FixedCosts)
	breakEven := engine.ComputeBreakEven(totals.Total, cfg.VariableIncidence, cfg.AverageTicket)
	mix := engine.ValidateProductMix(cfg.ProductMix)

	summary := Summary{
		RestaurantID:  restaurantID,
		AverageTicket: cfg.AverageTicket,
		FixedCosts:    totals,
		BreakEven:     breakEven,
		Mix:           mix,
		Issues:        collectIssues(breakEven.Err(), mix.Err()),
	}

	if len(summary.Issues) > 0 {
		s.logger.Debug("break-even computed with issues", zap.String("restaurant_id", restaurantID), zap.Any("issues", summary.Issues))
	}
	return summary, nil
}

// Price runs the category pricing engine for one category of the mix.
func (s *Service) Price(ctx context.Context, restaurantID string, req models.PriceRequest) (engine.PricingResult, error) {
	snap, err := s.Snapshot(ctx, restaurantID)
	if err != nil {
		return engine.PricingResult{}, err
	}

	cfg := snap.Config
	category, err := engine.FindCategory(cfg.ProductMix, req.Category)
	if err != nil {
		return engine.PricingResult{}, err
	}

	totals := engine.AggregateFixedCosts(snap.Employees, cfg.FixedCosts)
	result, err := engine.PriceCategory(category, cfg.ProductMix, totals.Total, cfg.VariableIncidence, req.RawMaterialCost, req.DesiredMarginPercent)
	if err != nil {
		s.logger.Debug("category cannot be priced",
			zap.String("restaurant_id", restaurantID),
			zap.String("category", category.Name),
			zap.Error(err))
		return engine.PricingResult{}, err
	}
	return result, nil
}

// PriceAll prices every category using its food cost target as raw material
// cost and the same desired margin.
func (s *Service) PriceAll(ctx context.Context, restaurantID string, desiredMarginPercent float64) ([]engine.CategoryPricing, error) {
	snap, err := s.Snapshot(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	cfg := snap.Config
	totals := engine.AggregateFixedCosts(snap.Employees, cfg.FixedCosts)
	return engine.PriceMix(cfg.ProductMix, totals.Total, cfg.VariableIncidence, engine.FoodCostRule(desiredMarginPercent)), nil
}

// AddFixedCost appends a fixed cost line and returns it with its new id.
func (s *Service) AddFixedCost(ctx context.Context, restaurantID string, req models.FixedCostRequest) (models.FixedCostItem, error) {
	item := models.FixedCostItem{
		ID:       s.newID(),
		Label:    strings.TrimSpace(req.Label),
		Amount:   req.Amount,
		Category: strings.TrimSpace(req.Category),
	}
	if item.Label == "" {
		return models.FixedCostItem{}, fmt.Errorf("%w: fixed cost label must not be empty", ErrInvalidConfig)
	}

	err := s.update(ctx, restaurantID, func(cfg *models.BepConfig) error {
		cfg.FixedCosts = append(cfg.FixedCosts, item)
		return nil
	})
	if err != nil {
		return models.FixedCostItem{}, err
	}
	return item, nil
}

// RemoveFixedCost deletes the line whose id equals, or uniquely starts with, itemID.
func (s *Service) RemoveFixedCost(ctx context.Context, restaurantID, itemID string) (models.FixedCostItem, error) {
	var removed models.FixedCostItem
	err := s.update(ctx, restaurantID, func(cfg *models.BepConfig) error {
		idx, err := findFixedCost(cfg.FixedCosts, itemID)
		if err != nil {
			return err
		}
		removed = cfg.FixedCosts[idx]
		cfg.FixedCosts = append(cfg.FixedCosts[:idx], cfg.FixedCosts[idx+1:]...)
		return nil
	})
	return removed, err
}

// SetAverageTicket updates the average spend per cover.
func (s *Service) SetAverageTicket(ctx context.Context, restaurantID string, ticket float64) error {
	return s.update(ctx, restaurantID, func(cfg *models.BepConfig) error {
		cfg.AverageTicket = ticket
		return nil
	})
}

// SetCoverVolume updates the monthly cover volume of the product mix.
func (s *Service) SetCoverVolume(ctx context.Context, restaurantID string, covers int) error {
	return s.update(ctx, restaurantID, func(cfg *models.BepConfig) error {
		cfg.ProductMix.MonthlyCoverVolume = covers
		return nil
	})
}

// UpsertCategory replaces the category with the same id, or appends it.
func (s *Service) UpsertCategory(ctx context.Context, restaurantID string, category models.RevenueCategory) (models.RevenueCategory, error) {
	if category.ID == "" {
		category.ID = s.newID()
	}
	err := s.update(ctx, restaurantID, func(cfg *models.BepConfig) error {
		for i, c := range cfg.ProductMix.Categories {
			if c.ID == category.ID {
				cfg.ProductMix.Categories[i] = category
				return nil
			}
		}
		cfg.ProductMix.Categories = append(cfg.ProductMix.Categories, category)
		return nil
	})
	if err != nil {
		return models.RevenueCategory{}, err
	}
	return category, nil
}

// update applies mutate to the stored configuration. The mutex orders updates
// within this process; the store version check catches writers in other
// processes, in which case the update is replayed on a fresh load.
func (s *Service) update(ctx context.Context, restaurantID string, mutate func(cfg *models.BepConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for attempt := 1; attempt <= updateAttempts; attempt++ {
		var cfg models.BepConfig
		cfg, err = s.Config(ctx, restaurantID)
		if err != nil {
			return err
		}
		cfg = cfg.Clone()
		if err := mutate(&cfg); err != nil {
			return err
		}
		err = s.save(ctx, cfg)
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		s.logger.Warn("configuration changed during update, retrying",
			zap.String("restaurant_id", restaurantID),
			zap.Int("attempt", attempt))
	}
	return err
}

func findFixedCost(items []models.FixedCostItem, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, ErrFixedCostNotFound
	}

	for i, item := range items {
		if item.ID == id {
			return i, nil
		}
	}

	match := -1
	for i, item := range items {
		if !strings.HasPrefix(item.ID, id) {
			continue
		}
		if match >= 0 {
			return -1, ErrAmbiguousID
		}
		match = i
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrFixedCostNotFound, id)
	}
	return match, nil
}
