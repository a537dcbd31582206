package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
	repo "github.com/mamadbah2/breakeven/internal/repository/sheets"
	"github.com/mamadbah2/breakeven/internal/service/bep"
)

const dateLayout = "2006-01-02"

// Calculator is the part of the break-even service the reports need.
type Calculator interface {
	Summary(ctx context.Context, restaurantID string) (bep.Summary, error)
	PriceAll(ctx context.Context, restaurantID string, desiredMarginPercent float64) ([]engine.CategoryPricing, error)
}

// SnapshotStore persists break-even snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.BreakEvenSnapshot) error
}

// Service builds periodic break-even reports.
type Service struct {
	calc        Calculator
	snapshots   SnapshotStore
	sheets      repo.Repository
	reportRange string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires a new reporting service instance. sheets may be nil when
// the spreadsheet export is disabled.
func NewService(calc Calculator, snapshots SnapshotStore, sheets repo.Repository, reportRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		calc:        calc,
		snapshots:   snapshots,
		sheets:      sheets,
		reportRange: reportRange,
		logger:      logger,
		now:         time.Now,
	}
}

// GenerateWeeklyReport computes the break-even view and a suggested price per
// category, records the snapshot and returns the report text.
func (s *Service) GenerateWeeklyReport(ctx context.Context, restaurantID string, desiredMarginPercent float64) (string, error) {
	summary, err := s.calc.Summary(ctx, restaurantID)
	if err != nil {
		return "", fmt.Errorf("compute summary: %w", err)
	}

	pricing, err := s.calc.PriceAll(ctx, restaurantID, desiredMarginPercent)
	if err != nil {
		return "", fmt.Errorf("price categories: %w", err)
	}

	now := s.now().UTC()
	snapshot := models.BreakEvenSnapshot{
		RestaurantID:             restaurantID,
		Date:                     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		StaffCost:                summary.FixedCosts.StaffCost,
		OtherFixedCost:           summary.FixedCosts.OtherCost,
		TotalFixedCost:           summary.FixedCosts.Total,
		AggregateVariablePercent: summary.BreakEven.AggregateVariablePercent,
		BreakEvenRevenue:         summary.BreakEven.BreakEvenRevenue,
		BreakEvenCovers:          summary.BreakEven.BreakEvenCovers,
		Unreachable:              summary.BreakEven.Unreachable,
		MixSharePercent:          summary.Mix.TotalSharePercent,
		CreatedAt:                now,
	}
	s.record(ctx, snapshot)

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly report %s\n", now.Format(dateLayout))
	b.WriteString(FormatSummary(summary))

	if len(pricing) > 0 {
		fmt.Fprintf(&b, "\nSuggested prices at %s margin (raw cost from food cost target):", Percent(desiredMarginPercent))
		for _, p := range pricing {
			if p.Err != nil {
				fmt.Fprintf(&b, "\n- %s: %s", p.Category.Name, FormatError(p.Err))
				continue
			}
			fmt.Fprintf(&b, "\n- %s: %s (break-even %s)", p.Category.Name, Money(p.Result.RecommendedPrice), Money(p.Result.BreakEvenPrice))
			if p.Result.ZeroVolume {
				b.WriteString(", no modeled volume")
			}
		}
	}

	return b.String(), nil
}

// record stores the snapshot and exports it as a sheet row. Failures are
// logged; the report is still delivered.
func (s *Service) record(ctx context.Context, snap models.BreakEvenSnapshot) {
	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
			s.logger.Error("failed to store break-even snapshot", zap.String("restaurant_id", snap.RestaurantID), zap.Error(err))
		}
	}

	if s.sheets == nil || s.reportRange == "" {
		return
	}
	row := []interface{}{
		snap.Date.Format(dateLayout),
		snap.RestaurantID,
		snap.StaffCost,
		snap.OtherFixedCost,
		snap.AggregateVariablePercent,
		snap.BreakEvenRevenue,
		snap.BreakEvenCovers,
		snap.MixSharePercent,
	}
	if err := s.sheets.WriteRow(ctx, s.reportRange, row); err != nil {
		s.logger.Error("failed to export break-even row", zap.String("restaurant_id", snap.RestaurantID), zap.Error(err))
	}
}
