package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
	"github.com/mamadbah2/breakeven/internal/service/bep"
	"github.com/mamadbah2/breakeven/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the bot commands.
const HelpText = `Break-even assistant commands:
/bep - monthly break-even revenue and covers
/price <category> <raw cost> <margin%> - recommended price for a category
/mix - product mix and share check
/costs - fixed cost lines
/cost <amount> <label> - add a fixed cost
/uncost <id> - remove a fixed cost
/ticket <amount> - set the average ticket
/covers <n> - set monthly covers
/help - this list`

// Calculator is the break-even service surface the bot drives.
type Calculator interface {
	Snapshot(ctx context.Context, restaurantID string) (bep.Snapshot, error)
	Summary(ctx context.Context, restaurantID string) (bep.Summary, error)
	Price(ctx context.Context, restaurantID string, req models.PriceRequest) (engine.PricingResult, error)
	AddFixedCost(ctx context.Context, restaurantID string, req models.FixedCostRequest) (models.FixedCostItem, error)
	RemoveFixedCost(ctx context.Context, restaurantID, itemID string) (models.FixedCostItem, error)
	SetAverageTicket(ctx context.Context, restaurantID string, ticket float64) error
	SetCoverVolume(ctx context.Context, restaurantID string, covers int) error
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface for a single restaurant.
type Service struct {
	calc         Calculator
	restaurantID string
	logger       *zap.Logger
}

// NewService constructs a command dispatcher bound to restaurantID.
func NewService(calc Calculator, restaurantID string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		calc:         calc,
		restaurantID: restaurantID,
		logger:       logger,
	}
}

// HandleCommand runs the command against the break-even service.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp:
		return HelpText, nil
	case models.CommandBreakEven:
		summary, err := s.calc.Summary(ctx, s.restaurantID)
		if err != nil {
			return "", err
		}
		return reporting.FormatSummary(summary), nil
	case models.CommandPrice:
		req, err := buildPriceRequest(cmd)
		if err != nil {
			return "", err
		}
		result, err := s.calc.Price(ctx, s.restaurantID, req)
		if err != nil {
			return "", err
		}
		return reporting.FormatPricing(result), nil
	case models.CommandMix:
		snap, err := s.calc.Snapshot(ctx, s.restaurantID)
		if err != nil {
			return "", err
		}
		return reporting.FormatMix(snap.Config.ProductMix), nil
	case models.CommandCosts:
		snap, err := s.calc.Snapshot(ctx, s.restaurantID)
		if err != nil {
			return "", err
		}
		totals := engine.AggregateFixedCosts(snap.Employees, snap.Config.FixedCosts)
		return reporting.FormatCosts(snap.Config, totals), nil
	case models.CommandAddCost:
		req, err := buildFixedCostRequest(cmd)
		if err != nil {
			return "", err
		}
		item, err := s.calc.AddFixedCost(ctx, s.restaurantID, req)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Fixed cost added [%s] %s: %s / month.", shortID(item.ID), item.Label, reporting.Money(item.Amount)), nil
	case models.CommandRemoveCost:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		item, err := s.calc.RemoveFixedCost(ctx, s.restaurantID, cmd.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Fixed cost removed: %s %s.", item.Label, reporting.Money(item.Amount)), nil
	case models.CommandTicket:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		ticket, err := parseNumber(cmd.Args[0])
		if err != nil || ticket <= 0 {
			return "", ErrInvalidArguments
		}
		if err := s.calc.SetAverageTicket(ctx, s.restaurantID, ticket); err != nil {
			return "", err
		}
		return fmt.Sprintf("Average ticket set to %s.", reporting.Money(ticket)), nil
	case models.CommandCovers:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		covers, err := strconv.Atoi(cmd.Args[0])
		if err != nil || covers < 0 {
			return "", ErrInvalidArguments
		}
		if err := s.calc.SetCoverVolume(ctx, s.restaurantID, covers); err != nil {
			return "", err
		}
		return fmt.Sprintf("Monthly covers set to %d.", covers), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// buildPriceRequest reads "<category...> <raw cost> <margin%>"; the category
// name may contain spaces.
func buildPriceRequest(cmd models.Command) (models.PriceRequest, error) {
	if len(cmd.Args) < 3 {
		return models.PriceRequest{}, ErrInvalidArguments
	}

	n := len(cmd.Args)
	raw, err := parseNumber(cmd.Args[n-2])
	if err != nil {
		return models.PriceRequest{}, ErrInvalidArguments
	}
	margin, err := parseNumber(cmd.Args[n-1])
	if err != nil {
		return models.PriceRequest{}, ErrInvalidArguments
	}

	return models.PriceRequest{
		Category:             strings.Join(cmd.Args[:n-2], " "),
		RawMaterialCost:      raw,
		DesiredMarginPercent: margin,
	}, nil
}

func buildFixedCostRequest(cmd models.Command) (models.FixedCostRequest, error) {
	if len(cmd.Args) < 2 {
		return models.FixedCostRequest{}, ErrInvalidArguments
	}

	amount, err := parseNumber(cmd.Args[0])
	if err != nil || amount < 0 {
		return models.FixedCostRequest{}, ErrInvalidArguments
	}

	return models.FixedCostRequest{Label: strings.Join(cmd.Args[1:], " "), Amount: amount}, nil
}

// parseNumber accepts "12.5", "12,5", "€12.5" and "30%". Inf, NaN and
// values out of float64 range are rejected.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidArguments, s)
	}
	return v, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
