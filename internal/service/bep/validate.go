package bep

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
)

// Issue is a caller-visible condition attached to a calculation.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Issue codes, one per engine condition.
const (
	IssueConfigurationInvalid = "configuration_invalid"
	IssueUnreachableBreakEven = "unreachable_break_even"
	IssueInvalidAverageTicket = "invalid_average_ticket"
	IssueMarginExceeds        = "margin_exceeds_capacity"
	IssueZeroVolume           = "zero_volume"
	IssueInvalidInput         = "invalid_input"
	IssueCategoryNotFound     = "category_not_found"
)

var issueCodes = []struct {
	err  error
	code string
}{
	{engine.ErrConfigurationInvalid, IssueConfigurationInvalid},
	{engine.ErrUnreachableBreakEven, IssueUnreachableBreakEven},
	{engine.ErrInvalidAverageTicket, IssueInvalidAverageTicket},
	{engine.ErrMarginExceedsCapacity, IssueMarginExceeds},
	{engine.ErrZeroVolume, IssueZeroVolume},
	{engine.ErrInvalidInput, IssueInvalidInput},
	{engine.ErrCategoryNotFound, IssueCategoryNotFound},
}

// IssueFromError maps an engine error to its issue code. The second result is
// false for errors that are not business conditions.
func IssueFromError(err error) (Issue, bool) {
	for _, ic := range issueCodes {
		if errors.Is(err, ic.err) {
			return Issue{Code: ic.code, Message: err.Error()}, true
		}
	}
	return Issue{}, false
}

func collectIssues(errs ...error) []Issue {
	issues := []Issue{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if issue, ok := IssueFromError(err); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

// ValidateConfig rejects data entry errors before a configuration is stored.
// Share totals are not checked here: an unbalanced mix is only advisory.
func ValidateConfig(cfg models.BepConfig) error {
	var problems []string
	// nonFinite records NaN and Inf values, which every ordered check below lets through.
	nonFinite := func(name string, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Sprintf("%s must be a finite number", name))
			return true
		}
		return false
	}

	if strings.TrimSpace(cfg.RestaurantID) == "" {
		problems = append(problems, "restaurant id must not be empty")
	}
	switch {
	case nonFinite("average ticket", cfg.AverageTicket):
	case cfg.AverageTicket < 0:
		problems = append(problems, fmt.Sprintf("average ticket %.2f must not be negative", cfg.AverageTicket))
	}
	for _, item := range cfg.FixedCosts {
		if nonFinite(fmt.Sprintf("fixed cost %q amount", item.Label), item.Amount) {
			continue
		}
		if item.Amount < 0 {
			problems = append(problems, fmt.Sprintf("fixed cost %q amount %.2f must not be negative", item.Label, item.Amount))
		}
	}

	inc := cfg.VariableIncidence
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"food cost", inc.FoodCostIncidence},
		{"service", inc.ServiceIncidence},
		{"waste", inc.WasteIncidence},
		{"delivery", inc.DeliveryIncidence},
	} {
		if nonFinite(field.name+" incidence", field.value) {
			continue
		}
		if field.value < 0 || field.value > 100 {
			problems = append(problems, fmt.Sprintf("%s incidence %.2f must be within [0, 100]", field.name, field.value))
		}
	}

	if cfg.ProductMix.MonthlyCoverVolume < 0 {
		problems = append(problems, fmt.Sprintf("monthly cover volume %d must not be negative", cfg.ProductMix.MonthlyCoverVolume))
	}
	for _, c := range cfg.ProductMix.Categories {
		if strings.TrimSpace(c.Name) == "" {
			problems = append(problems, "category name must not be empty")
		}
		if nonFinite(fmt.Sprintf("category %q share", c.Name), c.RevenueSharePercent) ||
			nonFinite(fmt.Sprintf("category %q volume ratio", c.Name), c.VolumeUnitRatio) ||
			nonFinite(fmt.Sprintf("category %q average price", c.Name), c.AveragePrice) ||
			nonFinite(fmt.Sprintf("category %q food cost target", c.Name), c.FoodCostTarget) {
			continue
		}
		if c.RevenueSharePercent < 0 || c.RevenueSharePercent > 100 {
			problems = append(problems, fmt.Sprintf("category %q share %.2f must be within [0, 100]", c.Name, c.RevenueSharePercent))
		}
		if c.VolumeUnitRatio < 0 {
			problems = append(problems, fmt.Sprintf("category %q volume ratio %.2f must not be negative", c.Name, c.VolumeUnitRatio))
		}
		if c.AveragePrice < 0 {
			problems = append(problems, fmt.Sprintf("category %q average price %.2f must not be negative", c.Name, c.AveragePrice))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
