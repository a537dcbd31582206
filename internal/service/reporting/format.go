package reporting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
	"github.com/mamadbah2/breakeven/internal/service/bep"
)

// Money renders an amount rounded half-up to cents.
func Money(v float64) string {
	return "€" + decimal.NewFromFloat(v).StringFixed(2)
}

// Percent renders a percentage with up to two decimals.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String() + "%"
}

// FormatSummary renders the global break-even view as bot text.
func FormatSummary(s bep.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Break-even (%s)\n", s.RestaurantID)
	fmt.Fprintf(&b, "Fixed costs: %s (staff %s, other %s)\n", Money(s.FixedCosts.Total), Money(s.FixedCosts.StaffCost), Money(s.FixedCosts.OtherCost))
	fmt.Fprintf(&b, "Variable costs: %s of revenue\n", Percent(s.BreakEven.AggregateVariablePercent))

	if s.BreakEven.Unreachable {
		b.WriteString("Break-even unreachable: variable costs take 100% or more of revenue.\n")
	} else {
		fmt.Fprintf(&b, "Break-even revenue: %s / month\n", Money(s.BreakEven.BreakEvenRevenue))
		if s.BreakEven.InvalidTicket {
			b.WriteString("Covers unavailable: set an average ticket above zero with /ticket.\n")
		} else {
			fmt.Fprintf(&b, "Break-even covers: %s at %s average ticket\n",
				decimal.NewFromFloat(s.BreakEven.BreakEvenCovers).Ceil().String(), Money(s.AverageTicket))
		}
	}

	if !s.Mix.IsValid {
		fmt.Fprintf(&b, "Warning: product mix shares total %s (%s).\n", Percent(s.Mix.TotalSharePercent), signed(s.Mix.Deviation))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatPricing renders a category pricing result.
func FormatPricing(r engine.PricingResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: recommended price %s (break-even %s)\n", r.CategoryName, Money(r.RecommendedPrice), Money(r.BreakEvenPrice))
	fmt.Fprintf(&b, "Raw material %s + fixed %s + variable %s + profit %s\n",
		Money(r.Breakdown.RawMaterialCost), Money(r.Breakdown.FixedCostPerUnit),
		Money(r.Breakdown.VariableCostAmount), Money(r.Breakdown.ProfitAmount))
	fmt.Fprintf(&b, "Month: %d units, revenue %s, costs %s, profit %s (%s)",
		r.VolumeUnits, Money(r.Projection.Revenue), Money(r.Projection.Costs),
		Money(r.Projection.Profit), Percent(r.Projection.MarginPercent))

	if r.ZeroVolume {
		b.WriteString("\nWarning: no modeled sales volume, fixed costs are not allocated. Set /covers.")
	}
	return b.String()
}

// FormatError renders an actionable message for engine and service conditions.
func FormatError(err error) string {
	switch {
	case errors.Is(err, engine.ErrMarginExceedsCapacity):
		return "No price works: variable costs plus the desired margin reach 100% of revenue. Lower the margin."
	case errors.Is(err, engine.ErrCategoryNotFound):
		return "Unknown category. Send /mix to list the categories."
	case errors.Is(err, engine.ErrInvalidInput):
		return "Raw material cost and margin must not be negative."
	case errors.Is(err, bep.ErrFixedCostNotFound):
		return "No fixed cost with that id. Send /costs to list them."
	case errors.Is(err, bep.ErrAmbiguousID):
		return "That id matches several fixed costs, send more characters."
	case errors.Is(err, bep.ErrInvalidConfig):
		return "Rejected: " + err.Error()
	default:
		return "Something went wrong, please retry later."
	}
}

// FormatMix renders the product mix with its validation.
func FormatMix(mix models.ProductMix) string {
	if len(mix.Categories) == 0 {
		return "Product mix is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Product mix, %d covers / month\n", mix.MonthlyCoverVolume)
	for _, c := range mix.Categories {
		fmt.Fprintf(&b, "- %s: %s of revenue, %d units\n", c.Name, Percent(c.RevenueSharePercent), engine.UnitsForCategory(mix, c))
	}

	v := engine.ValidateProductMix(mix)
	if v.IsValid {
		b.WriteString("Shares total 100%.")
	} else {
		fmt.Fprintf(&b, "Shares total %s (%s), fix before relying on category prices.", Percent(v.TotalSharePercent), signed(v.Deviation))
	}
	return b.String()
}

// FormatCosts renders the fixed cost lines with short ids for /uncost.
func FormatCosts(cfg models.BepConfig, totals engine.FixedCostTotals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fixed costs %s / month\n", Money(totals.Total))
	fmt.Fprintf(&b, "Staff: %s\n", Money(totals.StaffCost))
	for _, item := range cfg.FixedCosts {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", shortID(item.ID), item.Label, Money(item.Amount))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func signed(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.String() + "%"
	}
	return d.String() + "%"
}
