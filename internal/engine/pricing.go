package engine

import (
	"fmt"
	"math"

	"github.com/mamadbah2/breakeven/internal/domain/models"
)

// Breakdown splits the recommended price into its four components.
type Breakdown struct {
	RawMaterialCost    float64 `json:"raw_material_cost"`
	FixedCostPerUnit   float64 `json:"fixed_cost_per_unit"`
	VariableCostAmount float64 `json:"variable_cost_amount"`
	ProfitAmount       float64 `json:"profit_amount"`
}

// Total is the sum of the components; it equals the recommended price.
func (b Breakdown) Total() float64 {
	return b.RawMaterialCost + b.FixedCostPerUnit + b.VariableCostAmount + b.ProfitAmount
}

// Projection is the monthly outcome of selling every modeled unit at the recommended price.
type Projection struct {
	Revenue       float64 `json:"revenue"`
	Costs         float64 `json:"costs"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin_percent"`
}

// PricingResult is the successful outcome of PriceCategory.
type PricingResult struct {
	CategoryID              string     `json:"category_id"`
	CategoryName            string     `json:"category_name"`
	VolumeUnits             int        `json:"volume_units"`
	CategoryFixedCosts      float64    `json:"category_fixed_costs"`
	FixedCostPerUnit        float64    `json:"fixed_cost_per_unit"`
	CategoryVariablePercent float64    `json:"category_variable_percent"`
	BreakEvenPrice          float64    `json:"break_even_price"`
	RecommendedPrice        float64    `json:"recommended_price"`
	Breakdown               Breakdown  `json:"breakdown"`
	Projection              Projection `json:"projection"`
	ZeroVolume              bool       `json:"zero_volume"`
}

// Warnings lists the non-blocking conditions the operator should see.
func (r PricingResult) Warnings() []error {
	if r.ZeroVolume {
		return []error{ErrZeroVolume}
	}
	return nil
}

// CategoryVariablePercent sums the incidences flagged on the category. Food cost
// is left out because the raw material cost already carries it.
func CategoryVariablePercent(category models.RevenueCategory, incidence models.VariableIncidence) float64 {
	var total float64
	if category.VariableCostFlags.Packaging {
		total += incidence.ServiceIncidence
	}
	if category.VariableCostFlags.Waste {
		total += incidence.WasteIncidence
	}
	if category.VariableCostFlags.Delivery && incidence.DeliveryEnabled {
		total += incidence.DeliveryIncidence
	}
	return total
}

// PriceCategory computes the break-even and recommended price of one category
// with the cost breakdown and monthly projection at the recommended price.
func PriceCategory(
	category models.RevenueCategory,
	mix models.ProductMix,
	totalFixedCosts float64,
	incidence models.VariableIncidence,
	rawMaterialCost float64,
	desiredMarginPercent float64,
) (PricingResult, error) {
	if !isFinite(rawMaterialCost) || !isFinite(desiredMarginPercent) || rawMaterialCost < 0 || desiredMarginPercent < 0 {
		return PricingResult{}, &PricingError{
			Kind:   ErrInvalidInput,
			Reason: fmt.Sprintf("raw material cost %.2f, margin %.2f%%", rawMaterialCost, desiredMarginPercent),
		}
	}

	units := UnitsForCategory(mix, category)
	categoryFixed := totalFixedCosts * (category.RevenueSharePercent / 100)

	var perUnit float64
	if units > 0 {
		perUnit = categoryFixed / float64(units)
	}

	variable := CategoryVariablePercent(category, incidence)
	costBase := 1 - variable/100
	denominator := costBase - desiredMarginPercent/100

	if costBase <= 0 || denominator <= 0 {
		return PricingResult{}, &PricingError{
			Kind:   ErrMarginExceedsCapacity,
			Reason: fmt.Sprintf("%s: variable %.2f%% + margin %.2f%%", category.Name, variable, desiredMarginPercent),
		}
	}

	unitCost := rawMaterialCost + perUnit
	recommended := unitCost / denominator

	result := PricingResult{
		CategoryID:              category.ID,
		CategoryName:            category.Name,
		VolumeUnits:             units,
		CategoryFixedCosts:      categoryFixed,
		FixedCostPerUnit:        perUnit,
		CategoryVariablePercent: variable,
		BreakEvenPrice:          unitCost / costBase,
		RecommendedPrice:        recommended,
		Breakdown: Breakdown{
			RawMaterialCost:    rawMaterialCost,
			FixedCostPerUnit:   perUnit,
			VariableCostAmount: recommended * variable / 100,
			ProfitAmount:       recommended * desiredMarginPercent / 100,
		},
		ZeroVolume: units == 0,
	}

	revenue := float64(units) * recommended
	costs := float64(units)*rawMaterialCost + categoryFixed + revenue*variable/100
	result.Projection = Projection{
		Revenue: revenue,
		Costs:   costs,
		Profit:  revenue - costs,
	}
	if revenue > 0 {
		result.Projection.MarginPercent = result.Projection.Profit / revenue * 100
	}

	return result, nil
}

// PricingRule supplies the raw material cost and desired margin for a category.
type PricingRule func(category models.RevenueCategory) (rawMaterialCost, desiredMarginPercent float64)

// CategoryPricing pairs a category with its pricing outcome.
type CategoryPricing struct {
	Category models.RevenueCategory `json:"category"`
	Result   PricingResult          `json:"result"`
	Err      error                  `json:"-"`
}

// PriceMix prices every category of the mix in order. A failing category keeps
// its error and does not stop the others.
func PriceMix(mix models.ProductMix, totalFixedCosts float64, incidence models.VariableIncidence, rule PricingRule) []CategoryPricing {
	out := make([]CategoryPricing, 0, len(mix.Categories))
	for _, c := range mix.Categories {
		raw, margin := rule(c)
		res, err := PriceCategory(c, mix, totalFixedCosts, incidence, raw, margin)
		out = append(out, CategoryPricing{Category: c, Result: res, Err: err})
	}
	return out
}

// FoodCostRule derives the raw material cost from the category's average price
// and food cost target, applying the same margin to every category.
func FoodCostRule(desiredMarginPercent float64) PricingRule {
	return func(c models.RevenueCategory) (float64, float64) {
		return c.AveragePrice * c.FoodCostTarget / 100, desiredMarginPercent
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
