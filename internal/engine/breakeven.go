package engine

import "github.com/mamadbah2/breakeven/internal/domain/models"

// BreakEvenResult is the global break-even view of a restaurant.
//
// Unreachable is set when variable costs take 100% or more of revenue;
// BreakEvenRevenue is then 0. InvalidTicket is set when the average ticket is
// not positive; BreakEvenCovers is then 0.
type BreakEvenResult struct {
	AggregateVariablePercent float64 `json:"aggregate_variable_percent"`
	MarginRatio              float64 `json:"margin_ratio"`
	BreakEvenRevenue         float64 `json:"break_even_revenue"`
	BreakEvenCovers          float64 `json:"break_even_covers"`
	Unreachable              bool    `json:"unreachable"`
	InvalidTicket            bool    `json:"invalid_ticket"`
}

// Err reports the configuration error behind a sentinel result, if any.
func (r BreakEvenResult) Err() error {
	switch {
	case r.Unreachable:
		return ErrUnreachableBreakEven
	case r.InvalidTicket:
		return ErrInvalidAverageTicket
	default:
		return nil
	}
}

// AggregateVariablePercent sums every incidence, delivery only when enabled.
func AggregateVariablePercent(incidence models.VariableIncidence) float64 {
	total := incidence.FoodCostIncidence + incidence.ServiceIncidence + incidence.WasteIncidence
	if incidence.DeliveryEnabled {
		total += incidence.DeliveryIncidence
	}
	return total
}

// ComputeBreakEven returns the monthly revenue and covers needed for profit to equal zero.
func ComputeBreakEven(totalFixedCosts float64, incidence models.VariableIncidence, averageTicket float64) BreakEvenResult {
	variable := AggregateVariablePercent(incidence)
	result := BreakEvenResult{
		AggregateVariablePercent: variable,
		MarginRatio:              1 - variable/100,
	}

	if result.MarginRatio <= 0 {
		result.Unreachable = true
	} else {
		result.BreakEvenRevenue = totalFixedCosts / result.MarginRatio
	}

	if averageTicket > 0 {
		result.BreakEvenCovers = result.BreakEvenRevenue / averageTicket
	} else {
		result.InvalidTicket = true
	}

	return result
}
