package engine

import "github.com/mamadbah2/breakeven/internal/domain/models"

// FixedCostTotals is the monthly fixed cost split between staff and other items.
type FixedCostTotals struct {
	StaffCost float64 `json:"staff_cost"`
	OtherCost float64 `json:"other_cost"`
	Total     float64 `json:"total"`
}

// EmployeeMonthlyCost returns the salary including employer contributions.
func EmployeeMonthlyCost(e models.Employee) float64 {
	return e.MonthlySalary * (1 + e.ContributionPercentage/100)
}

// AggregateFixedCosts sums staff cost and fixed cost items. Amounts are taken
// as given, negative values included.
func AggregateFixedCosts(employees []models.Employee, fixedCosts []models.FixedCostItem) FixedCostTotals {
	var totals FixedCostTotals
	for _, e := range employees {
		totals.StaffCost += EmployeeMonthlyCost(e)
	}
	for _, item := range fixedCosts {
		totals.OtherCost += item.Amount
	}
	totals.Total = totals.StaffCost + totals.OtherCost
	return totals
}
