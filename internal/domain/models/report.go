package models

import "time"

// BreakEvenSnapshot is the point-in-time break-even figure stored by the weekly report.
type BreakEvenSnapshot struct {
	RestaurantID             string    `bson:"restaurant_id" json:"restaurant_id"`
	Date                     time.Time `bson:"date" json:"date"`
	StaffCost                float64   `bson:"staff_cost" json:"staff_cost"`
	OtherFixedCost           float64   `bson:"other_fixed_cost" json:"other_fixed_cost"`
	TotalFixedCost           float64   `bson:"total_fixed_cost" json:"total_fixed_cost"`
	AggregateVariablePercent float64   `bson:"aggregate_variable_percent" json:"aggregate_variable_percent"`
	BreakEvenRevenue         float64   `bson:"break_even_revenue" json:"break_even_revenue"`
	BreakEvenCovers          float64   `bson:"break_even_covers" json:"break_even_covers"`
	Unreachable              bool      `bson:"unreachable" json:"unreachable"`
	MixSharePercent          float64   `bson:"mix_share_percent" json:"mix_share_percent"`
	CreatedAt                time.Time `bson:"created_at" json:"created_at"`
}
