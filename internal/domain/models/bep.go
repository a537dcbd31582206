package models

import "time"

// FixedCostItem is a monthly fixed cost line entered by the operator (rent, utilities, leasing).
type FixedCostItem struct {
	ID       string  `bson:"id" json:"id"`
	Label    string  `bson:"label" json:"label"`
	Amount   float64 `bson:"amount" json:"amount"`
	Category string  `bson:"category" json:"category"`
}

// Employee is the subset of a staff roster entry needed to derive labour cost.
type Employee struct {
	ID                     string  `bson:"id" json:"id"`
	Name                   string  `bson:"name" json:"name"`
	MonthlySalary          float64 `bson:"monthly_salary" json:"monthly_salary"`
	ContributionPercentage float64 `bson:"contribution_percentage" json:"contribution_percentage"`
}

// VariableIncidence holds the costs expressed as a percentage of revenue.
type VariableIncidence struct {
	FoodCostIncidence float64 `bson:"food_cost_incidence" json:"food_cost_incidence"`
	ServiceIncidence  float64 `bson:"service_incidence" json:"service_incidence"`
	WasteIncidence    float64 `bson:"waste_incidence" json:"waste_incidence"`
	DeliveryEnabled   bool    `bson:"delivery_enabled" json:"delivery_enabled"`
	DeliveryIncidence float64 `bson:"delivery_incidence" json:"delivery_incidence"`
}

// VariableCostFlags select which incidences apply to a revenue category.
type VariableCostFlags struct {
	Packaging bool `bson:"packaging" json:"packaging"`
	Waste     bool `bson:"waste" json:"waste"`
	Delivery  bool `bson:"delivery" json:"delivery"`
}

// RevenueCategory is one slice of the product mix (pizza, drinks, desserts...).
type RevenueCategory struct {
	ID                  string            `bson:"id" json:"id"`
	Name                string            `bson:"name" json:"name"`
	RevenueSharePercent float64           `bson:"revenue_share_percent" json:"revenue_share_percent"`
	AveragePrice        float64           `bson:"average_price" json:"average_price"`
	VolumeUnitRatio     float64           `bson:"volume_unit_ratio" json:"volume_unit_ratio"`
	FoodCostTarget      float64           `bson:"food_cost_target" json:"food_cost_target"`
	VariableCostFlags   VariableCostFlags `bson:"variable_cost_flags" json:"variable_cost_flags"`
}

// ProductMix groups the revenue categories with the monthly cover volume they share.
type ProductMix struct {
	MonthlyCoverVolume int               `bson:"monthly_cover_volume" json:"monthly_cover_volume"`
	Categories         []RevenueCategory `bson:"categories" json:"categories"`
}

// BepConfig is the break-even configuration of one restaurant account.
// It is always read and written as a whole document. Version is the number
// of saves so far; a save carrying a stale version is rejected by the store.
type BepConfig struct {
	RestaurantID      string            `bson:"restaurant_id" json:"restaurant_id"`
	FixedCosts        []FixedCostItem   `bson:"fixed_costs" json:"fixed_costs"`
	VariableIncidence VariableIncidence `bson:"variable_incidence" json:"variable_incidence"`
	AverageTicket     float64           `bson:"average_ticket" json:"average_ticket"`
	ProductMix        ProductMix        `bson:"product_mix" json:"product_mix"`
	Version           int64             `bson:"version" json:"version"`
	UpdatedAt         time.Time         `bson:"updated_at" json:"updated_at"`
}

// DefaultBepConfig returns the configuration a new restaurant account starts with.
func DefaultBepConfig(restaurantID string) BepConfig {
	return BepConfig{
		RestaurantID: restaurantID,
		FixedCosts:   []FixedCostItem{},
		VariableIncidence: VariableIncidence{
			FoodCostIncidence: 30,
			ServiceIncidence:  5,
			WasteIncidence:    2,
		},
		AverageTicket: 15,
		ProductMix: ProductMix{
			Categories: []RevenueCategory{},
		},
	}
}

// Clone returns a deep copy so callers can mutate the snapshot without
// touching the value held by a store.
func (c BepConfig) Clone() BepConfig {
	out := c
	out.FixedCosts = append([]FixedCostItem(nil), c.FixedCosts...)
	out.ProductMix.Categories = append([]RevenueCategory(nil), c.ProductMix.Categories...)
	return out
}
