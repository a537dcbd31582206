package models

// PriceRequest is the body of a category pricing request.
type PriceRequest struct {
	Category             string  `json:"category" binding:"required"`
	RawMaterialCost      float64 `json:"raw_material_cost"`
	DesiredMarginPercent float64 `json:"desired_margin_percent"`
}

// FixedCostRequest is the body used to add a fixed cost line.
type FixedCostRequest struct {
	Label    string  `json:"label" binding:"required"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}
