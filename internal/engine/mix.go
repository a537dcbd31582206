package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/mamadbah2/breakeven/internal/domain/models"
)

// shareTolerance absorbs floating point noise when summing shares.
const shareTolerance = 0.01

// MixValidation reports how far the revenue shares are from 100%.
// Deviation is positive when over-allocated and negative when under-allocated.
type MixValidation struct {
	IsValid           bool    `json:"is_valid"`
	TotalSharePercent float64 `json:"total_share_percent"`
	Deviation         float64 `json:"deviation"`
}

// Err returns nil for a valid mix, otherwise an error wrapping ErrConfigurationInvalid.
func (v MixValidation) Err() error {
	if v.IsValid {
		return nil
	}
	return fmt.Errorf("%w: total %.2f%%, deviation %+.2f%%", ErrConfigurationInvalid, v.TotalSharePercent, v.Deviation)
}

// ValidateProductMix checks the soft invariant that shares sum to 100%.
// It never blocks a calculation.
func ValidateProductMix(mix models.ProductMix) MixValidation {
	var total float64
	for _, c := range mix.Categories {
		total += c.RevenueSharePercent
	}
	deviation := total - 100
	return MixValidation{
		IsValid:           math.Abs(deviation) < shareTolerance,
		TotalSharePercent: total,
		Deviation:         deviation,
	}
}

// UnitsForCategory returns the monthly units a category sells, rounded to the nearest unit.
func UnitsForCategory(mix models.ProductMix, category models.RevenueCategory) int {
	return int(math.Round(float64(mix.MonthlyCoverVolume) * category.VolumeUnitRatio))
}

// FindCategory looks a category up by id, then by case-insensitive name.
func FindCategory(mix models.ProductMix, key string) (models.RevenueCategory, error) {
	key = strings.TrimSpace(key)
	for _, c := range mix.Categories {
		if c.ID != "" && c.ID == key {
			return c, nil
		}
	}
	for _, c := range mix.Categories {
		if strings.EqualFold(c.Name, key) {
			return c, nil
		}
	}
	return models.RevenueCategory{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, key)
}
