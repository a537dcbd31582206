// Package engine holds the break-even and product-mix pricing calculations.
//
// Every function is pure: it reads the values it is given and returns a new
// result. Business conditions (invalid mix, unreachable break-even, exhausted
// margin, zero volume) are reported through flags and sentinel errors so the
// caller decides whether to block an action or only warn the operator.
package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationInvalid indicates the product mix shares do not add up to 100%.
	ErrConfigurationInvalid = errors.New("product mix shares do not sum to 100%")

	// ErrUnreachableBreakEven indicates variable costs consume all revenue.
	ErrUnreachableBreakEven = errors.New("variable costs consume 100% or more of revenue, no price can break even")

	// ErrInvalidAverageTicket indicates covers cannot be derived from a non-positive ticket.
	ErrInvalidAverageTicket = errors.New("average ticket must be greater than zero")

	// ErrMarginExceedsCapacity indicates variable costs plus margin leave nothing to cover costs.
	ErrMarginExceedsCapacity = errors.New("variable costs and desired margin exceed 100% of revenue")

	// ErrZeroVolume warns that a category has no modeled sales units.
	ErrZeroVolume = errors.New("category has no modeled sales volume, fixed costs cannot be allocated per unit")

	// ErrInvalidInput indicates a negative raw material cost or margin.
	ErrInvalidInput = errors.New("raw material cost and desired margin must not be negative")

	// ErrCategoryNotFound indicates the requested category is not part of the mix.
	ErrCategoryNotFound = errors.New("category not found in product mix")
)

// PricingError is returned by PriceCategory when no price satisfies the request.
type PricingError struct {
	Kind   error
	Reason string
}

func (e *PricingError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *PricingError) Unwrap() error {
	return e.Kind
}
