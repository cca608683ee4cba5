package enums

import "fmt"

// CartItemWarningType explains why a line item landed in a validation bucket.
type CartItemWarningType string

const (
	CartItemWarningTypeNotFound          CartItemWarningType = "not_found"
	CartItemWarningTypeInactive          CartItemWarningType = "inactive"
	CartItemWarningTypeInsufficientStock CartItemWarningType = "insufficient_stock"
	CartItemWarningTypePriceChanged      CartItemWarningType = "price_changed"
	CartItemWarningTypeComponentMissing  CartItemWarningType = "component_missing"
	CartItemWarningTypeClampedToMax      CartItemWarningType = "clamped_to_max"
	CartItemWarningTypeLineLimit         CartItemWarningType = "line_limit"
)

var validCartItemWarningTypes = []CartItemWarningType{
	CartItemWarningTypeNotFound,
	CartItemWarningTypeInactive,
	CartItemWarningTypeInsufficientStock,
	CartItemWarningTypePriceChanged,
	CartItemWarningTypeComponentMissing,
	CartItemWarningTypeClampedToMax,
	CartItemWarningTypeLineLimit,
}

// String implements fmt.Stringer.
func (c CartItemWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartItemWarningType) IsValid() bool {
	for _, candidate := range validCartItemWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemWarningType converts raw input into a CartItemWarningType.
func ParseCartItemWarningType(value string) (CartItemWarningType, error) {
	for _, candidate := range validCartItemWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item warning type %q", value)
}
