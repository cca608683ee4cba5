package enums

import "fmt"

// CatalogItemStatus reports whether a catalog item can currently be purchased.
type CatalogItemStatus string

const (
	CatalogItemStatusActive       CatalogItemStatus = "active"
	CatalogItemStatusInactive     CatalogItemStatus = "inactive"
	CatalogItemStatusDiscontinued CatalogItemStatus = "discontinued"
)

var validCatalogItemStatuses = []CatalogItemStatus{
	CatalogItemStatusActive,
	CatalogItemStatusInactive,
	CatalogItemStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s CatalogItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CatalogItemStatus.
func (s CatalogItemStatus) IsValid() bool {
	for _, candidate := range validCatalogItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsPurchasable reports whether items in this status may be added to a cart.
func (s CatalogItemStatus) IsPurchasable() bool {
	return s == CatalogItemStatusActive
}

// ParseCatalogItemStatus converts raw input into a CatalogItemStatus.
func ParseCatalogItemStatus(value string) (CatalogItemStatus, error) {
	for _, candidate := range validCatalogItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog item status %q", value)
}
