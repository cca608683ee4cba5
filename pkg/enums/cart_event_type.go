package enums

import "fmt"

// CartEventType names the domain events published on a cart's event bus.
type CartEventType string

const (
	CartEventUpdated          CartEventType = "cart.updated"
	CartEventItemAdded        CartEventType = "cart.item_added"
	CartEventItemRemoved      CartEventType = "cart.item_removed"
	CartEventItemUpdated      CartEventType = "cart.item_updated"
	CartEventCleared          CartEventType = "cart.cleared"
	CartEventValidationFailed CartEventType = "cart.validation_failed"
	CartEventError            CartEventType = "cart.error"
	CartEventUndone           CartEventType = "cart.undone"
	CartEventRedone           CartEventType = "cart.redone"
	CartEventUserLoggedIn     CartEventType = "cart.user_logged_in"
	CartEventUserLoggedOut    CartEventType = "cart.user_logged_out"
	CartEventSynced           CartEventType = "cart.synced"
)

var validCartEventTypes = []CartEventType{
	CartEventUpdated,
	CartEventItemAdded,
	CartEventItemRemoved,
	CartEventItemUpdated,
	CartEventCleared,
	CartEventValidationFailed,
	CartEventError,
	CartEventUndone,
	CartEventRedone,
	CartEventUserLoggedIn,
	CartEventUserLoggedOut,
	CartEventSynced,
}

// String implements fmt.Stringer.
func (c CartEventType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartEventType.
func (c CartEventType) IsValid() bool {
	for _, candidate := range validCartEventTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartEventType converts raw input into a CartEventType.
func ParseCartEventType(value string) (CartEventType, error) {
	for _, candidate := range validCartEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart event type %q", value)
}
