package enums

import "fmt"

// ScopeKind selects the persistence namespace a cart is stored under.
type ScopeKind string

const (
	ScopeKindGuest    ScopeKind = "guest"
	ScopeKindIdentity ScopeKind = "identity"
)

var validScopeKinds = []ScopeKind{
	ScopeKindGuest,
	ScopeKindIdentity,
}

// String implements fmt.Stringer.
func (s ScopeKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScopeKind.
func (s ScopeKind) IsValid() bool {
	for _, candidate := range validScopeKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScopeKind converts raw input into a ScopeKind.
func ParseScopeKind(value string) (ScopeKind, error) {
	for _, candidate := range validScopeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scope kind %q", value)
}
