// Package cart owns the canonical cart state and the only code allowed to mutate it.
package cart

import (
	"maps"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/shopspring/decimal"
)

// DesignIDPrefix marks line item ids generated for exported designs.
const DesignIDPrefix = "design-"

// LineItem is one cart entry: a catalog product or an exported custom design.
type LineItem struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Price          decimal.Decimal   `json:"price"`
	Quantity       int               `json:"quantity"`
	LineTotal      decimal.Decimal   `json:"lineTotal"`
	IsCustomDesign bool              `json:"isCustomDesign"`
	Design         *design.Snapshot  `json:"design,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Clone returns a copy sharing no mutable memory with li.
func (li LineItem) Clone() LineItem {
	li.Design = design.ClonePtr(li.Design)
	if li.Metadata != nil {
		li.Metadata = maps.Clone(li.Metadata)
	}
	return li
}

// State is the full cart. Money fields are always derived by Recompute.
type State struct {
	Items       []LineItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Shipping    decimal.Decimal `json:"shipping"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	SessionID   string          `json:"sessionId"`
	IdentityID  *string         `json:"identityId,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Version     int64           `json:"version"`
	MergedFrom  []string        `json:"mergedFrom,omitempty"`
}

// NewState returns an empty cart for the session.
func NewState(sessionID string, identityID *string) State {
	s := State{
		Items:      []LineItem{},
		SessionID:  sessionID,
		IdentityID: cloneString(identityID),
	}
	return s
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	items := make([]LineItem, len(s.Items))
	for i, item := range s.Items {
		items[i] = item.Clone()
	}
	s.Items = items
	s.IdentityID = cloneString(s.IdentityID)
	if s.MergedFrom != nil {
		s.MergedFrom = append([]string(nil), s.MergedFrom...)
	}
	return s
}

func (s State) IsGuest() bool {
	return s.IdentityID == nil || *s.IdentityID == ""
}

// Find returns the index of the line item with id.
func (s State) Find(id string) (int, bool) {
	for i, item := range s.Items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

// LineItemIDs lists the ids in cart order.
func (s State) LineItemIDs() []string {
	ids := make([]string, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.ID
	}
	return ids
}

// MergeKey identifies this exact snapshot of a guest cart for merge idempotence.
func (s State) MergeKey() string {
	return s.SessionID + "@" + s.LastUpdated.UTC().Format(time.RFC3339Nano)
}

func (s State) hasMerged(key string) bool {
	for _, k := range s.MergedFrom {
		if k == key {
			return true
		}
	}
	return false
}

// removedIDs lists ids present in before but not in after.
func removedIDs(before, after State) []string {
	keep := make(map[string]struct{}, len(after.Items))
	for _, item := range after.Items {
		keep[item.ID] = struct{}{}
	}
	var out []string
	for _, item := range before.Items {
		if _, ok := keep[item.ID]; !ok {
			out = append(out, item.ID)
		}
	}
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
