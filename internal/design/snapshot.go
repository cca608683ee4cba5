package design

import (
	"math"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
	"github.com/google/uuid"
)

// Placement is one charm instance positioned on the necklace.
type Placement struct {
	InstanceID string  `json:"instanceId"`
	CharmID    string  `json:"charmId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
}

// Design is the editor's charm layout on a single necklace.
type Design struct {
	NecklaceID string      `json:"necklaceId"`
	Charms     []Placement `json:"charms"`
}

// Clone returns a copy that shares no memory with d.
func (d Design) Clone() Design {
	out := Design{NecklaceID: d.NecklaceID}
	if d.Charms != nil {
		out.Charms = append([]Placement(nil), d.Charms...)
	}
	return out
}

// Validate checks the layout is well formed.
func (d Design) Validate() error {
	if strings.TrimSpace(d.NecklaceID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "necklace id is required")
	}
	seen := make(map[string]struct{}, len(d.Charms))
	for _, c := range d.Charms {
		if strings.TrimSpace(c.InstanceID) == "" || strings.TrimSpace(c.CharmID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "charm placements require instance and charm ids")
		}
		if _, dup := seen[c.InstanceID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate charm instance "+c.InstanceID)
		}
		if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.Rotation) {
			return pkgerrors.New(pkgerrors.CodeValidation, "charm placement coordinates must be numbers")
		}
		seen[c.InstanceID] = struct{}{}
	}
	return nil
}

// ComponentCounts returns how many units of each catalog component the design
// consumes: the necklace once plus one per charm placement.
func (d Design) ComponentCounts() map[string]int {
	counts := make(map[string]int, len(d.Charms)+1)
	if d.NecklaceID != "" {
		counts[d.NecklaceID]++
	}
	for _, c := range d.Charms {
		counts[c.CharmID]++
	}
	return counts
}

// ComponentIDs lists every referenced catalog id once per use, necklace first.
func (d Design) ComponentIDs() []string {
	ids := make([]string, 0, len(d.Charms)+1)
	if d.NecklaceID != "" {
		ids = append(ids, d.NecklaceID)
	}
	for _, c := range d.Charms {
		ids = append(ids, c.CharmID)
	}
	return ids
}

// Tolerance bounds how far placements may drift and still count as unchanged.
type Tolerance struct {
	Position float64
	Rotation float64
}

// Equivalent reports whether a and b describe the same layout: same necklace,
// same charm instances and every placement within tolerance.
func Equivalent(a, b Design, tol Tolerance) bool {
	if a.NecklaceID != b.NecklaceID || len(a.Charms) != len(b.Charms) {
		return false
	}
	byInstance := make(map[string]Placement, len(a.Charms))
	for _, c := range a.Charms {
		byInstance[c.InstanceID] = c
	}
	for _, c := range b.Charms {
		other, ok := byInstance[c.InstanceID]
		if !ok || other.CharmID != c.CharmID {
			return false
		}
		if math.Abs(other.X-c.X) > tol.Position || math.Abs(other.Y-c.Y) > tol.Position {
			return false
		}
		if math.Abs(other.Rotation-c.Rotation) > tol.Rotation {
			return false
		}
	}
	return true
}

// Snapshot is an immutable capture of a design plus its history annotations.
type Snapshot struct {
	ID                 string    `json:"id"`
	Design             Design    `json:"design"`
	CreatedAt          time.Time `json:"createdAt"`
	Milestone          string    `json:"milestone,omitempty"`
	ExportedLineItemID string    `json:"exportedLineItemId,omitempty"`
}

// NewSnapshot captures a copy of d.
func NewSnapshot(d Design, now time.Time) Snapshot {
	return Snapshot{
		ID:        uuid.NewString(),
		Design:    d.Clone(),
		CreatedAt: now.UTC(),
	}
}

func (s Snapshot) Clone() Snapshot {
	s.Design = s.Design.Clone()
	return s
}

func (s Snapshot) Exported() bool { return s.ExportedLineItemID != "" }

// ClonePtr copies a possibly nil snapshot pointer.
func ClonePtr(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	out := s.Clone()
	return &out
}
