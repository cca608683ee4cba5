package dto

import (
	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/reconcile"
)

type PlacementRequest struct {
	InstanceID string  `json:"instanceId" validate:"required,max=64"`
	CharmID    string  `json:"charmId" validate:"required,max=128"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
}

type PushDesignRequest struct {
	NecklaceID string             `json:"necklaceId" validate:"required,max=128"`
	Charms     []PlacementRequest `json:"charms" validate:"max=200,dive"`
}

func (r PushDesignRequest) ToDesign() design.Design {
	d := design.Design{NecklaceID: r.NecklaceID, Charms: make([]design.Placement, 0, len(r.Charms))}
	for _, c := range r.Charms {
		d.Charms = append(d.Charms, design.Placement(c))
	}
	return d
}

type MilestoneRequest struct {
	Label string `json:"label" validate:"required,max=80"`
}

type ExportDesignRequest struct {
	SnapshotID string            `json:"snapshotId,omitempty" validate:"max=64"`
	Title      string            `json:"title,omitempty" validate:"max=200"`
	Quantity   int               `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Metadata   map[string]string `json:"metadata,omitempty" validate:"omitempty,max=20"`
}

func (r ExportDesignRequest) ToMetadata() reconcile.ExportMetadata {
	return reconcile.ExportMetadata{Title: r.Title, Quantity: r.Quantity, Metadata: r.Metadata}
}

type CreateBundleRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type DesignResponse struct {
	Snapshot      *design.Snapshot `json:"snapshot"`
	Added         bool             `json:"added"`
	CanUndo       bool             `json:"canUndo"`
	CanRedo       bool             `json:"canRedo"`
	HistoryLength int              `json:"historyLength"`
}

type ExportResponse struct {
	LineItem cart.LineItem `json:"lineItem"`
	CartResponse
}
