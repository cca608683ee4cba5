package dto

import (
	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/shopspring/decimal"
)

type AddItemRequest struct {
	ID       string            `json:"id" validate:"required,max=128"`
	Title    string            `json:"title" validate:"required,max=200"`
	Price    *decimal.Decimal  `json:"price" validate:"required"`
	Quantity int               `json:"quantity" validate:"required,min=1"`
	Metadata map[string]string `json:"metadata,omitempty" validate:"omitempty,max=20"`
}

// ToInput maps the request onto an engine ItemInput.
func (r AddItemRequest) ToInput() cart.ItemInput {
	in := cart.ItemInput{
		ID:       r.ID,
		Title:    r.Title,
		Metadata: r.Metadata,
	}
	if r.Price != nil {
		in.Price = decimal.NewNullDecimal(*r.Price)
	}
	return in
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type SignInRequest struct {
	IdentityID string `json:"identityId" validate:"required,max=128"`
}

// CartResponse is the payload of every cart endpoint.
type CartResponse struct {
	Cart    cart.State   `json:"cart"`
	Summary cart.Summary `json:"summary"`
	CanUndo bool         `json:"canUndo"`
	CanRedo bool         `json:"canRedo"`
}

type HistoryStepResponse struct {
	CartResponse
	Changed bool `json:"changed"`
}

type SignInResponse struct {
	CartResponse
	Merge cart.MergeReport `json:"merge"`
}
