package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/repo"
	"github.com/angelmondragon/charmcart-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DurableStore keeps identity carts in cart_snapshots. A save never
// replaces a row with a newer last_updated.
type DurableStore struct {
	repo.Base
}

func NewDurableStore(db *gorm.DB) *DurableStore {
	return &DurableStore{Base: repo.NewBase(db)}
}

func (s *DurableStore) Load(ctx context.Context, scope cart.Scope) (*cart.State, error) {
	var row models.CartSnapshot
	err := s.DB(ctx).Where("identity_id = ?", scope.ID).First(&row).Error
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart %s: %w", scope, err)
	}
	var state cart.State
	if err := json.Unmarshal([]byte(row.CartData), &state); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", scope, err)
	}
	return &state, nil
}

func (s *DurableStore) Save(ctx context.Context, scope cart.Scope, state cart.State) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", scope, err)
	}
	row := models.CartSnapshot{
		IdentityID:  scope.ID,
		CartData:    string(body),
		LastUpdated: state.LastUpdated.UTC(),
	}
	return s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cart_data", "last_updated"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "cart_snapshots.last_updated <= excluded.last_updated"},
		}},
	}).Create(&row).Error
}

func (s *DurableStore) Clear(ctx context.Context, scope cart.Scope) error {
	return s.DB(ctx).Where("identity_id = ?", scope.ID).Delete(&models.CartSnapshot{}).Error
}
