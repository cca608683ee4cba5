package inventory

import (
	"context"

	"github.com/angelmondragon/charmcart-backend/internal/repo"
	"github.com/angelmondragon/charmcart-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository reads and writes the catalog_items table.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// GetItem implements Oracle.
func (r *Repository) GetItem(ctx context.Context, id string) (*Item, error) {
	var row models.CatalogItem
	err := r.DB(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	item := fromModel(row)
	return &item, nil
}

// Upsert inserts the catalog item or replaces its price, status and stock.
func (r *Repository) Upsert(ctx context.Context, row *models.CatalogItem) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "kind", "price", "status", "quantity_available", "updated_at"}),
	}).Create(row).Error
}

// List returns every catalog item ordered by id.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	var rows []models.CatalogItem
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromModel(row))
	}
	return items, nil
}

func fromModel(row models.CatalogItem) Item {
	return Item{
		ID:                row.ID,
		Title:             row.Title,
		Price:             row.Price,
		Status:            row.Status,
		QuantityAvailable: row.QuantityAvailable,
	}
}
