package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
)

// CatalogItem is a purchasable charm, chain, or accessory with its live stock.
type CatalogItem struct {
	ID                string                  `gorm:"column:id;primaryKey"`
	Title             string                  `gorm:"column:title;not null"`
	Kind              string                  `gorm:"column:kind;not null;default:'charm'"`
	Price             decimal.Decimal         `gorm:"column:price;type:numeric(12,2);not null"`
	Status            enums.CatalogItemStatus `gorm:"column:status;not null;default:'active'"`
	QuantityAvailable int                     `gorm:"column:quantity_available;not null;default:0"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by migrations.
func (CatalogItem) TableName() string {
	return "catalog_items"
}
