package models

import "time"

// CartSnapshot is the durable per-identity cart record. CartData holds the
// JSON encoded cart state blob.
type CartSnapshot struct {
	IdentityID  string    `gorm:"column:identity_id;primaryKey"`
	CartData    string    `gorm:"column:cart_data;type:jsonb;not null"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

// TableName pins the table name used by migrations.
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
