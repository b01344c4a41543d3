package models

import (
	"time"

	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
)

// Product: bileşenlerden monte edilen ürün. Ölçüsü her zaman adet (quantity=1).
type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Barcode     *string          `gorm:"size:20;uniqueIndex" json:"barcode"`
	MasterID    *uint            `gorm:"index" json:"master_id"`
	ProductName string           `gorm:"size:150;not null" json:"product_name"`
	RecipeID    *uint            `gorm:"index" json:"recipe_id"`
	StatusID    lifecycle.Status `gorm:"index;not null" json:"status_id"`
	WarehouseID *uint            `gorm:"index" json:"warehouse_id"`
	LocationID  *uint            `gorm:"index" json:"location_id"`

	measure.Fields `gorm:"embedded"`

	CreatedBy  uint       `gorm:"not null" json:"created_by"`
	ApprovedBy *uint      `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
