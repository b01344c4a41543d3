package models

import (
	"time"

	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
)

// Component: hammadde kalemi. Ölçü türü katalog kaydından (Master.StockUnit) gelir.
type Component struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Barcode     *string          `gorm:"size:20;uniqueIndex" json:"barcode"`
	MasterID    uint             `gorm:"index;not null" json:"master_id"`
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

// ComponentMaster: katalog tanımı (kategori + stok birimi). Katalog yönetimi bu servisin dışında.
type ComponentMaster struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:150;not null" json:"name"`
	Category  string `gorm:"size:100;index" json:"category"`
	StockUnit string `gorm:"size:20;not null" json:"stock_unit"` // unit, area, weight, length
	CreatedAt time.Time
	UpdatedAt time.Time
}
