package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductComponent: ürüne bağlanan bileşen miktarı.
// ConsumeQty kalan bağlı miktar; ReturnedQty / ScrappedQty yalnızca artan sayaçlardır.
type ProductComponent struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductID   uint            `gorm:"index;not null" json:"product_id"`
	ComponentID uint            `gorm:"index;not null" json:"component_id"`
	ConsumeQty  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"consume_qty"`
	ReturnedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"returned_qty"`
	ScrappedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"scrapped_qty"`
	Unit        string          `gorm:"size:10;not null" json:"unit"`
	CreatedBy   uint            `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
