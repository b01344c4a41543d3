package models

import (
	"time"

	"depo-backend/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transition: değişmez hareket kaydı. Oluşturulur, asla güncellenmez/silinmez.
type Transition struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	BatchID         uuid.UUID          `gorm:"type:uuid;index;not null" json:"batch_id"`
	ItemType        lifecycle.ItemType `gorm:"size:20;not null;index:idx_transitions_item,priority:1" json:"item_type"`
	ItemID          uint               `gorm:"not null;index:idx_transitions_item,priority:2" json:"item_id"`
	Action          lifecycle.Action   `gorm:"size:30;not null;index" json:"action"`
	QtyDelta        decimal.Decimal    `gorm:"type:decimal(18,4);not null" json:"qty_delta"`
	Unit            string             `gorm:"size:10;not null" json:"unit"`
	FromStatusID    *lifecycle.Status  `json:"from_status_id"`
	ToStatusID      *lifecycle.Status  `json:"to_status_id"`
	FromWarehouseID *uint              `json:"from_warehouse_id"`
	FromLocationID  *uint              `json:"from_location_id"`
	ToWarehouseID   *uint              `json:"to_warehouse_id"`
	ToLocationID    *uint              `json:"to_location_id"`
	ContextType     *string            `gorm:"size:30" json:"context_type"`
	ContextID       *uint              `json:"context_id"`
	ActorUserID     uint               `gorm:"not null;index" json:"actor_user_id"`
	Meta            datatypes.JSONMap  `json:"meta"`
	CreatedAt       time.Time          `gorm:"index" json:"created_at"`
}

func (Transition) TableName() string {
	return "inventory_transitions"
}
