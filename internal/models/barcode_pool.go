package models

import "time"

type BarcodePoolStatus string

const (
	PoolAvailable BarcodePoolStatus = "available"
	PoolUsed      BarcodePoolStatus = "used"
	PoolVoid      BarcodePoolStatus = "void"
)

// BarcodePoolEntry: önceden basılmış etiket havuzu. available -> used yalnızca bir kez.
type BarcodePoolEntry struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Code         string            `gorm:"size:20;not null;uniqueIndex" json:"code"`
	Kind         string            `gorm:"size:20;not null;index" json:"kind"`
	Status       BarcodePoolStatus `gorm:"size:20;not null;default:available;index" json:"status"`
	UsedAt       *time.Time        `json:"used_at"`
	UsedRefTable *string           `gorm:"size:50" json:"used_ref_table"`
	UsedRefID    *uint             `json:"used_ref_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (BarcodePoolEntry) TableName() string {
	return "barcode_pool"
}

// BarcodeCounter: havuz dışı sıralı kodlar (ör: hurda "L" kodları) için sayaç
type BarcodeCounter struct {
	Name      string `gorm:"primaryKey;size:20"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
