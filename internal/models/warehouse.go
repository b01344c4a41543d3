package models

import "time"

// Warehouse: depo. Department onay hedefini belirler (stock, production, screenprint).
type Warehouse struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:100;not null;unique" json:"name"`
	Department string `gorm:"size:20;not null;index" json:"department"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Location struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WarehouseID uint   `gorm:"index;not null" json:"warehouse_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status: durum adları için okuma tablosu (lifecycle enum'u ile seed edilir)
type Status struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:30;not null;unique" json:"name"`
}
