package movement

import (
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"

	"github.com/shopspring/decimal"
)

type ApproveItem struct {
	ID          uint               `json:"id"`
	Kind        lifecycle.ItemType `json:"kind"`
	WarehouseID *uint              `json:"warehouse_id"`
	LocationID  *uint              `json:"location_id"`
	Barcode     *string            `json:"barcode"`
}

type ApproveRequest struct {
	Scope lifecycle.Scope `json:"scope"`
	Items []ApproveItem   `json:"items"`
}

type ApproveResult struct {
	BatchID  string `json:"batch_id"`
	Approved int    `json:"approved"`
}

// ComponentUse: montaj ve bileşen eklemede tüketilecek miktar.
// Adet türünde ConsumeQty verilmese de 1 tüketilir.
type ComponentUse struct {
	ComponentID uint             `json:"component_id"`
	ConsumeQty  *decimal.Decimal `json:"consume_qty"`
}

type ProductDraft struct {
	ProductName string `json:"product_name"`
	Target      string `json:"target"`
	RecipeID    *uint  `json:"recipe_id"`
	MasterID    *uint  `json:"master_id"`
	WarehouseID *uint  `json:"warehouse_id"`
	LocationID  *uint  `json:"location_id"`
}

type AssembleRequest struct {
	Product    ProductDraft   `json:"product"`
	Components []ComponentUse `json:"components"`
}

type AssembleResult struct {
	BatchID string   `json:"batch_id"`
	Product IDResult `json:"product"`
	Links   []uint   `json:"links"`
}

type IDResult struct {
	ID uint `json:"id"`
}

type AddComponentsResult struct {
	BatchID string `json:"batch_id"`
	Added   int    `json:"added"`
	Links   []uint `json:"links"`
}

// RemoveItem: IsScrap true ise hurda (FireQty, Reason), değilse iade
// (ReturnQty, NewBarcode, WarehouseID, LocationID). Miktar verilmezse bağlı miktarın tamamı.
type RemoveItem struct {
	LinkID      uint             `json:"link_id"`
	ComponentID uint             `json:"component_id"`
	IsScrap     bool             `json:"is_scrap"`
	FireQty     *decimal.Decimal `json:"fire_qty"`
	Reason      string           `json:"reason"`
	NewBarcode  *string          `json:"new_barcode"`
	ReturnQty   *decimal.Decimal `json:"return_qty"`
	WarehouseID *uint            `json:"warehouse_id"`
	LocationID  *uint            `json:"location_id"`
}

type ScrapResult struct {
	ID          uint            `json:"id"`
	Barcode     string          `json:"barcode"`
	ComponentID uint            `json:"source_component_id"`
	Qty         decimal.Decimal `json:"qty"`
}

type ReturnResult struct {
	ComponentID uint            `json:"component_id"`
	NewItem     bool            `json:"new_item"`
	Qty         decimal.Decimal `json:"qty"`
}

type RemoveResult struct {
	BatchID       string         `json:"batch_id"`
	Processed     int            `json:"processed"`
	CreatedScraps []ScrapResult  `json:"createdScraps"`
	Returns       []ReturnResult `json:"returns"`
}

type ExitTarget string

const (
	ExitSale  ExitTarget = "sale"
	ExitStock ExitTarget = "stock"
)

// ExitItem: sale hedefinde ConsumeQty verilmezse kalemin tamamı satılır.
// stock hedefi kalemi WarehouseID/LocationID'ye taşır.
type ExitItem struct {
	ComponentID uint             `json:"component_id"`
	Target      ExitTarget       `json:"target"`
	ConsumeQty  *decimal.Decimal `json:"consume_qty"`
	WarehouseID *uint            `json:"warehouse_id"`
	LocationID  *uint            `json:"location_id"`
}

type ExitResult struct {
	BatchID   string `json:"batch_id"`
	Processed int    `json:"processed"`
}

type CreateComponentRequest struct {
	MasterID    uint    `json:"master_id"`
	Barcode     *string `json:"barcode"`
	WarehouseID *uint   `json:"warehouse_id"`
	LocationID  *uint   `json:"location_id"`
	measure.Input
}

type CreateComponentResult struct {
	BatchID   string   `json:"batch_id"`
	Component IDResult `json:"component"`
}
