package movement

import (
	"context"
	"sort"
	"strings"

	"depo-backend/internal/apperr"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func validateUses(uses []ComponentUse) ([]uint, error) {
	if len(uses) == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "En az bir bileşen gerekli")
	}
	ids := make([]uint, 0, len(uses))
	seen := map[uint]bool{}
	for _, u := range uses {
		if u.ComponentID == 0 {
			return nil, apperr.Validation(apperr.CodeValidation, "component_id zorunlu")
		}
		if seen[u.ComponentID] {
			return nil, apperr.Validation(apperr.CodeDuplicateItem, "Aynı bileşen birden fazla kez gönderildi").
				With("component_id", u.ComponentID)
		}
		if u.ConsumeQty != nil && !u.ConsumeQty.IsPositive() {
			return nil, apperr.Validation(apperr.CodeInvalidConsumeQty, "Tüketim miktarı 0'dan büyük olmalı").
				With("component_id", u.ComponentID)
		}
		if tooPrecise(u.ConsumeQty) {
			return nil, apperr.Validation(apperr.CodeInvalidConsumeQty, "Tüketim miktarı en fazla 4 ondalık hane içerebilir").
				With("component_id", u.ComponentID).
				With("qty", u.ConsumeQty.String())
		}
		seen[u.ComponentID] = true
		ids = append(ids, u.ComponentID)
	}
	return ids, nil
}

// Assemble yeni bir ürün açar ve bileşenleri ona bağlar.
func (s *Service) Assemble(ctx context.Context, req AssembleRequest, actorID uint) (*AssembleResult, error) {
	name := strings.TrimSpace(req.Product.ProductName)
	if name == "" {
		return nil, apperr.Validation(apperr.CodeValidation, "Ürün adı zorunlu")
	}
	target, ok := lifecycle.ParseStatus(req.Product.Target)
	if !ok || !lifecycle.IsEntry(target) {
		return nil, apperr.Validation(apperr.CodeInvalidTarget, "Ürün hedef durumu pending, production veya screenprint olmalı").
			With("target", req.Product.Target)
	}
	ids, err := validateUses(req.Components)
	if err != nil {
		return nil, err
	}

	res := &AssembleResult{}
	id, err := s.run(ctx, "assemble", actorID, func(tx *gorm.DB, b *batch) error {
		if _, err := place(tx, req.Product.WarehouseID, req.Product.LocationID); err != nil {
			return err
		}

		p := models.Product{
			ProductName: name,
			MasterID:    req.Product.MasterID,
			RecipeID:    req.Product.RecipeID,
			StatusID:    target,
			WarehouseID: req.Product.WarehouseID,
			LocationID:  req.Product.LocationID,
			Fields:      measure.WithAmount(measure.KindUnit, decimal.NewFromInt(1)),
			CreatedBy:   actorID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return apperr.Internal(err)
		}

		comps, err := lockComponents(tx, ids)
		if err != nil {
			return err
		}
		for _, u := range sortedUses(req.Components) {
			linkID, err := s.consume(tx, b, p.ID, comps[u.ComponentID], u.ConsumeQty)
			if err != nil {
				return err
			}
			res.Links = append(res.Links, linkID)
		}

		b.add(models.Transition{
			ItemType:      lifecycle.ItemProduct,
			ItemID:        p.ID,
			Action:        lifecycle.ActionAssembleProduct,
			QtyDelta:      decimal.NewFromInt(1),
			Unit:          measure.KindUnit.Unit(),
			ToStatusID:    statusPtr(target),
			ToWarehouseID: p.WarehouseID,
			ToLocationID:  p.LocationID,
			Meta: datatypes.JSONMap{
				"product_name":    name,
				"component_count": len(req.Components),
			},
		})
		res.Product.ID = p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.BatchID = id.String()
	return res, nil
}

// AddComponents mevcut bir ürüne ek bileşen bağlar.
func (s *Service) AddComponents(ctx context.Context, productID uint, uses []ComponentUse, actorID uint) (*AddComponentsResult, error) {
	if productID == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "product_id zorunlu")
	}
	ids, err := validateUses(uses)
	if err != nil {
		return nil, err
	}

	res := &AddComponentsResult{}
	id, err := s.run(ctx, "add_components", actorID, func(tx *gorm.DB, b *batch) error {
		p, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		if !acceptsComponents(p.StatusID) {
			return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Bu durumdaki ürüne bileşen eklenemez").
				With("product_id", p.ID).
				With("status", p.StatusID.String())
		}

		comps, err := lockComponents(tx, ids)
		if err != nil {
			return err
		}
		for _, u := range sortedUses(uses) {
			linkID, err := s.consume(tx, b, p.ID, comps[u.ComponentID], u.ConsumeQty)
			if err != nil {
				return err
			}
			res.Links = append(res.Links, linkID)
			res.Added++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.BatchID = id.String()
	return res, nil
}

func acceptsComponents(s lifecycle.Status) bool {
	return lifecycle.IsEntry(s) || s == lifecycle.StatusInStock
}

func sortedUses(uses []ComponentUse) []ComponentUse {
	out := append([]ComponentUse(nil), uses...)
	sort.Slice(out, func(i, j int) bool { return out[i].ComponentID < out[j].ComponentID })
	return out
}

// consume bileşenden düşer, link açar ve CONSUME kaydını batch'e ekler.
// Adet türünde her zaman 1 tüketilir; ölçülü türlerde miktar zorunludur.
func (s *Service) consume(tx *gorm.DB, b *batch, productID uint, c *models.Component, requested *decimal.Decimal) (uint, error) {
	kind, err := b.kindOf(tx, c)
	if err != nil {
		return 0, err
	}
	if !lifecycle.Consumable(c.StatusID) {
		return 0, apperr.Conflict(apperr.CodeInvalidStatusTransition, "Bileşen bu durumda tüketilemez").
			With("component_id", c.ID).
			With("status", c.StatusID.String())
	}

	have := measure.Current(kind, c.Fields)
	var qty decimal.Decimal
	if kind == measure.KindUnit {
		qty = decimal.NewFromInt(1)
		if requested != nil && !requested.Equal(qty) {
			return 0, apperr.Validation(apperr.CodeInvalidConsumeQty, "Adet türündeki bileşenden yalnızca 1 tüketilebilir").
				With("component_id", c.ID)
		}
	} else {
		var ok bool
		if qty, ok = positiveQty(requested); !ok {
			return 0, apperr.Validation(apperr.CodeInvalidConsumeQty, "Tüketim miktarı zorunlu ve 0'dan büyük olmalı").
				With("component_id", c.ID)
		}
	}
	if !have.IsPositive() {
		return 0, apperr.InsufficientStock(apperr.CodeNoStock, "Bileşende stok kalmadı").
			With("component_id", c.ID)
	}
	if qty.GreaterThan(have) {
		return 0, apperr.InsufficientStock(apperr.CodeConsumeGtStock, "Tüketim miktarı stoktan fazla").
			With("component_id", c.ID).
			With("have", have.String()).
			With("qty", qty.String())
	}

	from := c.StatusID
	left, err := measure.Decrement(kind, &c.Fields, qty)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if left.IsZero() {
		c.StatusID = lifecycle.StatusUsed
	}
	if err := save(tx, c); err != nil {
		return 0, err
	}

	link := models.ProductComponent{
		ProductID:   productID,
		ComponentID: c.ID,
		ConsumeQty:  qty,
		ReturnedQty: decimal.Zero,
		ScrappedQty: decimal.Zero,
		Unit:        kind.Unit(),
		CreatedBy:   b.actor,
	}
	if err := tx.Create(&link).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	ctxType, ctxID := productContext(productID)
	b.add(models.Transition{
		ItemType:        lifecycle.ItemComponent,
		ItemID:          c.ID,
		Action:          lifecycle.ActionConsume,
		QtyDelta:        qty.Neg(),
		Unit:            kind.Unit(),
		FromStatusID:    statusPtr(from),
		ToStatusID:      statusPtr(c.StatusID),
		FromWarehouseID: c.WarehouseID,
		FromLocationID:  c.LocationID,
		ContextType:     ctxType,
		ContextID:       ctxID,
		Meta:            datatypes.JSONMap{"link_id": link.ID, "remaining": left.String()},
	})
	return link.ID, nil
}
