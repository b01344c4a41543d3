package movement

import (
	"context"

	"depo-backend/internal/apperr"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Exit bileşenleri satışa çıkarır ya da başka bir depoya aktarır.
func (s *Service) Exit(ctx context.Context, items []ExitItem, actorID uint) (*ExitResult, error) {
	if len(items) == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "Çıkış yapılacak bileşen yok")
	}
	ids := make([]uint, 0, len(items))
	seen := map[uint]bool{}
	for _, it := range items {
		if it.ComponentID == 0 {
			return nil, apperr.Validation(apperr.CodeValidation, "component_id zorunlu")
		}
		if seen[it.ComponentID] {
			return nil, apperr.Validation(apperr.CodeDuplicateItem, "Aynı bileşen birden fazla kez gönderildi").
				With("component_id", it.ComponentID)
		}
		seen[it.ComponentID] = true
		switch it.Target {
		case ExitSale:
			if it.ConsumeQty != nil && !it.ConsumeQty.IsPositive() {
				return nil, apperr.Validation(apperr.CodeInvalidConsumeQty, "Çıkış miktarı 0'dan büyük olmalı").
					With("component_id", it.ComponentID)
			}
			if tooPrecise(it.ConsumeQty) {
				return nil, apperr.Validation(apperr.CodeInvalidConsumeQty, "Çıkış miktarı en fazla 4 ondalık hane içerebilir").
					With("component_id", it.ComponentID).
					With("qty", it.ConsumeQty.String())
			}
		case ExitStock:
			if it.WarehouseID == nil {
				return nil, apperr.Validation(apperr.CodeValidation, "Depo aktarımında warehouse_id zorunlu").
					With("component_id", it.ComponentID)
			}
		default:
			return nil, apperr.Validation(apperr.CodeInvalidTarget, "Çıkış hedefi sale veya stock olmalı").
				With("target", string(it.Target))
		}
		ids = append(ids, it.ComponentID)
	}

	res := &ExitResult{}
	id, err := s.run(ctx, "exit", actorID, func(tx *gorm.DB, b *batch) error {
		comps, err := lockComponents(tx, ids)
		if err != nil {
			return err
		}
		for _, it := range items {
			c := comps[it.ComponentID]
			kind, err := b.kindOf(tx, c)
			if err != nil {
				return err
			}
			if err := checkExitable(c, kind); err != nil {
				return err
			}
			if it.Target == ExitSale {
				err = sell(tx, b, c, kind, it.ConsumeQty)
			} else {
				err = transfer(tx, b, c, kind, it)
			}
			if err != nil {
				return err
			}
			res.Processed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.BatchID = id.String()
	return res, nil
}

func checkExitable(c *models.Component, kind measure.Kind) error {
	if c.StatusID == lifecycle.StatusInStock {
		return nil
	}
	if !measure.Current(kind, c.Fields).IsPositive() {
		return apperr.InsufficientStock(apperr.CodeNoStock, "Bileşende stok kalmadı").
			With("component_id", c.ID).
			With("status", c.StatusID.String())
	}
	return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Yalnızca stoktaki bileşenler çıkış yapabilir").
		With("component_id", c.ID).
		With("status", c.StatusID.String())
}

// sell: miktar verilmezse kalemin tamamı satılır; kalan sıfıra inerse durum sold olur.
func sell(tx *gorm.DB, b *batch, c *models.Component, kind measure.Kind, requested *decimal.Decimal) error {
	have := measure.Current(kind, c.Fields)
	if !have.IsPositive() {
		return apperr.InsufficientStock(apperr.CodeNoStock, "Bileşende stok kalmadı").With("component_id", c.ID)
	}
	qty := have
	mode := "unit"
	if requested != nil {
		qty = *requested
		mode = "measure"
	}
	if qty.GreaterThan(have) {
		return apperr.InsufficientStock(apperr.CodeConsumeGtStock, "Çıkış miktarı stoktan fazla").
			With("component_id", c.ID).
			With("have", have.String()).
			With("qty", qty.String())
	}
	if kind == measure.KindUnit && !qty.Equal(have) {
		return apperr.Validation(apperr.CodeInvalidConsumeQty, "Adet türündeki bileşen yalnızca bütün olarak satılabilir").
			With("component_id", c.ID).
			With("qty", qty.String())
	}

	from := c.StatusID
	left, err := measure.Decrement(kind, &c.Fields, qty)
	if err != nil {
		return apperr.Internal(err)
	}
	action := lifecycle.ActionAdjust
	if left.IsZero() {
		c.StatusID = lifecycle.StatusSold
		action = lifecycle.ActionStatusChange
	}
	if err := save(tx, c); err != nil {
		return err
	}

	b.add(models.Transition{
		ItemType:        lifecycle.ItemComponent,
		ItemID:          c.ID,
		Action:          action,
		QtyDelta:        qty.Neg(),
		Unit:            kind.Unit(),
		FromStatusID:    statusPtr(from),
		ToStatusID:      statusPtr(c.StatusID),
		FromWarehouseID: c.WarehouseID,
		FromLocationID:  c.LocationID,
		Meta:            datatypes.JSONMap{"target": string(ExitSale), "mode": mode, "remaining": left.String()},
	})
	return nil
}

// transfer: kalemi yeni yerine taşır; çıkış ve giriş ayrı ADJUST kayıtlarıdır.
func transfer(tx *gorm.DB, b *batch, c *models.Component, kind measure.Kind, it ExitItem) error {
	if _, err := place(tx, it.WarehouseID, it.LocationID); err != nil {
		return err
	}
	if samePlace(c.WarehouseID, it.WarehouseID) && samePlace(c.LocationID, it.LocationID) {
		return apperr.Validation(apperr.CodeValidation, "Hedef konum mevcut konumla aynı").
			With("component_id", c.ID)
	}

	have := measure.Current(kind, c.Fields)
	fromW, fromL := c.WarehouseID, c.LocationID
	c.WarehouseID, c.LocationID = it.WarehouseID, it.LocationID
	if err := save(tx, c); err != nil {
		return err
	}

	status := statusPtr(c.StatusID)
	meta := datatypes.JSONMap{"target": string(ExitStock)}
	b.add(models.Transition{
		ItemType:        lifecycle.ItemComponent,
		ItemID:          c.ID,
		Action:          lifecycle.ActionAdjust,
		QtyDelta:        have.Neg(),
		Unit:            kind.Unit(),
		FromStatusID:    status,
		ToStatusID:      status,
		FromWarehouseID: fromW,
		FromLocationID:  fromL,
		Meta:            meta,
	})
	b.add(models.Transition{
		ItemType:      lifecycle.ItemComponent,
		ItemID:        c.ID,
		Action:        lifecycle.ActionAdjust,
		QtyDelta:      have,
		Unit:          kind.Unit(),
		FromStatusID:  status,
		ToStatusID:    status,
		ToWarehouseID: c.WarehouseID,
		ToLocationID:  c.LocationID,
		Meta:          meta,
	})
	return nil
}
