package movement

import (
	"context"
	"sort"
	"strings"

	"depo-backend/internal/apperr"
	"depo-backend/internal/barcode"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RemoveComponents üründen bileşen söker: hurda (yeni damaged_lost kalem) ya da iade.
// Bir link birden fazla satırda geçebilir; toplam miktar bağlı miktarı aşamaz.
func (s *Service) RemoveComponents(ctx context.Context, productID uint, items []RemoveItem, actorID uint) (*RemoveResult, error) {
	if productID == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "product_id zorunlu")
	}
	if len(items) == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "Sökülecek bileşen yok")
	}
	for _, it := range items {
		if it.LinkID == 0 || it.ComponentID == 0 {
			return nil, apperr.Validation(apperr.CodeValidation, "link_id ve component_id zorunlu")
		}
		if it.IsScrap && it.FireQty != nil && !it.FireQty.IsPositive() {
			return nil, apperr.Validation(apperr.CodeInvalidFireQty, "Hurda miktarı 0'dan büyük olmalı").
				With("link_id", it.LinkID)
		}
		if !it.IsScrap && it.ReturnQty != nil && !it.ReturnQty.IsPositive() {
			return nil, apperr.Validation(apperr.CodeInvalidReturnQty, "İade miktarı 0'dan büyük olmalı").
				With("link_id", it.LinkID)
		}
		if it.IsScrap && tooPrecise(it.FireQty) {
			return nil, apperr.Validation(apperr.CodeInvalidFireQty, "Hurda miktarı en fazla 4 ondalık hane içerebilir").
				With("link_id", it.LinkID)
		}
		if !it.IsScrap && tooPrecise(it.ReturnQty) {
			return nil, apperr.Validation(apperr.CodeInvalidReturnQty, "İade miktarı en fazla 4 ondalık hane içerebilir").
				With("link_id", it.LinkID)
		}
	}

	res := &RemoveResult{CreatedScraps: []ScrapResult{}, Returns: []ReturnResult{}}
	id, err := s.run(ctx, "remove_components", actorID, func(tx *gorm.DB, b *batch) error {
		if _, err := lockProduct(tx, productID); err != nil {
			return err
		}
		links, err := lockLinks(tx, productID, items)
		if err != nil {
			return err
		}
		compIDs := make([]uint, 0, len(links))
		for _, l := range links {
			compIDs = append(compIDs, l.ComponentID)
		}
		comps, err := lockComponents(tx, uniq(compIDs))
		if err != nil {
			return err
		}

		r := &remover{s: s, tx: tx, b: b, productID: productID, res: res}
		for _, it := range items {
			link := links[it.LinkID]
			c := comps[link.ComponentID]
			kind, err := b.kindOf(tx, c)
			if err != nil {
				return err
			}
			if it.IsScrap {
				err = r.scrap(link, c, kind, it)
			} else {
				err = r.giveBack(link, c, kind, it)
			}
			if err != nil {
				return err
			}
			res.Processed++
		}
		return r.flushLinks(links)
	})
	if err != nil {
		return nil, err
	}
	res.BatchID = id.String()
	return res, nil
}

// lockLinks ürüne ait linkleri artan id sırasıyla kilitler ve istekteki bileşenle eşleştirir.
func lockLinks(tx *gorm.DB, productID uint, items []RemoveItem) (map[uint]*models.ProductComponent, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.LinkID)
	}
	ids = uniq(ids)

	var rows []models.ProductComponent
	if err := locking(tx).
		Where("id IN ? AND product_id = ?", ids, productID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	out := make(map[uint]*models.ProductComponent, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	for _, it := range items {
		l, ok := out[it.LinkID]
		if !ok || l.ComponentID != it.ComponentID {
			return nil, apperr.NotFound(apperr.CodeLinkNotFound, "Ürün-bileşen bağlantısı bulunamadı").
				With("link_id", it.LinkID).
				With("component_id", it.ComponentID)
		}
	}
	return out, nil
}

func uniq(ids []uint) []uint {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

type remover struct {
	s         *Service
	tx        *gorm.DB
	b         *batch
	productID uint
	res       *RemoveResult
}

// amount: verilmemişse linkte kalan miktarın tamamı
func amount(q *decimal.Decimal, link *models.ProductComponent) decimal.Decimal {
	if q == nil {
		return link.ConsumeQty
	}
	return *q
}

func (r *remover) scrap(link *models.ProductComponent, c *models.Component, kind measure.Kind, it RemoveItem) error {
	qty := amount(it.FireQty, link)
	if !qty.IsPositive() || qty.GreaterThan(link.ConsumeQty) {
		return apperr.InsufficientStock(apperr.CodeFireGtConsumed, "Hurda miktarı bağlı miktardan fazla").
			With("link_id", link.ID).
			With("consumed", link.ConsumeQty.String()).
			With("fire_qty", qty.String())
	}
	if kind == measure.KindUnit && !qty.Equal(link.ConsumeQty) {
		return apperr.Validation(apperr.CodeInvalidFireQty, "Adet türündeki bileşen bölünemez").
			With("link_id", link.ID).
			With("fire_qty", qty.String())
	}

	code, err := barcode.NextLost(r.tx)
	if err != nil {
		return err
	}
	wID, lID := it.WarehouseID, it.LocationID
	if wID == nil {
		wID, lID = c.WarehouseID, c.LocationID
	} else if _, err := place(r.tx, wID, lID); err != nil {
		return err
	}

	lost := models.Component{
		Barcode:     &code,
		MasterID:    c.MasterID,
		StatusID:    lifecycle.StatusDamagedLost,
		WarehouseID: wID,
		LocationID:  lID,
		Fields:      measure.WithAmount(kind, qty),
		CreatedBy:   r.b.actor,
	}
	if err := r.tx.Create(&lost).Error; err != nil {
		return apperr.Internal(err)
	}

	link.ConsumeQty = link.ConsumeQty.Sub(qty)
	link.ScrappedQty = link.ScrappedQty.Add(qty)

	meta := datatypes.JSONMap{"source_component_id": c.ID, "link_id": link.ID}
	if reason := strings.TrimSpace(it.Reason); reason != "" {
		meta["reason"] = reason
	}
	ctxType, ctxID := productContext(r.productID)
	r.b.add(models.Transition{
		ItemType:      lifecycle.ItemComponent,
		ItemID:        lost.ID,
		Action:        lifecycle.ActionCreate,
		QtyDelta:      qty,
		Unit:          kind.Unit(),
		ToStatusID:    statusPtr(lifecycle.StatusDamagedLost),
		ToWarehouseID: wID,
		ToLocationID:  lID,
		ContextType:   ctxType,
		ContextID:     ctxID,
		Meta:          meta,
	})
	r.res.CreatedScraps = append(r.res.CreatedScraps, ScrapResult{ID: lost.ID, Barcode: code, ComponentID: c.ID, Qty: qty})
	return nil
}

// giveBack: yeni barkodla yeni pending kalem açar ya da miktarı asıl bileşene geri yükler.
func (r *remover) giveBack(link *models.ProductComponent, c *models.Component, kind measure.Kind, it RemoveItem) error {
	qty := amount(it.ReturnQty, link)
	if !qty.IsPositive() || qty.GreaterThan(link.ConsumeQty) {
		return apperr.InsufficientStock(apperr.CodeInvalidReturnQty, "İade miktarı bağlı miktardan fazla").
			With("link_id", link.ID).
			With("consumed", link.ConsumeQty.String()).
			With("return_qty", qty.String())
	}
	if kind == measure.KindUnit && !qty.Equal(link.ConsumeQty) {
		return apperr.Validation(apperr.CodeInvalidReturnQty, "Adet türündeki bileşen bölünemez").
			With("link_id", link.ID).
			With("return_qty", qty.String())
	}

	var err error
	if it.NewBarcode != nil && strings.TrimSpace(*it.NewBarcode) != "" {
		err = r.returnAsNew(c, kind, qty, it)
	} else {
		err = r.restore(c, kind, qty, it)
	}
	if err != nil {
		return err
	}

	link.ConsumeQty = link.ConsumeQty.Sub(qty)
	link.ReturnedQty = link.ReturnedQty.Add(qty)
	return nil
}

func (r *remover) returnAsNew(c *models.Component, kind measure.Kind, qty decimal.Decimal, it RemoveItem) error {
	if it.WarehouseID == nil {
		return apperr.Validation(apperr.CodeValidation, "Yeni kalem için warehouse_id zorunlu").
			With("component_id", c.ID)
	}
	if _, err := place(r.tx, it.WarehouseID, it.LocationID); err != nil {
		return err
	}

	item := models.Component{
		MasterID:    c.MasterID,
		StatusID:    lifecycle.StatusPending,
		WarehouseID: it.WarehouseID,
		LocationID:  it.LocationID,
		Fields:      measure.WithAmount(kind, qty),
		CreatedBy:   r.b.actor,
	}
	if err := r.tx.Create(&item).Error; err != nil {
		return apperr.Internal(err)
	}
	code, err := barcode.EnsureChangeAndConsume(r.tx, barcode.Change{
		Incoming: it.NewBarcode,
		Kind:     lifecycle.ItemComponent,
		RefTable: "components",
		RefID:    item.ID,
		Check:    barcode.TableConflict("components", item.ID),
	})
	if err != nil {
		return err
	}
	item.Barcode = &code
	if err := save(r.tx, &item); err != nil {
		return err
	}
	r.b.consumed++

	ctxType, ctxID := productContext(r.productID)
	r.b.add(models.Transition{
		ItemType:      lifecycle.ItemComponent,
		ItemID:        item.ID,
		Action:        lifecycle.ActionReturn,
		QtyDelta:      qty,
		Unit:          kind.Unit(),
		ToStatusID:    statusPtr(lifecycle.StatusPending),
		ToWarehouseID: item.WarehouseID,
		ToLocationID:  item.LocationID,
		ContextType:   ctxType,
		ContextID:     ctxID,
		Meta:          datatypes.JSONMap{"source_component_id": c.ID, "barcode": code},
	})
	r.res.Returns = append(r.res.Returns, ReturnResult{ComponentID: item.ID, NewItem: true, Qty: qty})
	return nil
}

// restore yalnızca tüketilebilir ya da tamamen tüketilmiş (used) bileşene yapılır;
// satılmış, hurda veya silinmiş kalem için iade new_barcode ile yeni kalem olarak açılır.
func (r *remover) restore(c *models.Component, kind measure.Kind, qty decimal.Decimal, it RemoveItem) error {
	fromStatus := c.StatusID
	restorable := lifecycle.Consumable(fromStatus) ||
		(fromStatus == lifecycle.StatusUsed && lifecycle.CanTransition(fromStatus, lifecycle.StatusInStock))
	if !restorable {
		return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Bu durumdaki bileşene iade yapılamaz, new_barcode ile yeni kalem açın").
			With("component_id", c.ID).
			With("status", fromStatus.String())
	}
	fromW, fromL := c.WarehouseID, c.LocationID

	if it.WarehouseID != nil {
		if _, err := place(r.tx, it.WarehouseID, it.LocationID); err != nil {
			return err
		}
		c.WarehouseID, c.LocationID = it.WarehouseID, it.LocationID
	}
	if c.StatusID == lifecycle.StatusUsed {
		if c.Barcode == nil || barcode.Validate(*c.Barcode, lifecycle.ItemComponent) != nil {
			return apperr.Validation(apperr.CodeBarcodeRequired, "Barkodsuz bileşen stoğa dönemez, new_barcode verin").
				With("component_id", c.ID)
		}
		c.StatusID = lifecycle.StatusInStock
	}
	measure.Set(kind, &c.Fields, measure.Current(kind, c.Fields).Add(qty))
	if err := save(r.tx, c); err != nil {
		return err
	}

	ctxType, ctxID := productContext(r.productID)
	r.b.add(models.Transition{
		ItemType:        lifecycle.ItemComponent,
		ItemID:          c.ID,
		Action:          lifecycle.ActionReturn,
		QtyDelta:        qty,
		Unit:            kind.Unit(),
		FromStatusID:    statusPtr(fromStatus),
		ToStatusID:      statusPtr(c.StatusID),
		FromWarehouseID: fromW,
		FromLocationID:  fromL,
		ToWarehouseID:   c.WarehouseID,
		ToLocationID:    c.LocationID,
		ContextType:     ctxType,
		ContextID:       ctxID,
	})
	r.res.Returns = append(r.res.Returns, ReturnResult{ComponentID: c.ID, Qty: qty})
	return nil
}

// flushLinks: tükenen linkler silinir, diğerleri güncellenir
func (r *remover) flushLinks(links map[uint]*models.ProductComponent) error {
	for _, l := range links {
		if l.ConsumeQty.IsZero() {
			if err := r.tx.Delete(&models.ProductComponent{}, l.ID).Error; err != nil {
				return apperr.Internal(err)
			}
			continue
		}
		if err := r.tx.Model(l).
			Select("consume_qty", "returned_qty", "scrapped_qty", "updated_at").
			Updates(l).Error; err != nil {
			return apperr.Internal(err)
		}
	}
	return nil
}
