package movement

import (
	"context"
	"errors"
	"sort"
	"time"

	"depo-backend/internal/apperr"
	"depo-backend/internal/barcode"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// approvable: onayda bileşen ve ürün için ortak alanlar
type approvable struct {
	row         any
	table       string
	barcode     **string
	status      *lifecycle.Status
	warehouseID **uint
	locationID  **uint
	approvedBy  **uint
	approvedAt  **time.Time
	unit        string
}

func (s *Service) Approve(ctx context.Context, req ApproveRequest, actorID uint) (*ApproveResult, error) {
	if !req.Scope.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidScope, "Geçersiz onay kapsamı").With("scope", string(req.Scope))
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "Onaylanacak kalem yok")
	}
	seen := map[lifecycle.ItemType]map[uint]bool{lifecycle.ItemComponent: {}, lifecycle.ItemProduct: {}}
	for _, it := range req.Items {
		if !it.Kind.Valid() {
			return nil, apperr.Validation(apperr.CodeValidation, "Geçersiz kalem türü").With("kind", string(it.Kind))
		}
		if it.ID == 0 || it.WarehouseID == nil {
			return nil, apperr.Validation(apperr.CodeValidation, "id ve warehouse_id zorunlu")
		}
		if seen[it.Kind][it.ID] {
			return nil, apperr.Validation(apperr.CodeDuplicateItem, "Aynı kalem birden fazla kez gönderildi").
				With("kind", string(it.Kind)).
				With("id", it.ID)
		}
		seen[it.Kind][it.ID] = true
	}

	// Kilit sırası: önce bileşenler, sonra ürünler; her grupta artan id
	items := append([]ApproveItem(nil), req.Items...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Kind != items[j].Kind {
			return items[i].Kind == lifecycle.ItemComponent
		}
		return items[i].ID < items[j].ID
	})

	res := &ApproveResult{}
	id, err := s.run(ctx, "approve", actorID, func(tx *gorm.DB, b *batch) error {
		for _, it := range items {
			if err := s.approveOne(tx, b, req.Scope, it); err != nil {
				return err
			}
			res.Approved++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.BatchID = id.String()
	return res, nil
}

func (s *Service) lockApprovable(tx *gorm.DB, b *batch, it ApproveItem) (*approvable, error) {
	if it.Kind == lifecycle.ItemProduct {
		p, err := lockProduct(tx, it.ID)
		if err != nil {
			return nil, err
		}
		return &approvable{
			row: p, table: "products",
			barcode: &p.Barcode, status: &p.StatusID,
			warehouseID: &p.WarehouseID, locationID: &p.LocationID,
			approvedBy: &p.ApprovedBy, approvedAt: &p.ApprovedAt,
			unit: measure.KindUnit.Unit(),
		}, nil
	}

	var c models.Component
	err := locking(tx).Where("id = ?", it.ID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.CodeComponentNotFound, "Bileşen bulunamadı").With("component_id", it.ID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	kind, err := b.kindOf(tx, &c)
	if err != nil {
		return nil, err
	}
	return &approvable{
		row: &c, table: "components",
		barcode: &c.Barcode, status: &c.StatusID,
		warehouseID: &c.WarehouseID, locationID: &c.LocationID,
		approvedBy: &c.ApprovedBy, approvedAt: &c.ApprovedAt,
		unit: kind.Unit(),
	}, nil
}

func (s *Service) approveOne(tx *gorm.DB, b *batch, scope lifecycle.Scope, it ApproveItem) error {
	a, err := s.lockApprovable(tx, b, it)
	if err != nil {
		return err
	}

	from := *a.status
	if from != scope.SourceStatus() {
		return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Kalem bu kapsamda onaylanamaz").
			With("id", it.ID).
			With("status", from.String()).
			With("expected", scope.SourceStatus().String())
	}

	w, err := place(tx, it.WarehouseID, it.LocationID)
	if err != nil {
		return err
	}
	target := scope.ApprovalTarget(w.Department)
	if !lifecycle.CanTransition(from, target) {
		return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Geçersiz durum geçişi").
			With("from", from.String()).
			With("to", target.String())
	}

	if lifecycle.RequiresBarcode(target) {
		if err := requireBarcode(*a.barcode, it.Barcode, it.Kind); err != nil {
			return err.With("id", it.ID)
		}
	}

	oldBarcode := *a.barcode
	newCode, err := barcode.EnsureChangeAndConsume(tx, barcode.Change{
		Current:  oldBarcode,
		Incoming: it.Barcode,
		Kind:     it.Kind,
		RefTable: a.table,
		RefID:    it.ID,
		Check:    barcode.TableConflict(a.table, it.ID),
	})
	if err != nil {
		return err
	}

	fromW, fromL := *a.warehouseID, *a.locationID
	moved := !samePlace(fromW, it.WarehouseID) || !samePlace(fromL, it.LocationID)

	now := time.Now()
	*a.status = target
	*a.warehouseID = it.WarehouseID
	*a.locationID = it.LocationID
	*a.approvedBy = uintPtr(b.actor)
	*a.approvedAt = &now
	if newCode != "" {
		*a.barcode = &newCode
		b.consumed++
	}
	if err := save(tx, a.row); err != nil {
		return err
	}

	base := models.Transition{ItemType: it.Kind, ItemID: it.ID, QtyDelta: decimal.Zero, Unit: a.unit}
	if moved {
		e := base
		e.Action = lifecycle.ActionMove
		e.FromWarehouseID, e.FromLocationID = fromW, fromL
		e.ToWarehouseID, e.ToLocationID = it.WarehouseID, it.LocationID
		e.Meta = datatypes.JSONMap{"scope": string(scope)}
		b.add(e)
	}
	if target != from {
		e := base
		e.Action = lifecycle.ActionApprove
		e.FromStatusID, e.ToStatusID = statusPtr(from), statusPtr(target)
		e.ToWarehouseID, e.ToLocationID = it.WarehouseID, it.LocationID
		e.Meta = datatypes.JSONMap{"scope": string(scope)}
		b.add(e)
	}
	if newCode != "" {
		e := base
		e.Action = lifecycle.ActionAttributeChange
		meta := datatypes.JSONMap{"field": "barcode", "new": newCode}
		if oldBarcode != nil {
			meta["old"] = *oldBarcode
		}
		e.Meta = meta
		b.add(e)
	}
	return nil
}

// requireBarcode: in_stock'a girecek kalemin gelen ya da mevcut barkodu geçerli olmalı
func requireBarcode(current, incoming *string, kind lifecycle.ItemType) *apperr.Error {
	code := ""
	if incoming != nil {
		code = barcode.Normalize(*incoming)
	}
	if code == "" && current != nil {
		code = barcode.Normalize(*current)
	}
	if code == "" {
		return apperr.Validation(apperr.CodeBarcodeRequired, "Stoğa giriş için barkod zorunlu")
	}
	if err := barcode.Validate(code, kind); err != nil {
		return apperr.From(err)
	}
	return nil
}
