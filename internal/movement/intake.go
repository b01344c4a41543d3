package movement

import (
	"context"
	"errors"

	"depo-backend/internal/apperr"
	"depo-backend/internal/barcode"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateComponent yeni bir bileşeni pending olarak açar.
func (s *Service) CreateComponent(ctx context.Context, req CreateComponentRequest, actorID uint) (*CreateComponentResult, error) {
	if req.MasterID == 0 {
		return nil, apperr.Validation(apperr.CodeMasterRequired, "master_id zorunlu")
	}

	res := &CreateComponentResult{}
	id, err := s.run(ctx, "create_component", actorID, func(tx *gorm.DB, b *batch) error {
		kind, err := measure.ResolveKind(tx, req.MasterID)
		if err != nil {
			return err
		}
		fields, err := measure.Apply(kind, req.Input)
		if err != nil {
			return err
		}
		if _, err := place(tx, req.WarehouseID, req.LocationID); err != nil {
			return err
		}

		c := models.Component{
			MasterID:    req.MasterID,
			StatusID:    lifecycle.StatusPending,
			WarehouseID: req.WarehouseID,
			LocationID:  req.LocationID,
			Fields:      fields,
			CreatedBy:   actorID,
		}
		if err := tx.Create(&c).Error; err != nil {
			return apperr.Internal(err)
		}

		meta := datatypes.JSONMap{"master_id": req.MasterID}
		code, err := barcode.EnsureChangeAndConsume(tx, barcode.Change{
			Incoming: req.Barcode,
			Kind:     lifecycle.ItemComponent,
			RefTable: "components",
			RefID:    c.ID,
			Check:    barcode.TableConflict("components", c.ID),
		})
		if err != nil {
			return err
		}
		if code != "" {
			c.Barcode = &code
			if err := save(tx, &c); err != nil {
				return err
			}
			b.consumed++
			meta["barcode"] = code
		}

		b.add(models.Transition{
			ItemType:      lifecycle.ItemComponent,
			ItemID:        c.ID,
			Action:        lifecycle.ActionCreate,
			QtyDelta:      measure.Current(kind, c.Fields),
			Unit:          kind.Unit(),
			ToStatusID:    statusPtr(lifecycle.StatusPending),
			ToWarehouseID: c.WarehouseID,
			ToLocationID:  c.LocationID,
			Meta:          meta,
		})
		res.Component.ID = c.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.BatchID = id.String()
	return res, nil
}

// DeleteItem yalnızca pending kalemleri siler (satır kalır, durum deleted olur).
func (s *Service) DeleteItem(ctx context.Context, itemType lifecycle.ItemType, itemID uint, actorID uint) (string, error) {
	if !itemType.Valid() {
		return "", apperr.Validation(apperr.CodeValidation, "Geçersiz kalem türü").With("item_type", string(itemType))
	}
	if itemID == 0 {
		return "", apperr.Validation(apperr.CodeValidation, "id zorunlu")
	}

	id, err := s.run(ctx, "delete_item", actorID, func(tx *gorm.DB, b *batch) error {
		var (
			row    any
			status *lifecycle.Status
			fields *measure.Fields
			wID    *uint
			lID    *uint
			kind   = measure.KindUnit
		)

		if itemType == lifecycle.ItemProduct {
			p, err := lockProduct(tx, itemID)
			if err != nil {
				return err
			}
			var links int64
			if err := tx.Model(&models.ProductComponent{}).Where("product_id = ?", p.ID).Count(&links).Error; err != nil {
				return apperr.Internal(err)
			}
			if links > 0 {
				return apperr.Validation(apperr.CodeValidation, "Bağlı bileşeni olan ürün silinemez").
					With("product_id", p.ID).
					With("links", links)
			}
			row, status, fields, wID, lID = p, &p.StatusID, &p.Fields, p.WarehouseID, p.LocationID
		} else {
			var c models.Component
			err := locking(tx).Where("id = ?", itemID).First(&c).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeComponentNotFound, "Bileşen bulunamadı").With("component_id", itemID)
			}
			if err != nil {
				return apperr.Internal(err)
			}
			if kind, err = b.kindOf(tx, &c); err != nil {
				return err
			}
			row, status, fields, wID, lID = &c, &c.StatusID, &c.Fields, c.WarehouseID, c.LocationID
		}

		if *status != lifecycle.StatusPending {
			return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Yalnızca onay bekleyen kalemler silinebilir").
				With("id", itemID).
				With("status", status.String())
		}

		amount := measure.Current(kind, *fields)
		measure.Set(kind, fields, decimal.Zero)
		*status = lifecycle.StatusDeleted
		if err := save(tx, row); err != nil {
			return err
		}

		b.add(models.Transition{
			ItemType:        itemType,
			ItemID:          itemID,
			Action:          lifecycle.ActionDelete,
			QtyDelta:        amount.Neg(),
			Unit:            kind.Unit(),
			FromStatusID:    statusPtr(lifecycle.StatusPending),
			ToStatusID:      statusPtr(lifecycle.StatusDeleted),
			FromWarehouseID: wID,
			FromLocationID:  lID,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
