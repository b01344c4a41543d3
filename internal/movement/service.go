// Package movement holds the multi-item operations that mutate inventory rows and
// append the matching ledger batch inside one transaction.
package movement

import (
	"context"
	"errors"
	"sort"
	"time"

	"depo-backend/internal/apperr"
	"depo-backend/internal/ledger"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/metrics"
	"depo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	ledger *ledger.Ledger
	log    *zap.Logger
}

func NewService(db *gorm.DB, l *ledger.Ledger, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, ledger: l, log: log}
}

// batch tek bir işlemin biriktirdiği ledger kayıtları
type batch struct {
	id       uuid.UUID
	actor    uint
	entries  []models.Transition
	consumed int
	kinds    map[uint]measure.Kind
}

func (b *batch) add(e models.Transition) {
	b.entries = append(b.entries, e)
}

// run: kilitle -> doğrula -> (havuz) -> yaz -> ledger. Hata olursa her şey geri alınır.
func (s *Service) run(ctx context.Context, op string, actorID uint, fn func(tx *gorm.DB, b *batch) error) (uuid.UUID, error) {
	if actorID == 0 {
		return uuid.Nil, apperr.Validation(apperr.CodeValidation, "İşlemi yapan kullanıcı belirsiz")
	}

	start := time.Now()
	b := &batch{id: uuid.New(), actor: actorID, kinds: map[uint]measure.Kind{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx, b); err != nil {
			return err
		}
		return s.ledger.Record(ctx, tx, b.id, b.entries, actorID)
	})
	elapsed := time.Since(start)
	metrics.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if err != nil {
		ae := apperr.From(err)
		metrics.Operations.WithLabelValues(op, ae.Code).Inc()
		fields := []zap.Field{
			zap.String("operation", op),
			zap.Uint("actor", actorID),
			zap.String("code", ae.Code),
			zap.Duration("took", elapsed),
		}
		if ae.Kind == apperr.KindInternal {
			s.log.Error("işlem başarısız", append(fields, zap.Error(err))...)
		} else {
			s.log.Info("işlem reddedildi", append(fields, zap.Any("details", ae.Details))...)
		}
		return uuid.Nil, ae
	}

	ledger.Observe(b.entries)
	metrics.PoolConsumed.Add(float64(b.consumed))
	metrics.Operations.WithLabelValues(op, "ok").Inc()
	s.log.Info("işlem tamamlandı",
		zap.String("operation", op),
		zap.String("batch_id", b.id.String()),
		zap.Uint("actor", actorID),
		zap.Int("entries", len(b.entries)),
		zap.Duration("took", elapsed))
	return b.id, nil
}

var itemColumns = []string{
	"barcode", "status_id", "warehouse_id", "location_id",
	"quantity", "width", "height", "area", "weight", "length",
	"approved_by", "approved_at", "updated_at",
}

// save: kalemin mevcut durum kolonlarını (nil/sıfır dahil) yazar
func save(tx *gorm.DB, item any) error {
	if err := tx.Model(item).Select(itemColumns).Updates(item).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func locking(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockComponents bileşenleri artan id sırasıyla kilitler.
func lockComponents(tx *gorm.DB, ids []uint) (map[uint]*models.Component, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var rows []models.Component
	if err := locking(tx).Where("id IN ?", sorted).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	out := make(map[uint]*models.Component, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	for _, id := range sorted {
		if _, ok := out[id]; !ok {
			return nil, apperr.NotFound(apperr.CodeComponentNotFound, "Bileşen bulunamadı").With("component_id", id)
		}
	}
	return out, nil
}

func lockProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	err := locking(tx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.CodeProductNotFound, "Ürün bulunamadı").With("product_id", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &p, nil
}

// kindOf bileşenin ölçü türünü çözer (batch içinde önbelleklenir).
func (b *batch) kindOf(tx *gorm.DB, c *models.Component) (measure.Kind, error) {
	if k, ok := b.kinds[c.MasterID]; ok {
		return k, nil
	}
	k, err := measure.ResolveKind(tx, c.MasterID)
	if err != nil {
		return "", err
	}
	b.kinds[c.MasterID] = k
	return k, nil
}

// place depo/lokasyon çiftini doğrular. Lokasyon verilmişse depoya ait olmalı.
func place(tx *gorm.DB, warehouseID, locationID *uint) (*models.Warehouse, error) {
	if warehouseID == nil {
		if locationID != nil {
			return nil, apperr.Validation(apperr.CodeValidation, "Lokasyon için depo zorunlu")
		}
		return nil, nil
	}
	var w models.Warehouse
	err := tx.Where("id = ?", *warehouseID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.CodeWarehouseNotFound, "Depo bulunamadı").With("warehouse_id", *warehouseID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if locationID != nil {
		var count int64
		if err := tx.Model(&models.Location{}).
			Where("id = ? AND warehouse_id = ?", *locationID, w.ID).
			Count(&count).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if count == 0 {
			return nil, apperr.NotFound(apperr.CodeLocationNotFound, "Lokasyon bu depoda bulunamadı").
				With("warehouse_id", w.ID).
				With("location_id", *locationID)
		}
	}
	return &w, nil
}

func statusPtr(s lifecycle.Status) *lifecycle.Status { return &s }

func uintPtr(v uint) *uint { return &v }

func productContext(id uint) (*string, *uint) {
	t := string(lifecycle.ItemProduct)
	return &t, &id
}

func samePlace(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// positiveQty: nil -> (0, false); değer verilmişse > 0 olmalı
// tooPrecise: miktar kolon ölçeğinden (4 ondalık) uzun mu
func tooPrecise(q *decimal.Decimal) bool {
	return q != nil && !measure.Exact(*q)
}

func positiveQty(q *decimal.Decimal) (decimal.Decimal, bool) {
	if q == nil || !q.IsPositive() {
		return decimal.Zero, false
	}
	return *q, true
}
