// Package ledger is the append-only transition log. Rows are written once, in bulk,
// inside the caller's transaction and are never updated or deleted.
package ledger

import (
	"context"
	"strings"
	"time"

	"depo-backend/internal/apperr"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/metrics"
	"depo-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{db: db, log: log}
}

// Validate tek bir kaydın zorunlu alanlarını kontrol eder.
func Validate(e models.Transition) error {
	if !e.ItemType.Valid() {
		return apperr.Validation(apperr.CodeValidation, "Geçersiz item_type").With("item_type", string(e.ItemType))
	}
	if e.ItemID == 0 {
		return apperr.Validation(apperr.CodeValidation, "item_id zorunlu")
	}
	if !e.Action.Valid() {
		return apperr.Validation(apperr.CodeValidation, "Geçersiz action").With("action", string(e.Action))
	}
	if strings.TrimSpace(e.Unit) == "" {
		return apperr.Validation(apperr.CodeValidation, "unit zorunlu")
	}
	if e.FromStatusID != nil && !e.FromStatusID.Valid() {
		return apperr.Validation(apperr.CodeValidation, "Geçersiz from_status_id")
	}
	if e.ToStatusID != nil && !e.ToStatusID.Valid() {
		return apperr.Validation(apperr.CodeValidation, "Geçersiz to_status_id")
	}
	return nil
}

// Record bir batch'e ait kayıtları tek seferde ekler. tx nil ise kendi transaction'ını açar.
func (l *Ledger) Record(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, entries []models.Transition, actorID uint) error {
	if len(entries) == 0 {
		return nil
	}
	if batchID == uuid.Nil {
		return apperr.Validation(apperr.CodeValidation, "batch_id zorunlu")
	}

	now := time.Now()
	rows := make([]models.Transition, len(entries))
	for i, e := range entries {
		if err := Validate(e); err != nil {
			return err
		}
		e.ID = 0
		e.BatchID = batchID
		e.ActorUserID = actorID
		e.CreatedAt = now
		rows[i] = e
	}

	write := func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	}

	if tx != nil {
		// Sayaçlar commit'ten sonra çağıran tarafından artırılır (bkz. Observe)
		if err := write(tx.WithContext(ctx)); err != nil {
			return err
		}
	} else {
		if err := l.db.WithContext(ctx).Transaction(write); err != nil {
			return err
		}
		Observe(rows)
	}
	l.log.Debug("ledger kayıtları eklendi",
		zap.String("batch_id", batchID.String()),
		zap.Int("count", len(rows)),
		zap.Uint("actor", actorID))
	return nil
}

// Observe commit edilmiş kayıtları metriklere işler.
func Observe(rows []models.Transition) {
	for _, r := range rows {
		metrics.LedgerEntries.WithLabelValues(string(r.Action)).Inc()
	}
}

// ByBatch aynı işlemin tüm kayıtlarını döner (eklenme sırasıyla).
func (l *Ledger) ByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Transition, error) {
	var rows []models.Transition
	if err := l.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

type Filter struct {
	ItemType lifecycle.ItemType
	ItemID   uint
	Limit    int
	Offset   int
	Actions  []lifecycle.Action
	FromDate *time.Time
	ToDate   *time.Time
}

// Row: okuma tarafında isimlerle zenginleştirilmiş kayıt
type Row struct {
	models.Transition
	FromStatusName    *string `json:"from_status_name"`
	ToStatusName      *string `json:"to_status_name"`
	FromWarehouseName *string `json:"from_warehouse_name"`
	FromLocationName  *string `json:"from_location_name"`
	ToWarehouseName   *string `json:"to_warehouse_name"`
	ToLocationName    *string `json:"to_location_name"`
	ActorName         *string `json:"actor_name"`
}

type Page struct {
	Rows  []Row `json:"rows"`
	Total int64 `json:"total"`
}

const DefaultLimit = 50

func (l *Ledger) query(ctx context.Context, f Filter) *gorm.DB {
	q := l.db.WithContext(ctx).
		Table("inventory_transitions AS t").
		Joins("LEFT JOIN statuses fs ON fs.id = t.from_status_id").
		Joins("LEFT JOIN statuses ts ON ts.id = t.to_status_id").
		Joins("LEFT JOIN warehouses fw ON fw.id = t.from_warehouse_id").
		Joins("LEFT JOIN locations fl ON fl.id = t.from_location_id").
		Joins("LEFT JOIN warehouses tw ON tw.id = t.to_warehouse_id").
		Joins("LEFT JOIN locations tl ON tl.id = t.to_location_id").
		Joins("LEFT JOIN users u ON u.id = t.actor_user_id").
		Where("t.item_type = ? AND t.item_id = ?", f.ItemType, f.ItemID)

	if len(f.Actions) > 0 {
		q = q.Where("t.action IN ?", f.Actions)
	}
	if f.FromDate != nil {
		q = q.Where("t.created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("t.created_at <= ?", *f.ToDate)
	}
	return q
}

func (l *Ledger) validateFilter(f *Filter, maxLimit int) error {
	if !f.ItemType.Valid() {
		return apperr.Validation(apperr.CodeValidation, "Geçersiz item_type").With("item_type", string(f.ItemType))
	}
	if f.ItemID == 0 {
		return apperr.Validation(apperr.CodeValidation, "item_id zorunlu")
	}
	for _, a := range f.Actions {
		if !a.Valid() {
			return apperr.Validation(apperr.CodeValidation, "Geçersiz action filtresi").With("action", string(a))
		}
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return apperr.Validation(apperr.CodeValidation, "Bitiş tarihi başlangıçtan önce olamaz")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if maxLimit > 0 && f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

const rowSelect = `t.*,
	fs.name AS from_status_name, ts.name AS to_status_name,
	fw.name AS from_warehouse_name, fl.name AS from_location_name,
	tw.name AS to_warehouse_name, tl.name AS to_location_name,
	u.name AS actor_name`

// ListByItem bir kalemin hareketlerini yeniden eskiye, sayfalı döner.
func (l *Ledger) ListByItem(ctx context.Context, f Filter, maxLimit int) (*Page, error) {
	if err := l.validateFilter(&f, maxLimit); err != nil {
		return nil, err
	}

	var total int64
	if err := l.query(ctx, f).Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	rows := make([]Row, 0, f.Limit)
	if err := l.query(ctx, f).
		Select(rowSelect).
		Order("t.created_at DESC, t.id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &Page{Rows: rows, Total: total}, nil
}
