// Package barcode manages the pre-issued barcode pool: format validation,
// single-use consumption and the sequential codes used for scrapped material.
package barcode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"depo-backend/internal/apperr"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var patterns = map[lifecycle.ItemType]*regexp.Regexp{
	lifecycle.ItemComponent: regexp.MustCompile(`^C\d{8}$`),
	lifecycle.ItemProduct:   regexp.MustCompile(`^P\d{8}$`),
}

const LostPrefix = "L"

// Normalize: baştaki/sondaki boşlukları atar, harfleri büyütür
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate kodun türe ait kalıba uyduğunu kontrol eder.
func Validate(code string, kind lifecycle.ItemType) error {
	re, ok := patterns[kind]
	if !ok {
		return apperr.Validation(apperr.CodeBarcodeKindUnknown, "Bilinmeyen barkod türü").With("kind", string(kind))
	}
	if !re.MatchString(code) {
		return apperr.Validation(apperr.CodeBarcodeFormatInvalid, "Barkod formatı geçersiz").
			With("barcode", code).
			With("kind", string(kind))
	}
	return nil
}

// Consume havuz satırını kilitler ve available -> used geçişini yapar.
func Consume(tx *gorm.DB, code string, kind lifecycle.ItemType, refTable string, refID uint) error {
	var entry models.BarcodePoolEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation(apperr.CodeBarcodeNotInPool, "Barkod havuzda bulunamadı").With("barcode", code)
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if entry.Kind != string(kind) {
		return apperr.Validation(apperr.CodeBarcodeKindMismatch, "Barkod türü uyuşmuyor").
			With("barcode", code).
			With("expected", string(kind)).
			With("actual", entry.Kind)
	}

	switch entry.Status {
	case models.PoolAvailable:
	case models.PoolVoid:
		return apperr.Conflict(apperr.CodeBarcodeVoid, "Barkod iptal edilmiş").With("barcode", code)
	case models.PoolUsed:
		return apperr.Conflict(apperr.CodeBarcodeAlreadyUsed, "Barkod daha önce kullanılmış").With("barcode", code)
	default:
		return apperr.Conflict(apperr.CodeBarcodeStatusInvalid, "Barkod durumu geçersiz").
			With("barcode", code).
			With("status", string(entry.Status))
	}

	now := time.Now()
	res := tx.Model(&models.BarcodePoolEntry{}).
		Where("id = ? AND status = ?", entry.ID, models.PoolAvailable).
		Updates(map[string]any{
			"status":         models.PoolUsed,
			"used_at":        now,
			"used_ref_table": refTable,
			"used_ref_id":    refID,
		})
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected != 1 {
		return apperr.Conflict(apperr.CodeBarcodeAlreadyUsed, "Barkod daha önce kullanılmış").With("barcode", code)
	}
	return nil
}

// ConflictChecker: sahibi olan kalem tablosunda aynı barkodlu canlı kayıt olmadığını doğrular
type ConflictChecker func(tx *gorm.DB, code string) error

// TableConflict verilen tabloda (kendisi hariç) aynı barkodu taşıyan kayıt arar.
func TableConflict(table string, selfID uint) ConflictChecker {
	return func(tx *gorm.DB, code string) error {
		var count int64
		if err := tx.Table(table).Where("barcode = ? AND id <> ?", code, selfID).Count(&count).Error; err != nil {
			return apperr.Internal(err)
		}
		if count > 0 {
			return apperr.Conflict(apperr.CodeBarcodeConflict, "Bu barkod başka bir kayıtta kullanılıyor").
				With("barcode", code)
		}
		return nil
	}
}

// Change: EnsureChangeAndConsume girdisi
type Change struct {
	Current  *string
	Incoming *string
	Kind     lifecycle.ItemType
	RefTable string
	RefID    uint
	Check    ConflictChecker
}

// EnsureChangeAndConsume tüm yazma yollarının tek barkod giriş noktası:
// format, tablo içi benzersizlik ve havuz yetkisi. Değişiklik yoksa no-op.
// Dönen değer normalize edilmiş yeni barkoddur (değişmediyse boş).
func EnsureChangeAndConsume(tx *gorm.DB, ch Change) (string, error) {
	if ch.Incoming == nil {
		return "", nil
	}
	incoming := Normalize(*ch.Incoming)
	if incoming == "" {
		return "", nil
	}
	if ch.Current != nil && Normalize(*ch.Current) == incoming {
		return "", nil
	}
	if err := Validate(incoming, ch.Kind); err != nil {
		return "", err
	}
	if ch.Check != nil {
		if err := ch.Check(tx, incoming); err != nil {
			return "", err
		}
	}
	if err := Consume(tx, incoming, ch.Kind, ch.RefTable, ch.RefID); err != nil {
		return "", err
	}
	return incoming, nil
}

const lostCounter = "lost"

// NextLost hurda kalemler için sıradaki "L" kodunu üretir. Sayaç satırı kilitlenir.
func NextLost(tx *gorm.DB) (string, error) {
	var ctr models.BarcodeCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", lostCounter).
		First(&ctr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctr = models.BarcodeCounter{Name: lostCounter}
		if err := tx.Create(&ctr).Error; err != nil {
			return "", apperr.Internal(err)
		}
	} else if err != nil {
		return "", apperr.Internal(err)
	}

	ctr.Value++
	if err := tx.Model(&models.BarcodeCounter{}).
		Where("name = ?", lostCounter).
		Update("value", ctr.Value).Error; err != nil {
		return "", apperr.Internal(err)
	}
	return fmt.Sprintf("%s%08d", LostPrefix, ctr.Value), nil
}

// Lookup tek bir havuz kaydını döner.
func Lookup(db *gorm.DB, code string) (*models.BarcodePoolEntry, error) {
	var entry models.BarcodePoolEntry
	err := db.Where("code = ?", Normalize(code)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.CodeBarcodeNotInPool, "Barkod havuzda bulunamadı").With("barcode", code)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &entry, nil
}

// Void available bir kodu iptal eder; used ve void kodlar değişmez.
func Void(db *gorm.DB, code string) (*models.BarcodePoolEntry, error) {
	code = Normalize(code)
	var out models.BarcodePoolEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeBarcodeNotInPool, "Barkod havuzda bulunamadı").With("barcode", code)
			}
			return apperr.Internal(err)
		}
		switch out.Status {
		case models.PoolAvailable:
		case models.PoolUsed:
			return apperr.Conflict(apperr.CodeBarcodeAlreadyUsed, "Kullanılmış barkod iptal edilemez").With("barcode", code)
		default:
			return apperr.Conflict(apperr.CodeBarcodeStatusInvalid, "Barkod zaten iptal edilmiş").With("barcode", code)
		}
		out.Status = models.PoolVoid
		return tx.Model(&models.BarcodePoolEntry{}).Where("id = ?", out.ID).Update("status", models.PoolVoid).Error
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return &out, nil
}
