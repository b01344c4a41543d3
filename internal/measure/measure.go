// Package measure resolves which single quantity dimension governs a component
// and keeps the measure columns consistent with it.
package measure

import (
	"errors"
	"strings"

	"depo-backend/internal/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Kind string

const (
	KindUnit   Kind = "unit"
	KindArea   Kind = "area"
	KindWeight Kind = "weight"
	KindLength Kind = "length"
)

// Ölçü birimleri (link ve ledger satırlarında kullanılır)
var units = map[Kind]string{
	KindUnit:   "adet",
	KindArea:   "m2",
	KindWeight: "kg",
	KindLength: "m",
}

const scale = 4

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := units[k]; !ok {
		return "", apperr.Validation(apperr.CodeInvalidStockUnit, "Katalog kaydında geçersiz stok birimi").
			With("stock_unit", s)
	}
	return k, nil
}

func (k Kind) Unit() string { return units[k] }

// Fields: kalem tablolarındaki ölçü kolonları. Bir türde yalnızca kendi kolonu dolu olur;
// width/height alan türünde yardımcı boyutlardır.
type Fields struct {
	Quantity decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"quantity"`
	Width    decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"width"`
	Height   decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"height"`
	Area     decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"area"`
	Weight   decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"weight"`
	Length   decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"length"`
}

// Input: kullanıcıdan gelen ham ölçüler
type Input struct {
	Width  *decimal.Decimal `json:"width"`
	Height *decimal.Decimal `json:"height"`
	Weight *decimal.Decimal `json:"weight"`
	Length *decimal.Decimal `json:"length"`
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d.Round(scale), Valid: true}
}

func positive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive() && Exact(*d)
}

// Exact: miktar kolon ölçeğine (4 ondalık) kayıpsız sığıyor mu
func Exact(d decimal.Decimal) bool {
	return d.Equal(d.Round(scale))
}

// Apply doğrular ve türe ait olmayan kolonları boşaltır.
func Apply(kind Kind, in Input) (Fields, error) {
	var f Fields
	switch kind {
	case KindUnit:
		f.Quantity = valid(decimal.NewFromInt(1))
	case KindArea:
		if !positive(in.Width) || !positive(in.Height) {
			return Fields{}, apperr.Validation(apperr.CodeDimensionsRequired, "Alan ölçülü kalem için en ve boy zorunlu ve 0'dan büyük olmalı")
		}
		f.Width = valid(*in.Width)
		f.Height = valid(*in.Height)
		f.Area = valid(in.Width.Mul(*in.Height))
		if !f.Area.Decimal.IsPositive() {
			return Fields{}, apperr.Validation(apperr.CodeDimensionsRequired, "En x boy 0.0001'den küçük olamaz")
		}
	case KindWeight:
		if !positive(in.Weight) {
			return Fields{}, apperr.Validation(apperr.CodeWeightRequired, "Ağırlık zorunlu ve 0'dan büyük olmalı")
		}
		f.Weight = valid(*in.Weight)
	case KindLength:
		if !positive(in.Length) {
			return Fields{}, apperr.Validation(apperr.CodeLengthRequired, "Uzunluk zorunlu ve 0'dan büyük olmalı")
		}
		f.Length = valid(*in.Length)
	default:
		return Fields{}, apperr.Validation(apperr.CodeInvalidStockUnit, "Geçersiz stok birimi").With("stock_unit", string(kind))
	}
	return f, nil
}

// WithAmount: türetilmiş bir miktardan (iade/hurda) tek ölçülü alan seti üretir
func WithAmount(kind Kind, amount decimal.Decimal) Fields {
	var f Fields
	Set(kind, &f, amount)
	return f
}

// Current: bir kalemin mevcut ölçüsü için tek kanonik erişim noktası
func Current(kind Kind, f Fields) decimal.Decimal {
	var v decimal.NullDecimal
	switch kind {
	case KindUnit:
		v = f.Quantity
	case KindArea:
		v = f.Area
	case KindWeight:
		v = f.Weight
	case KindLength:
		v = f.Length
	}
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// Set türün kolonunu yazar; diğer türlerin kolonlarını boşaltır (alan türünde en/boy korunur).
func Set(kind Kind, f *Fields, amount decimal.Decimal) {
	v := valid(amount)
	switch kind {
	case KindUnit:
		*f = Fields{Quantity: v}
	case KindArea:
		*f = Fields{Width: f.Width, Height: f.Height, Area: v}
	case KindWeight:
		*f = Fields{Weight: v}
	case KindLength:
		*f = Fields{Length: v}
	}
}

// Consistent: yalnızca türün kolonu dolu mu
func Consistent(kind Kind, f Fields) bool {
	set := map[Kind]bool{
		KindUnit:   f.Quantity.Valid,
		KindArea:   f.Area.Valid,
		KindWeight: f.Weight.Valid,
		KindLength: f.Length.Valid,
	}
	if kind != KindArea && (f.Width.Valid || f.Height.Valid) {
		return false
	}
	for k, ok := range set {
		if ok != (k == kind) {
			return false
		}
	}
	return true
}

// ResolveKind katalog kaydının stok birimini okur.
func ResolveKind(tx *gorm.DB, masterID uint) (Kind, error) {
	if masterID == 0 {
		return "", apperr.Validation(apperr.CodeMasterRequired, "master_id zorunlu")
	}
	var row struct {
		StockUnit string
	}
	res := tx.Table("component_masters").Select("stock_unit").Where("id = ?", masterID).Limit(1).Scan(&row)
	if res.Error != nil {
		return "", apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", apperr.NotFound(apperr.CodeMasterNotFound, "Katalog kaydı bulunamadı").With("master_id", masterID)
	}
	return ParseKind(row.StockUnit)
}

var (
	ErrNegative  = errors.New("measure: negative amount")
	ErrPrecision = errors.New("measure: amount exceeds column scale")
)

// Decrement mevcut ölçüden düşer; sonuç sıfırın altına inemez.
func Decrement(kind Kind, f *Fields, amount decimal.Decimal) (decimal.Decimal, error) {
	if !Exact(amount) {
		return decimal.Zero, ErrPrecision
	}
	left := Current(kind, *f).Sub(amount)
	if left.IsNegative() {
		return decimal.Zero, ErrNegative
	}
	Set(kind, f, left)
	return left, nil
}
