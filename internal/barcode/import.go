package barcode

import (
	"fmt"
	"io"
	"strings"

	"depo-backend/internal/apperr"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvalidRow struct {
	Row    int    `json:"row"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Inserted int          `json:"inserted"`
	Skipped  int          `json:"skipped"`
	Invalid  []InvalidRow `json:"invalid"`
}

// ImportXLSX ilk sayfadaki (kod, tür) satırlarını havuza available olarak ekler.
// Zaten var olan kodlar atlanır, hatalı satırlar raporlanır.
func ImportXLSX(db *gorm.DB, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeValidation, "Excel dosyası okunamadı")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation(apperr.CodeValidation, "Excel dosyasında sayfa yok")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Validation(apperr.CodeValidation, "Excel satırları okunamadı")
	}

	res := &ImportResult{Invalid: []InvalidRow{}}
	entries := make([]models.BarcodePoolEntry, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		code := Normalize(row[0])
		if i == 0 && isHeader(code) {
			continue
		}
		if code == "" {
			continue
		}
		kind := lifecycle.ItemType("")
		if len(row) > 1 {
			kind = lifecycle.ItemType(strings.ToLower(strings.TrimSpace(row[1])))
		}
		if kind == "" {
			kind = kindFromPrefix(code)
		}
		if err := Validate(code, kind); err != nil {
			res.Invalid = append(res.Invalid, InvalidRow{Row: i + 1, Code: code, Reason: apperr.From(err).Code})
			continue
		}
		entries = append(entries, models.BarcodePoolEntry{
			Code:   code,
			Kind:   string(kind),
			Status: models.PoolAvailable,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			r := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
				Create(&entries[i])
			if r.Error != nil {
				return fmt.Errorf("havuz kaydı eklenemedi (%s): %w", entries[i].Code, r.Error)
			}
			if r.RowsAffected == 0 {
				res.Skipped++
			} else {
				res.Inserted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return res, nil
}

func isHeader(s string) bool {
	switch strings.ToLower(s) {
	case "code", "kod", "barkod", "barcode":
		return true
	}
	return false
}

func kindFromPrefix(code string) lifecycle.ItemType {
	switch {
	case strings.HasPrefix(code, "C"):
		return lifecycle.ItemComponent
	case strings.HasPrefix(code, "P"):
		return lifecycle.ItemProduct
	}
	return ""
}
