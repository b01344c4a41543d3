package ledger

import (
	"context"
	"io"

	"depo-backend/internal/apperr"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []any{
	"Tarih", "Batch", "İşlem", "Miktar", "Birim",
	"Önceki Durum", "Yeni Durum", "Çıkış Depo", "Çıkış Lokasyon", "Giriş Depo", "Giriş Lokasyon",
	"Bağlam", "Bağlam ID", "Kullanıcı",
}

// Export ListByItem ile aynı satırları xlsx olarak yazar (tek sayfa, en fazla maxRows satır).
func (l *Ledger) Export(ctx context.Context, f Filter, maxRows int, w io.Writer) error {
	f.Offset = 0
	f.Limit = maxRows
	page, err := l.ListByItem(ctx, f, maxRows)
	if err != nil {
		return err
	}

	x := excelize.NewFile()
	defer x.Close()
	sheet := x.GetSheetName(0)

	if err := x.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return apperr.Internal(err)
	}
	for i, r := range page.Rows {
		row := []any{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.BatchID.String(),
			string(r.Action),
			r.QtyDelta.InexactFloat64(),
			r.Unit,
			deref(r.FromStatusName),
			deref(r.ToStatusName),
			deref(r.FromWarehouseName),
			deref(r.FromLocationName),
			deref(r.ToWarehouseName),
			deref(r.ToLocationName),
			deref(r.ContextType),
			derefUint(r.ContextID),
			deref(r.ActorName),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperr.Internal(err)
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return apperr.Internal(err)
		}
	}

	if err := x.Write(w); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefUint(v *uint) any {
	if v == nil {
		return ""
	}
	return *v
}
