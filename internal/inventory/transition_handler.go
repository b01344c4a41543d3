package inventory

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"depo-backend/internal/ledger"
	"depo-backend/internal/lifecycle"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseDate: "2025-12-09" ya da RFC3339. Sadece tarih verilmişse bitiş günün sonuna çekilir.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseFilter(c *fiber.Ctx) (ledger.Filter, error) {
	f := ledger.Filter{
		ItemType: lifecycle.ItemType(c.Query("item_type")),
		Limit:    c.QueryInt("limit", ledger.DefaultLimit),
		Offset:   c.QueryInt("offset", 0),
	}
	id := c.QueryInt("item_id", 0)
	if id <= 0 {
		return f, fiber.NewError(fiber.StatusBadRequest, "item_id zorunlu")
	}
	f.ItemID = uint(id)

	if raw := c.Query("actions"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(strings.ToUpper(a)); a != "" {
				f.Actions = append(f.Actions, lifecycle.Action(a))
			}
		}
	}

	var err error
	if f.FromDate, err = parseDate(c.Query("from_date"), false); err != nil {
		return f, err
	}
	if f.ToDate, err = parseDate(c.Query("to_date"), true); err != nil {
		return f, err
	}
	return f, nil
}

// GET /api/transitions?item_type=component&item_id=1&limit=50&offset=0&actions=CONSUME,RETURN
func ListTransitionsHandler(l *ledger.Ledger, maxLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		page, err := l.ListByItem(c.UserContext(), f, maxLimit)
		if err != nil {
			return err
		}
		return c.JSON(page)
	}
}

// GET /api/transitions/export
func ExportTransitionsHandler(l *ledger.Ledger, maxLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := l.Export(c.UserContext(), f, maxLimit*10, &buf); err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="hareketler_%s_%d.xlsx"`, f.ItemType, f.ItemID))
		return c.Send(buf.Bytes())
	}
}
