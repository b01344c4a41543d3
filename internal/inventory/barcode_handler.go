package inventory

import (
	"depo-backend/internal/barcode"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// POST /api/barcode-pool/import (multipart, alan adı: file)
func ImportPoolHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası (file) zorunlu")
		}
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya açılamadı")
		}
		defer f.Close()

		res, err := barcode.ImportXLSX(db.WithContext(c.UserContext()), f)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/barcode-pool/:code
func LookupPoolHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry, err := barcode.Lookup(db.WithContext(c.UserContext()), c.Params("code"))
		if err != nil {
			return err
		}
		return c.JSON(entry)
	}
}

// POST /api/barcode-pool/:code/void
func VoidPoolHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry, err := barcode.Void(db.WithContext(c.UserContext()), c.Params("code"))
		if err != nil {
			return err
		}
		return c.JSON(entry)
	}
}
