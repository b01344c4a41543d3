package inventory

import (
	"errors"

	"depo-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler: *apperr.Error kod/detaylarıyla, *fiber.Error mesajıyla döner; gerisi 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			if ae.Kind == apperr.KindInternal {
				log.Error("İşlem hatası",
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			return c.Status(ae.Status).JSON(ae)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}

		log.Error("Beklenmeyen hata", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   apperr.CodeInternal,
			"message": "Beklenmeyen sunucu hatası",
		})
	}
}
