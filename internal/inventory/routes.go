package inventory

import (
	"depo-backend/internal/auth"
	"depo-backend/internal/ledger"
	"depo-backend/internal/models"
	"depo-backend/internal/movement"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Movement *movement.Service
	Ledger   *ledger.Ledger
	MaxLimit int
}

// Register korumalı (JWT sonrası) grup üzerine depo route'larını bağlar.
func Register(protected fiber.Router, d Deps) {
	// Hareketler
	protected.Post("/approve/:scope", ApproveHandler(d.Movement))
	protected.Post("/components", CreateComponentHandler(d.Movement))
	protected.Post("/components/exit", ExitHandler(d.Movement))
	protected.Post("/products/assemble", AssembleHandler(d.Movement))
	protected.Post("/products/:id/components", AddComponentsHandler(d.Movement))
	protected.Post("/products/:id/components/remove", RemoveComponentsHandler(d.Movement))
	protected.Delete("/items/:type/:id", DeleteItemHandler(d.Movement))

	// Hareket geçmişi
	protected.Get("/transitions", ListTransitionsHandler(d.Ledger, d.MaxLimit))
	protected.Get("/transitions/export", ExportTransitionsHandler(d.Ledger, d.MaxLimit))

	// Barkod havuzu
	pool := protected.Group("/barcode-pool")
	pool.Get("/:code", LookupPoolHandler(d.DB))
	pool.Post("/import", auth.RequireRole(models.RoleAdmin), ImportPoolHandler(d.DB))
	pool.Post("/:code/void", auth.RequireRole(models.RoleAdmin), VoidPoolHandler(d.DB))
}
