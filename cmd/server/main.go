package main

import (
	"log"
	"strings"

	"depo-backend/internal/auth"
	"depo-backend/internal/config"
	"depo-backend/internal/database"
	"depo-backend/internal/inventory"
	"depo-backend/internal/ledger"
	"depo-backend/internal/metrics"
	"depo-backend/internal/movement"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Logger başlatılamadı: %v", err)
	}
	defer logger.Sync()

	database.Init(cfg, logger)

	l := ledger.New(database.DB, logger.Named("ledger"))
	svc := movement.NewService(database.DB, l, logger.Named("movement"))

	app := fiber.New(fiber.Config{
		ErrorHandler: inventory.ErrorHandler(logger),
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	inventory.Register(protected, inventory.Deps{
		DB:       database.DB,
		Movement: svc,
		Ledger:   l,
		MaxLimit: cfg.ListMaxLimit,
	})

	logger.Info("Server çalışıyor", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("Server durdu", zap.Error(err))
	}
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.LogLevel {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}
