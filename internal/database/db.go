package database

import (
	"fmt"

	"depo-backend/internal/config"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config, log *zap.Logger) {
	level := logger.Silent
	if cfg.DBLogSQL {
		level = logger.Info
	}

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		log.Fatal("Veritabanına bağlanılamadı", zap.Error(err))
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Migration hatası", zap.Error(err))
	}

	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate tabloları oluşturur ve okuma tarafı status tablosunu lifecycle enum'u ile eşitler.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	statuses := make([]models.Status, 0, len(lifecycle.AllStatuses()))
	for _, s := range lifecycle.AllStatuses() {
		statuses = append(statuses, models.Status{ID: uint(s), Name: s.String()})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&statuses).Error; err != nil {
		return fmt.Errorf("status seed hatası: %w", err)
	}

	// Hurda sayaç satırı önceden var olmalı; ilk kilitleme yarışını önler
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BarcodeCounter{Name: "lost"}).Error; err != nil {
		return fmt.Errorf("sayaç seed hatası: %w", err)
	}
	return nil
}
