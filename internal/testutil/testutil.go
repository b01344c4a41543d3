// Package testutil provides an isolated in-memory database and fixtures for store tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"depo-backend/internal/database"
	"depo-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with every table migrated.
// SQLite ignores FOR UPDATE; the single connection serializes transactions instead.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, dept string) models.User {
	t.Helper()
	u := models.User{
		Name:         "Test Kullanıcı",
		Email:        fmt.Sprintf("user%d@depo.local", time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         models.RoleOperator,
		Department:   dept,
	}
	mustCreate(t, db, &u)
	return u
}

// CreateWarehouse creates a warehouse of the given department with one location.
func CreateWarehouse(t *testing.T, db *gorm.DB, name, dept string) (models.Warehouse, models.Location) {
	t.Helper()
	w := models.Warehouse{Name: name, Department: dept}
	mustCreate(t, db, &w)
	l := models.Location{WarehouseID: w.ID, Name: name + "-A1"}
	mustCreate(t, db, &l)
	return w, l
}

func CreateMaster(t *testing.T, db *gorm.DB, name, stockUnit string) models.ComponentMaster {
	t.Helper()
	m := models.ComponentMaster{Name: name, Category: "test", StockUnit: stockUnit}
	mustCreate(t, db, &m)
	return m
}

// SeedPool inserts available pool entries.
func SeedPool(t *testing.T, db *gorm.DB, kind string, codes ...string) {
	t.Helper()
	for _, c := range codes {
		mustCreate(t, db, &models.BarcodePoolEntry{Code: c, Kind: kind, Status: models.PoolAvailable})
	}
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}
