package models_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mmdatafocus/picklist_bridge/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openMemoryDB opens a uniquely named shared in-memory SQLite database. The
// cache=shared DSN keeps the database alive across the pool's connections for
// the duration of the test.
func openMemoryDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"), name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle %s: %v", name, err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func openLedgerStore(t *testing.T) *models.Store {
	t.Helper()
	db := openMemoryDB(t, "ledger")
	err := db.AutoMigrate(
		&models.BackendConfig{},
		&models.QuotationDefaults{},
		&models.ConversionRecord{},
		&models.ArchivedPickList{},
	)
	if err != nil {
		t.Fatalf("migrate ledger: %v", err)
	}
	return models.NewStore(db)
}

func openCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openMemoryDB(t, "catalog")
	if err := models.MigrateCatalogSchema(db); err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	return db
}
