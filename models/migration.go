package models

import (
	"log"

	"github.com/mmdatafocus/picklist_bridge/config"
	"gorm.io/gorm"
)

// MigrateTable migrates the ledger schema (SQLite). The three operational
// backends are owned by external systems and are never migrated in
// production; AutoMigrate also covers the column additions that shipped after
// the first release (the inventory_* config fields).
func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&BackendConfig{},
		&QuotationDefaults{},
		&ConversionRecord{},
		&ArchivedPickList{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

// MigrateShipperSchema creates the shipper-side tables. Used by tests and the
// seed-demo command only; the real shipper owns its schema.
func MigrateShipperSchema(db *gorm.DB) error {
	return db.AutoMigrate(&PickList{}, &PickListProduct{})
}

// MigrateCatalogSchema creates the BackOffice-side tables (also the shape of
// the inventory source). Used by tests and the seed-demo command only.
func MigrateCatalogSchema(db *gorm.DB) error {
	return db.AutoMigrate(&Item{}, &Unit{}, &Customer{}, &Quotation{}, &QuotationDetail{})
}
