package converter_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mmdatafocus/picklist_bridge/converter"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	store     *models.Store
	conv      *converter.Converter
	shipper   *gorm.DB
	catalog   *gorm.DB
	inventory *gorm.DB
}

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

// newTestEnv wires a converter onto three in-memory databases. withInventory
// toggles whether a healing source is attached at all.
func newTestEnv(t *testing.T, withInventory bool) *testEnv {
	t.Helper()

	ledger := openMemoryDB(t, "ledger")
	if err := ledger.AutoMigrate(
		&models.BackendConfig{},
		&models.QuotationDefaults{},
		&models.ConversionRecord{},
		&models.ArchivedPickList{},
	); err != nil {
		t.Fatalf("migrate ledger: %v", err)
	}

	shipper := openMemoryDB(t, "shipper")
	if err := models.MigrateShipperSchema(shipper); err != nil {
		t.Fatalf("migrate shipper: %v", err)
	}

	catalog := openMemoryDB(t, "catalog")
	if err := models.MigrateCatalogSchema(catalog); err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}

	env := &testEnv{
		store:   models.NewStore(ledger),
		shipper: shipper,
		catalog: catalog,
	}
	backends := &converter.StaticBackends{
		ShipperDB:    shipper,
		BackOfficeDB: catalog,
	}
	if withInventory {
		env.inventory = openMemoryDB(t, "inventory")
		if err := models.MigrateCatalogSchema(env.inventory); err != nil {
			t.Fatalf("migrate inventory: %v", err)
		}
		backends.InventoryDB = env.inventory
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	env.conv = converter.NewConverter(env.store, backends, log)
	return env
}

func (e *testEnv) seedDefaults(t *testing.T) {
	t.Helper()
	err := e.store.SaveQuotationDefaults(context.Background(), &models.QuotationDefaults{
		CustomerId:           1,
		DefaultStatus:        2,
		QuotationTitlePrefix: "Picklist",
	})
	if err != nil {
		t.Fatalf("seed defaults: %v", err)
	}
}

func (e *testEnv) seedCustomer(t *testing.T) {
	t.Helper()
	customer := models.Customer{ID: 1, BusinessName: "Walk-in Quotation Account", AccountNo: "ACC-0001"}
	if err := e.catalog.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func (e *testEnv) seedPickList(t *testing.T, id int, orderNumber string) {
	t.Helper()
	pickList := models.PickList{ID: id, OrderNumber: orderNumber, CustomerName: "Downtown Grocer", Status: "ready"}
	if err := e.shipper.Create(&pickList).Error; err != nil {
		t.Fatalf("seed picklist %d: %v", id, err)
	}
}

func (e *testEnv) seedLine(t *testing.T, pickListId int, barcode string, name string, qty string) {
	t.Helper()
	line := models.PickListProduct{
		PickListId: pickListId,
		Name:       name,
		Amount:     decimal.RequireFromString(qty),
	}
	if barcode != "" {
		line.Barcode = &barcode
	}
	if err := e.shipper.Create(&line).Error; err != nil {
		t.Fatalf("seed line %s: %v", name, err)
	}
}

func seedItem(t *testing.T, db *gorm.DB, barcode string, sku string, price string, cost string) {
	t.Helper()
	if err := db.Create(&models.Unit{Name: "pcs"}).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	var unit models.Unit
	if err := db.Where("name = ?", "pcs").Order("id").Take(&unit).Error; err != nil {
		t.Fatalf("fetch unit: %v", err)
	}
	item := models.Item{
		Sku:         sku,
		Barcode:     barcode,
		Description: "Item " + sku,
		UnitId:      unit.ID,
		UnitPrice:   decimal.RequireFromString(price),
		UnitCost:    decimal.RequireFromString(cost),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item %s: %v", sku, err)
	}
}
