// Command seed-demo prepares a pair of throwaway MySQL databases with the
// shipper and backoffice schemas plus a handful of sample rows, so the bridge
// can be exercised end to end without access to the real platforms.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/picklist_bridge/config"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	host := flag.String("host", "127.0.0.1", "MySQL host")
	port := flag.Int("port", 3306, "MySQL port")
	user := flag.String("user", "root", "MySQL user")
	password := flag.String("password", "", "MySQL password")
	shipperDB := flag.String("shipper-db", "", "Required: shipper database name")
	catalogDB := flag.String("catalog-db", "", "Required: backoffice database name")
	confirm := flag.String("confirm", "", "Type SEED to proceed (writes sample data)")
	flag.Parse()

	if strings.TrimSpace(*shipperDB) == "" || strings.TrimSpace(*catalogDB) == "" {
		fmt.Fprintln(os.Stderr, "--shipper-db and --catalog-db are required")
		os.Exit(1)
	}
	if strings.TrimSpace(*confirm) != "SEED" {
		fmt.Fprintln(os.Stderr, "set --confirm=SEED to proceed")
		os.Exit(1)
	}

	shipper, err := config.OpenBackend(config.BackendParams{
		Host: *host, Port: *port, User: *user, Password: *password, Database: *shipperDB,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "shipper connect failed: %v\n", err)
		os.Exit(1)
	}
	defer config.CloseBackend(shipper)

	catalog, err := config.OpenBackend(config.BackendParams{
		Host: *host, Port: *port, User: *user, Password: *password, Database: *catalogDB,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog connect failed: %v\n", err)
		os.Exit(1)
	}
	defer config.CloseBackend(catalog)

	if err := models.MigrateShipperSchema(shipper); err != nil {
		fmt.Fprintf(os.Stderr, "shipper migrate failed: %v\n", err)
		os.Exit(1)
	}
	if err := models.MigrateCatalogSchema(catalog); err != nil {
		fmt.Fprintf(os.Stderr, "catalog migrate failed: %v\n", err)
		os.Exit(1)
	}

	if err := seedShipper(shipper); err != nil {
		fmt.Fprintf(os.Stderr, "shipper seed failed: %v\n", err)
		os.Exit(1)
	}
	if err := seedCatalog(catalog); err != nil {
		fmt.Fprintf(os.Stderr, "catalog seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("seed complete")
}

func seedShipper(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		lists := []models.PickList{
			{ID: 1, OrderNumber: "ORD-1001", CustomerName: "Downtown Grocer", Status: "ready"},
			{ID: 2, OrderNumber: "ORD-1002", CustomerName: "Harbor Cafe", Status: "ready"},
		}
		for i := range lists {
			if err := tx.Save(&lists[i]).Error; err != nil {
				return err
			}
		}
		barcode := func(s string) *string { return &s }
		products := []models.PickListProduct{
			{ID: 1, PickListId: 1, Barcode: barcode("4801234567890"), Name: "Jasmine Rice 5kg", Amount: decimal.NewFromInt(3)},
			{ID: 2, PickListId: 1, Barcode: barcode("4809876543210"), Name: "Soy Sauce 500ml", Amount: decimal.NewFromInt(12)},
			{ID: 3, PickListId: 2, Barcode: barcode("4805555000111"), Name: "Ground Coffee 250g", Amount: decimal.NewFromInt(6)},
			{ID: 4, PickListId: 2, Barcode: nil, Name: "Unlabeled Sample", Amount: decimal.NewFromInt(1)},
		}
		for i := range products {
			if err := tx.Save(&products[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		units := []models.Unit{
			{ID: 1, Name: "pcs"},
			{ID: 2, Name: "bag"},
		}
		for i := range units {
			if err := tx.Save(&units[i]).Error; err != nil {
				return err
			}
		}
		customer := models.Customer{
			ID:           1,
			BusinessName: "Walk-in Quotation Account",
			AccountNo:    "ACC-0001",
		}
		if err := tx.Save(&customer).Error; err != nil {
			return err
		}
		items := []models.Item{
			{ID: 1, Sku: "RICE-5KG", Barcode: "4801234567890", Description: "Jasmine Rice 5kg", UnitId: 2, UnitPrice: decimal.NewFromFloat(18.50), UnitCost: decimal.NewFromFloat(14.00)},
			{ID: 2, Sku: "SOY-500", Barcode: "4809876543210", Description: "Soy Sauce 500ml", UnitId: 1, UnitPrice: decimal.NewFromFloat(2.25), UnitCost: decimal.NewFromFloat(1.40)},
		}
		for i := range items {
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
