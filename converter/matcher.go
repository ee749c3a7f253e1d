package converter

import (
	"context"

	"github.com/mmdatafocus/picklist_bridge/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogItem is the slice of the BackOffice items row the quotation builder
// needs, with the unit description joined in.
type CatalogItem struct {
	ID          int             `json:"id"`
	Sku         string          `json:"sku"`
	Barcode     string          `json:"barcode"`
	Description string          `json:"description"`
	UnitId      int             `json:"unit_id"`
	ItemSize    string          `json:"item_size"`
	ItemWeight  decimal.Decimal `json:"item_weight"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UnitName    string          `json:"unit_name"`
}

// MatchBarcodes resolves a batch of barcodes against the catalog in a single
// round trip. The result only contains barcodes that matched; it is
// side-effect free, so escalating gaps to the healing source stays the
// orchestrator's call.
func MatchBarcodes(ctx context.Context, db *gorm.DB, barcodes []string) (map[string]CatalogItem, error) {
	matched := make(map[string]CatalogItem)
	barcodes = utils.UniqueSlice(barcodes)
	if len(barcodes) == 0 {
		return matched, nil
	}

	var rows []CatalogItem
	if err := db.WithContext(ctx).Table("items").
		Select("items.id, items.sku, items.barcode, items.description, items.unit_id, items.item_size, items.item_weight, items.unit_price, items.unit_cost, units.name AS unit_name").
		Joins("LEFT JOIN units ON units.id = items.unit_id").
		Where("items.barcode IN ?", barcodes).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		matched[row.Barcode] = row
	}
	return matched, nil
}
