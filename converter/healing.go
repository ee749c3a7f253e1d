package converter

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/mmdatafocus/picklist_bridge/utils"
	"gorm.io/gorm"
)

// CopyFromInventory backfills catalog gaps: one batched lookup in the
// inventory source, then one independent insert per found record into the
// BackOffice items table. Purely additive — existing catalog rows are never
// touched — so re-running on the same barcode set is safe: anything already in
// the catalog is skipped, never duplicated.
//
// The two item schemas drift, so records travel as field/value maps and only
// the columns present in both the fetched record and the catalog's writable
// column set (identity columns excluded) are inserted.
func (c *Converter) CopyFromInventory(ctx context.Context, barcodes []string) (*SyncReport, error) {
	report := &SyncReport{}
	barcodes = utils.UniqueSlice(barcodes)
	if len(barcodes) == 0 {
		return report, nil
	}

	inventoryDB, err := c.backends.Inventory(ctx)
	if err != nil {
		if errors.Is(err, utils.ErrInventoryNotConfigured) {
			report.NotConfigured = true
			for _, barcode := range barcodes {
				report.add(SyncResult{Barcode: barcode, Status: SyncStatusNotConfigured})
			}
			return report, nil
		}
		return nil, err
	}

	backofficeDB, err := c.backends.BackOffice(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := MatchBarcodes(ctx, backofficeDB, barcodes)
	if err != nil {
		return nil, err
	}

	var toFetch []string
	for _, barcode := range barcodes {
		if _, ok := existing[barcode]; !ok {
			toFetch = append(toFetch, barcode)
		}
	}

	records := make(map[string]map[string]interface{})
	if len(toFetch) > 0 {
		var rows []map[string]interface{}
		if err := inventoryDB.WithContext(ctx).Table("items").
			Where("barcode IN ?", toFetch).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			if barcode := stringValue(row["barcode"]); barcode != "" {
				records[barcode] = row
			}
		}
	}

	writable, err := writableItemColumns(backofficeDB)
	if err != nil {
		return nil, err
	}

	for _, barcode := range barcodes {
		if _, ok := existing[barcode]; ok {
			report.add(SyncResult{Barcode: barcode, Status: SyncStatusAlreadyPresent})
			continue
		}

		record, ok := records[barcode]
		if !ok {
			report.add(SyncResult{Barcode: barcode, Status: SyncStatusNotFound, Error: "not found in inventory"})
			continue
		}

		insert := make(map[string]interface{}, len(record))
		for column, value := range record {
			if _, ok := writable[column]; ok {
				insert[column] = value
			}
		}
		if len(insert) == 0 {
			report.add(SyncResult{
				Barcode: barcode,
				Status:  SyncStatusFailed,
				Error:   "no overlapping columns between inventory record and catalog schema",
			})
			continue
		}

		if err := backofficeDB.WithContext(ctx).Table("items").Create(insert).Error; err != nil {
			report.add(SyncResult{Barcode: barcode, Status: SyncStatusFailed, Error: err.Error()})
			continue
		}
		report.add(SyncResult{Barcode: barcode, Status: SyncStatusCopied})
	}

	return report, nil
}

// writableItemColumns lists the catalog items columns healing may insert into:
// everything except identity/auto-increment columns.
func writableItemColumns(db *gorm.DB) (map[string]struct{}, error) {
	columnTypes, err := db.Migrator().ColumnTypes(&models.Item{})
	if err != nil {
		return nil, err
	}
	writable := make(map[string]struct{}, len(columnTypes))
	for _, column := range columnTypes {
		if pk, ok := column.PrimaryKey(); ok && pk {
			continue
		}
		if auto, ok := column.AutoIncrement(); ok && auto {
			continue
		}
		writable[column.Name()] = struct{}{}
	}
	return writable, nil
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
