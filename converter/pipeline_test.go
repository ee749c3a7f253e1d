package converter_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mmdatafocus/picklist_bridge/converter"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/shopspring/decimal"
)

func TestConvertOne_CreatesQuotationAndLedgerRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	env.seedDefaults(t)
	env.seedCustomer(t)
	seedItem(t, env.catalog, "4801234567890", "RICE-5KG", "10.00", "6.00")
	env.seedPickList(t, 1, "ORD-1001")
	env.seedLine(t, 1, "4801234567890", "Jasmine Rice 5kg", "3")

	outcome, err := env.conv.ConvertOne(ctx, 1)
	if err != nil {
		t.Fatalf("ConvertOne: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got error %q", outcome.Error)
	}
	if outcome.QuotationId == nil {
		t.Fatal("outcome missing quotation id")
	}

	quotation, err := models.GetQuotation(ctx, env.catalog, *outcome.QuotationId)
	if err != nil {
		t.Fatalf("GetQuotation: %v", err)
	}
	if !quotation.QuotationTotal.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected total 30.00, got %s", quotation.QuotationTotal)
	}
	if len(quotation.Details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(quotation.Details))
	}
	if !quotation.Details[0].ExtendedCost.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("expected extended cost 18.00, got %s", quotation.Details[0].ExtendedCost)
	}
	if quotation.Title != "Picklist 1" {
		t.Fatalf("unexpected title %q", quotation.Title)
	}

	converted, err := env.store.ConvertedPickListIds(ctx)
	if err != nil {
		t.Fatalf("ConvertedPickListIds: %v", err)
	}
	if _, ok := converted[1]; !ok {
		t.Fatal("picklist 1 not recorded as converted")
	}

	// Converted picklists leave the pending set but stay in the listing.
	pending, err := env.conv.PendingPickLists(ctx)
	if err != nil {
		t.Fatalf("PendingPickLists: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty pending set, got %d", len(pending))
	}
	listed, err := env.conv.ListPickLists(ctx)
	if err != nil {
		t.Fatalf("ListPickLists: %v", err)
	}
	if len(listed) != 1 || !listed[0].IsConverted {
		t.Fatalf("listing should still show picklist 1 as converted: %+v", listed)
	}
}

func TestConvertOne_UnmatchedBarcodeFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	env.seedDefaults(t)
	env.seedCustomer(t)
	env.seedPickList(t, 2, "ORD-1002")
	env.seedLine(t, 2, "999", "Ghost Widget", "1")

	outcome, err := env.conv.ConvertOne(ctx, 2)
	if err != nil {
		t.Fatalf("ConvertOne: %v", err)
	}
	if outcome.Success {
		t.Fatal("expected failure for unmatched barcode")
	}
	if !strings.Contains(outcome.Error, "unable to match products") ||
		!strings.Contains(outcome.Error, "999") ||
		!strings.Contains(outcome.Error, "Ghost Widget") {
		t.Fatalf("error should name the unmatched barcode and product, got %q", outcome.Error)
	}

	var count int64
	if err := env.catalog.Model(&models.Quotation{}).Count(&count).Error; err != nil {
		t.Fatalf("count quotations: %v", err)
	}
	if count != 0 {
		t.Fatalf("no quotation should exist, got %d", count)
	}

	history, err := env.store.ConversionHistory(ctx, 10, 0, "failed")
	if err != nil {
		t.Fatalf("ConversionHistory: %v", err)
	}
	if len(history) != 1 || history[0].PickListId != 2 {
		t.Fatalf("expected one failed record for picklist 2, got %+v", history)
	}
}

func TestConvertOne_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	env.seedDefaults(t)
	env.seedCustomer(t)
	seedItem(t, env.catalog, "4801234567890", "RICE-5KG", "10.00", "6.00")
	env.seedPickList(t, 3, "ORD-1003")
	env.seedLine(t, 3, "4801234567890", "Jasmine Rice 5kg", "3")
	env.seedLine(t, 3, "999", "Ghost Widget", "1")
	env.seedLine(t, 3, "", "Unlabeled Sample", "2")

	outcome, err := env.conv.ConvertOne(ctx, 3)
	if err != nil {
		t.Fatalf("ConvertOne: %v", err)
	}
	if outcome.Success {
		t.Fatal("partial match must not produce a quotation")
	}
	if !strings.Contains(outcome.Error, "barcode '999'") ||
		!strings.Contains(outcome.Error, "has no barcode") {
		t.Fatalf("error should name every unmatched line, got %q", outcome.Error)
	}

	var headers, details int64
	if err := env.catalog.Model(&models.Quotation{}).Count(&headers).Error; err != nil {
		t.Fatalf("count headers: %v", err)
	}
	if err := env.catalog.Model(&models.QuotationDetail{}).Count(&details).Error; err != nil {
		t.Fatalf("count details: %v", err)
	}
	if headers != 0 || details != 0 {
		t.Fatalf("partial quotation persisted: %d headers, %d details", headers, details)
	}
}

func TestConvertOne_ZeroQuantityLinesExcluded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	env.seedDefaults(t)
	env.seedCustomer(t)
	env.seedPickList(t, 4, "ORD-1004")
	env.seedLine(t, 4, "4801234567890", "Jasmine Rice 5kg", "0")

	outcome, err := env.conv.ConvertOne(ctx, 4)
	if err != nil {
		t.Fatalf("ConvertOne: %v", err)
	}
	if outcome.Success {
		t.Fatal("picklist with only zero-quantity lines must fail")
	}
	if outcome.Error != "no eligible products in picklist" {
		t.Fatalf("unexpected error %q", outcome.Error)
	}
}

func TestConvertOne_HealsFromInventory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	env.seedDefaults(t)
	env.seedCustomer(t)
	seedItem(t, env.inventory, "777", "COFFEE-250", "5.00", "3.00")
	env.seedPickList(t, 5, "ORD-1005")
	env.seedLine(t, 5, "777", "Ground Coffee 250g", "6")

	outcome, err := env.conv.ConvertOne(ctx, 5)
	if err != nil {
		t.Fatalf("ConvertOne: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected healing to rescue the conversion, got %q", outcome.Error)
	}

	// The item must now live in the catalog, not just the quotation.
	var item models.Item
	if err := env.catalog.Where("barcode = ?", "777").Take(&item).Error; err != nil {
		t.Fatalf("healed item missing from catalog: %v", err)
	}
	if item.Sku != "COFFEE-250" {
		t.Fatalf("unexpected healed item: %+v", item)
	}

	quotation, err := models.GetQuotation(ctx, env.catalog, *outcome.QuotationId)
	if err != nil {
		t.Fatalf("GetQuotation: %v", err)
	}
	if !quotation.QuotationTotal.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected total 30.00, got %s", quotation.QuotationTotal)
	}
}

func TestConvertOne_DefaultsMissing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	env.seedPickList(t, 6, "ORD-1006")

	_, err := env.conv.ConvertOne(ctx, 6)
	if !errors.Is(err, converter.ErrDefaultsMissing) {
		t.Fatalf("expected defaults-missing error, got %v", err)
	}
}

func TestConvertAllPending_BatchIsolation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	env.seedDefaults(t)
	env.seedCustomer(t)
	seedItem(t, env.catalog, "4801234567890", "RICE-5KG", "10.00", "6.00")

	env.seedPickList(t, 1, "ORD-1001")
	env.seedLine(t, 1, "4801234567890", "Jasmine Rice 5kg", "3")
	env.seedPickList(t, 2, "ORD-1002")
	env.seedLine(t, 2, "999", "Ghost Widget", "1")
	env.seedPickList(t, 3, "ORD-1003")
	env.seedLine(t, 3, "4801234567890", "Jasmine Rice 5kg", "1")
	// Archived entirely out of scope, whatever its lines say.
	env.seedPickList(t, 4, "ORD-1004")
	env.seedLine(t, 4, "4801234567890", "Jasmine Rice 5kg", "1")
	if err := env.store.ArchivePickList(ctx, 4, "test"); err != nil {
		t.Fatalf("ArchivePickList: %v", err)
	}

	result, err := env.conv.ConvertAllPending(ctx)
	if err != nil {
		t.Fatalf("ConvertAllPending: %v", err)
	}
	if result.TotalPending != 3 {
		t.Fatalf("expected 3 pending, got %d", result.TotalPending)
	}
	if result.Converted != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 converted / 1 failed, got %d / %d", result.Converted, result.Failed)
	}
	if len(result.Errors) != 1 || result.Errors[0].PickListId != 2 {
		t.Fatalf("expected one error for picklist 2, got %+v", result.Errors)
	}

	// Second run: nothing left to do, failures retried.
	again, err := env.conv.ConvertAllPending(ctx)
	if err != nil {
		t.Fatalf("ConvertAllPending second run: %v", err)
	}
	if again.TotalPending != 1 || again.Converted != 0 || again.Failed != 1 {
		t.Fatalf("second run should only retry the failed picklist, got %+v", again)
	}

	// Quotation numbers stay sequential across the batch.
	var numbers []string
	if err := env.catalog.Model(&models.Quotation{}).Order("id").Pluck("quotation_number", &numbers).Error; err != nil {
		t.Fatalf("pluck numbers: %v", err)
	}
	if len(numbers) != 2 || numbers[0] != "1" || numbers[1] != "2" {
		t.Fatalf("expected sequential numbers [1 2], got %v", numbers)
	}
}

func TestCheckMissingProducts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	env.seedCustomer(t)
	seedItem(t, env.catalog, "4801234567890", "RICE-5KG", "10.00", "6.00")
	seedItem(t, env.inventory, "777", "COFFEE-250", "5.00", "3.00")

	env.seedPickList(t, 1, "ORD-1001")
	env.seedLine(t, 1, "4801234567890", "Jasmine Rice 5kg", "3") // matched
	env.seedLine(t, 1, "777", "Ground Coffee 250g", "6")         // copyable
	env.seedLine(t, 1, "999", "Ghost Widget", "1")               // truly missing
	env.seedLine(t, 1, "", "Unlabeled Sample", "2")              // no barcode

	report, err := env.conv.CheckMissingProducts(ctx, []int{1})
	if err != nil {
		t.Fatalf("CheckMissingProducts: %v", err)
	}
	if report.TotalProducts != 4 {
		t.Fatalf("expected 4 total products, got %d", report.TotalProducts)
	}
	if report.MissingCount != 3 {
		t.Fatalf("expected 3 missing, got %d", report.MissingCount)
	}
	if report.CanCopyCount != 1 {
		t.Fatalf("expected 1 copyable, got %d", report.CanCopyCount)
	}
	if report.TrulyMissingCount != 2 {
		t.Fatalf("expected 2 truly missing, got %d", report.TrulyMissingCount)
	}

	// Read-only: checking must not copy anything.
	var count int64
	if err := env.catalog.Model(&models.Item{}).Where("barcode = ?", "777").Count(&count).Error; err != nil {
		t.Fatalf("count catalog items: %v", err)
	}
	if count != 0 {
		t.Fatal("CheckMissingProducts copied an item")
	}
}
