package converter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mmdatafocus/picklist_bridge/config"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/mmdatafocus/picklist_bridge/utils"
	"github.com/sirupsen/logrus"
)

// Converter orchestrates one picklist's journey: fetch lines, match, heal,
// re-match, gate, build quotation, record outcome. runMu is the pipeline run
// lock: the poller's cycle and on-demand API triggers share it, so at most one
// pipeline run is active system-wide.
type Converter struct {
	store    *models.Store
	backends Backends
	logger   *logrus.Logger

	runMu sync.Mutex
}

func NewConverter(store *models.Store, backends Backends, logger *logrus.Logger) *Converter {
	return &Converter{
		store:    store,
		backends: backends,
		logger:   logger,
	}
}

// ListPickLists returns every non-archived shipper picklist annotated with
// its conversion status. This is the operator-facing listing; the conversion
// pending set additionally excludes converted picklists.
func (c *Converter) ListPickLists(ctx context.Context) ([]*AnnotatedPickList, error) {
	return c.listPickLists(ctx, true)
}

// PendingPickLists computes the pending set for a cycle: all picklists minus
// archived minus successfully converted. Recomputed fresh on every call; no
// caching across cycles.
func (c *Converter) PendingPickLists(ctx context.Context) ([]*AnnotatedPickList, error) {
	return c.listPickLists(ctx, false)
}

func (c *Converter) listPickLists(ctx context.Context, includeConverted bool) ([]*AnnotatedPickList, error) {
	converted, err := c.store.ConvertedPickListIds(ctx)
	if err != nil {
		return nil, err
	}
	archived, err := c.store.ArchivedPickListIds(ctx)
	if err != nil {
		return nil, err
	}

	shipperDB, err := c.backends.Shipper(ctx)
	if err != nil {
		return nil, err
	}

	var pickLists []models.PickList
	if err := shipperDB.WithContext(ctx).Order("id").Find(&pickLists).Error; err != nil {
		return nil, err
	}

	result := make([]*AnnotatedPickList, 0, len(pickLists))
	for _, pickList := range pickLists {
		if _, ok := archived[pickList.ID]; ok {
			continue
		}
		_, isConverted := converted[pickList.ID]
		if isConverted && !includeConverted {
			continue
		}
		result = append(result, &AnnotatedPickList{PickList: pickList, IsConverted: isConverted})
	}
	return result, nil
}

// ConvertOne converts a single picklist under the pipeline run lock.
func (c *Converter) ConvertOne(ctx context.Context, pickListId int) (*ConversionOutcome, error) {
	if !c.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.runMu.Unlock()
	return c.convertOne(ctx, pickListId)
}

// ConvertAllPending fans the pipeline out across the pending set,
// sequentially: one picklist's backend error must not corrupt another's
// transaction, and the quotation number allocation relies on a single builder
// at a time.
func (c *Converter) ConvertAllPending(ctx context.Context) (*BatchResult, error) {
	if !c.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.runMu.Unlock()

	pending, err := c.PendingPickLists(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		TotalPending: len(pending),
		Errors:       make([]BatchError, 0),
	}
	for _, pickList := range pending {
		outcome, err := c.convertOne(ctx, pickList.ID)
		if err != nil {
			// Backend-level failure for this picklist; the batch carries on.
			result.Failed++
			result.Errors = append(result.Errors, BatchError{PickListId: pickList.ID, Error: err.Error()})
			config.LogError(c.logger, "converter", "ConvertAllPending", "convert picklist", pickList.ID, err)
			continue
		}
		if outcome.Success {
			result.Converted++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, BatchError{PickListId: pickList.ID, Error: outcome.Error})
		}
	}
	return result, nil
}

// convertOne runs the per-picklist state machine. Callers hold runMu.
func (c *Converter) convertOne(ctx context.Context, pickListId int) (*ConversionOutcome, error) {
	defaults, err := c.store.GetQuotationDefaults(ctx)
	if err != nil {
		return nil, err
	}
	if defaults == nil {
		return nil, ErrDefaultsMissing
	}

	shipperDB, err := c.backends.Shipper(ctx)
	if err != nil {
		return nil, err
	}
	backofficeDB, err := c.backends.BackOffice(ctx)
	if err != nil {
		return nil, err
	}

	var products []models.PickListProduct
	if err := shipperDB.WithContext(ctx).
		Where("pick_list_id = ?", pickListId).Find(&products).Error; err != nil {
		return nil, err
	}

	eligible := make([]models.PickListProduct, 0, len(products))
	for _, product := range products {
		if product.Eligible() {
			eligible = append(eligible, product)
		}
	}
	if len(eligible) == 0 {
		return c.recordFailure(ctx, pickListId, "no eligible products in picklist"), nil
	}

	var barcodes []string
	for _, product := range eligible {
		if product.HasBarcode() {
			barcodes = append(barcodes, *product.Barcode)
		}
	}

	matched, err := MatchBarcodes(ctx, backofficeDB, barcodes)
	if err != nil {
		return nil, err
	}

	// Escalate gaps to the healing source, then re-match only what it copied
	// and promote those lines from unmatched to matched.
	var gaps []string
	for _, barcode := range utils.UniqueSlice(barcodes) {
		if _, ok := matched[barcode]; !ok {
			gaps = append(gaps, barcode)
		}
	}
	healed := make(map[string]struct{})
	if len(gaps) > 0 {
		report, err := c.CopyFromInventory(ctx, gaps)
		if err != nil {
			return nil, err
		}
		if copied := report.CopiedBarcodes(); len(copied) > 0 {
			rematched, err := MatchBarcodes(ctx, backofficeDB, copied)
			if err != nil {
				return nil, err
			}
			for barcode, item := range rematched {
				matched[barcode] = item
				healed[barcode] = struct{}{}
			}
		}
	}

	// Gate: all-or-nothing. A quotation is complete for every eligible line
	// or not created at all.
	var unmatched []string
	lines := make([]models.NewQuotationLine, 0, len(eligible))
	for _, product := range eligible {
		if !product.HasBarcode() {
			unmatched = append(unmatched, fmt.Sprintf("product '%s' has no barcode", product.Name))
			continue
		}
		item, ok := matched[*product.Barcode]
		if !ok {
			unmatched = append(unmatched, fmt.Sprintf("barcode '%s' (product: %s)", *product.Barcode, product.Name))
			continue
		}
		lines = append(lines, models.NewQuotationLine{
			ProductId:   item.ID,
			Sku:         item.Sku,
			Barcode:     item.Barcode,
			Description: item.Description,
			UnitName:    item.UnitName,
			ItemSize:    item.ItemSize,
			ItemWeight:  item.ItemWeight,
			Qty:         product.Amount,
			UnitPrice:   item.UnitPrice,
			UnitCost:    item.UnitCost,
		})
	}
	if len(unmatched) > 0 {
		message := "unable to match products: " + strings.Join(unmatched, ", ")
		return c.recordFailure(ctx, pickListId, message), nil
	}

	quotation, err := models.CreateQuotation(ctx, backofficeDB, &models.NewQuotation{
		PickListId:  pickListId,
		CustomerId:  defaults.CustomerId,
		Status:      defaults.DefaultStatus,
		TitlePrefix: defaults.QuotationTitlePrefix,
		Lines:       lines,
	})
	if err != nil {
		return c.recordFailure(ctx, pickListId, err.Error()), nil
	}

	outcome := &ConversionOutcome{
		PickListId:      pickListId,
		Success:         true,
		QuotationId:     &quotation.ID,
		QuotationNumber: quotation.QuotationNumber,
	}
	c.recordOutcome(ctx, outcome)

	triggeredBy, _ := utils.GetTriggeredByFromContext(ctx)
	c.logger.WithFields(logrus.Fields{
		"module":          "converter",
		"pickListId":      pickListId,
		"quotationId":     quotation.ID,
		"quotationNumber": quotation.QuotationNumber,
		"quotationTotal":  quotation.QuotationTotal,
		"healedBarcodes":  len(healed),
		"lines":           len(lines),
		"triggeredBy":     triggeredBy,
	}).Info("picklist converted")
	return outcome, nil
}

func (c *Converter) recordFailure(ctx context.Context, pickListId int, message string) *ConversionOutcome {
	outcome := &ConversionOutcome{
		PickListId: pickListId,
		Success:    false,
		Error:      message,
	}
	c.recordOutcome(ctx, outcome)
	return outcome
}

// recordOutcome writes the ledger row. A ledger write failure is surfaced as
// a warning only: it must never overturn a conversion already committed to
// the BackOffice.
func (c *Converter) recordOutcome(ctx context.Context, outcome *ConversionOutcome) {
	record := models.ConversionRecord{
		PickListId:      outcome.PickListId,
		Success:         outcome.Success,
		QuotationId:     outcome.QuotationId,
		QuotationNumber: outcome.QuotationNumber,
		ErrorMessage:    outcome.Error,
	}
	if err := c.store.LogConversion(ctx, &record); err != nil {
		config.LogWarn(c.logger, "converter", "recordOutcome",
			fmt.Sprintf("failed to log conversion for picklist %d", outcome.PickListId), err)
	}
}

// CheckMissingProducts reports, for a set of picklists, which products are
// missing from the catalog and which of those the inventory source could
// supply. Read-only; copying is a separate explicit call.
func (c *Converter) CheckMissingProducts(ctx context.Context, pickListIds []int) (*MissingReport, error) {
	shipperDB, err := c.backends.Shipper(ctx)
	if err != nil {
		return nil, err
	}
	backofficeDB, err := c.backends.BackOffice(ctx)
	if err != nil {
		return nil, err
	}

	var products []models.PickListProduct
	if len(pickListIds) > 0 {
		if err := shipperDB.WithContext(ctx).
			Where("pick_list_id IN ?", pickListIds).
			Order("pick_list_id").Find(&products).Error; err != nil {
			return nil, err
		}
	}

	var barcodes []string
	for _, product := range products {
		if product.HasBarcode() {
			barcodes = append(barcodes, *product.Barcode)
		}
	}

	matched, err := MatchBarcodes(ctx, backofficeDB, barcodes)
	if err != nil {
		return nil, err
	}

	var missingBarcodes []string
	for _, barcode := range utils.UniqueSlice(barcodes) {
		if _, ok := matched[barcode]; !ok {
			missingBarcodes = append(missingBarcodes, barcode)
		}
	}

	inInventory := make(map[string]struct{})
	if len(missingBarcodes) > 0 {
		if inventoryDB, err := c.backends.Inventory(ctx); err == nil {
			var found []string
			if err := inventoryDB.WithContext(ctx).Table("items").
				Where("barcode IN ?", missingBarcodes).
				Pluck("barcode", &found).Error; err != nil {
				return nil, err
			}
			for _, barcode := range found {
				inInventory[barcode] = struct{}{}
			}
		}
	}

	report := &MissingReport{
		Missing:       make([]MissingProduct, 0),
		TotalProducts: len(products),
	}
	for _, product := range products {
		if !product.HasBarcode() {
			report.Missing = append(report.Missing, MissingProduct{
				PickListId: product.PickListId,
				Barcode:    "N/A",
				Name:       product.Name,
				Amount:     product.Amount,
				Reason:     "no barcode",
				Status:     missingStatusNotFound,
			})
			continue
		}
		barcode := *product.Barcode
		if _, ok := matched[barcode]; ok {
			continue
		}
		if _, ok := inInventory[barcode]; ok {
			report.Missing = append(report.Missing, MissingProduct{
				PickListId: product.PickListId,
				Barcode:    barcode,
				Name:       product.Name,
				Amount:     product.Amount,
				Reason:     "found in inventory",
				Status:     missingStatusFoundInInventory,
			})
			report.CanCopyCount++
			continue
		}
		report.Missing = append(report.Missing, MissingProduct{
			PickListId: product.PickListId,
			Barcode:    barcode,
			Name:       product.Name,
			Amount:     product.Amount,
			Reason:     "not found in backoffice or inventory",
			Status:     missingStatusNotFound,
		})
	}
	report.MissingCount = len(report.Missing)
	report.TrulyMissingCount = report.MissingCount - report.CanCopyCount
	return report, nil
}
