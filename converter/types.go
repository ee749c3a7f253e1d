// Package converter implements the picklist reconciliation pipeline: matching
// picklist lines against the BackOffice catalog, healing catalog gaps from the
// inventory source, issuing quotations, and recording every attempt in the
// ledger.
package converter

import (
	"errors"

	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrConfigMissing means no backend connection config has been saved.
	// Fatal to the whole cycle, not to a single picklist.
	ErrConfigMissing = errors.New("database configuration not found")

	// ErrDefaultsMissing means no quotation defaults are saved. Conversion
	// has no customer to bill against, so this is a hard precondition failure.
	ErrDefaultsMissing = errors.New("quotation defaults not configured")

	// ErrRunInProgress is returned when a second pipeline run (poller cycle or
	// on-demand trigger) is attempted while one is active. The run lock is
	// what makes read-max-then-insert quotation numbering safe.
	ErrRunInProgress = errors.New("conversion already in progress")
)

// ConversionOutcome is the per-picklist result surfaced to callers and
// mirrored into the ledger.
type ConversionOutcome struct {
	PickListId      int    `json:"pick_list_id"`
	Success         bool   `json:"success"`
	QuotationId     *int   `json:"quotation_id,omitempty"`
	QuotationNumber string `json:"quotation_number,omitempty"`
	Error           string `json:"error,omitempty"`
}

// BatchResult aggregates one fan-out over the pending set. Batch operations
// never raise on first failure; they report counts plus a per-item error list.
type BatchResult struct {
	TotalPending int          `json:"total_pending"`
	Converted    int          `json:"converted"`
	Failed       int          `json:"failed"`
	Errors       []BatchError `json:"errors"`
}

type BatchError struct {
	PickListId int    `json:"pick_list_id"`
	Error      string `json:"error"`
}

// AnnotatedPickList is a shipper picklist with ledger state attached.
type AnnotatedPickList struct {
	models.PickList
	IsConverted bool `json:"is_converted"`
}

// SyncStatus classifies the outcome of one barcode in a healing run.
type SyncStatus string

const (
	SyncStatusCopied         SyncStatus = "copied"
	SyncStatusAlreadyPresent SyncStatus = "already_present"
	SyncStatusNotFound       SyncStatus = "not_found"
	SyncStatusFailed         SyncStatus = "failed"
	SyncStatusNotConfigured  SyncStatus = "not_configured"
)

type SyncResult struct {
	Barcode string     `json:"barcode"`
	Status  SyncStatus `json:"status"`
	Error   string     `json:"error,omitempty"`
}

// SyncReport is the per-barcode outcome of one healing run. Each barcode's
// insert is independent; one failure never aborts the others.
type SyncReport struct {
	Results       []SyncResult `json:"results"`
	Copied        int          `json:"copied"`
	Skipped       int          `json:"skipped"`
	Failed        int          `json:"failed"`
	NotConfigured bool         `json:"not_configured"`
}

func (r *SyncReport) add(result SyncResult) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case SyncStatusCopied:
		r.Copied++
	case SyncStatusAlreadyPresent:
		r.Skipped++
	case SyncStatusNotFound, SyncStatusFailed:
		r.Failed++
	}
}

// CopiedBarcodes returns the barcodes actually inserted this run.
func (r *SyncReport) CopiedBarcodes() []string {
	var copied []string
	for _, res := range r.Results {
		if res.Status == SyncStatusCopied {
			copied = append(copied, res.Barcode)
		}
	}
	return copied
}

// MissingProduct is one gap found by CheckMissingProducts.
type MissingProduct struct {
	PickListId int             `json:"pick_list_id"`
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	Status     string          `json:"status"`
}

const (
	missingStatusNotFound         = "not_found"
	missingStatusFoundInInventory = "found_in_inventory"
)

type MissingReport struct {
	Missing           []MissingProduct `json:"missing"`
	TotalProducts     int              `json:"total_products"`
	MissingCount      int              `json:"missing_count"`
	CanCopyCount      int              `json:"can_copy_count"`
	TrulyMissingCount int              `json:"truly_missing_count"`
}

// PollerStatus reports whether the background loop is active and the interval
// it will use for its next cycle.
type PollerStatus struct {
	Running         bool `json:"running"`
	IntervalSeconds int  `json:"interval_seconds"`
}
