package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PickList mirrors the shipper system's pick_lists table. The shipper owns
// this schema; the bridge only ever reads it. Conversion and archival state
// live in the ledger, not here.
type PickList struct {
	ID           int       `gorm:"primary_key" json:"id"`
	OrderNumber  string    `gorm:"size:50" json:"order_number"`
	CustomerName string    `gorm:"size:100" json:"customer_name"`
	Status       string    `gorm:"size:50" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PickList) TableName() string {
	return "pick_lists"
}

// PickListProduct is one requested line of a picklist. Barcode is nullable in
// the shipper schema; lines without one can never be matched.
type PickListProduct struct {
	ID         int             `gorm:"primary_key" json:"id"`
	PickListId int             `gorm:"index;not null" json:"pick_list_id"`
	Barcode    *string         `gorm:"size:20" json:"barcode"`
	Name       string          `gorm:"size:100" json:"name"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

func (PickListProduct) TableName() string {
	return "pick_list_products"
}

func (p *PickListProduct) HasBarcode() bool {
	return p.Barcode != nil && *p.Barcode != ""
}

// Eligible reports whether the line participates in reconciliation. Lines
// with non-positive quantity are excluded by policy, not treated as errors.
func (p *PickListProduct) Eligible() bool {
	return p.Amount.IsPositive()
}
