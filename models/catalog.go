package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the product/pricing row shared by the BackOffice catalog and the
// inventory source (the two schemas drift, which is why healing inserts only
// the column intersection — see converter.CopyFromInventory). The bridge
// reads items and, for healing, inserts new ones; it never updates existing
// rows.
type Item struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Sku          string          `gorm:"size:20" json:"sku"`
	Barcode      string          `gorm:"size:20;index" json:"barcode"`
	Description  string          `gorm:"size:50" json:"description"`
	CategoryId   int             `json:"category_id"`
	UnitId       int             `json:"unit_id"`
	ItemSize     string          `gorm:"size:10" json:"item_size"`
	ItemWeight   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"item_weight"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	QtyOnHand    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty_on_hand"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reorder_level"`
	Taxable      bool            `gorm:"default:false" json:"taxable"`
	Discontinued bool            `gorm:"default:false" json:"discontinued"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// Unit is the unit-of-measure descriptor referenced by Item.UnitId.
type Unit struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:50" json:"name"`
}

func (Unit) TableName() string {
	return "units"
}

// Customer is the BackOffice customer record quotations bill against. The
// shipping fields are snapshotted onto the quotation at creation time so later
// customer edits do not rewrite historical documents.
type Customer struct {
	ID           int    `gorm:"primary_key" json:"id"`
	BusinessName string `gorm:"size:50" json:"business_name"`
	AccountNo    string `gorm:"size:13" json:"account_no"`
	ShipTo       string `gorm:"size:50" json:"ship_to"`
	ShipAddress1 string `gorm:"size:50" json:"ship_address1"`
	ShipAddress2 string `gorm:"size:50" json:"ship_address2"`
	ShipContact  string `gorm:"size:50" json:"ship_contact"`
	ShipCity     string `gorm:"size:20" json:"ship_city"`
	ShipState    string `gorm:"size:3" json:"ship_state"`
	ShipZipCode  string `gorm:"size:10" json:"ship_zip_code"`
	ShipPhone    string `gorm:"size:13" json:"ship_phone"`
}

func (Customer) TableName() string {
	return "customers"
}
