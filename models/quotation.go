package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mmdatafocus/picklist_bridge/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrCustomerNotFound = errors.New("customer not found")

// Destination column widths in the BackOffice quotation schema. Values longer
// than these are silently truncated, matching what the ERP's own UI does.
const (
	widthQuotationNumber = 20
	widthQuotationTitle  = 50
	widthBusinessName    = 50
	widthAccountNo       = 13
	widthShipField       = 50
	widthShipCity        = 20
	widthShipState       = 3
	widthShipZipCode     = 10
	widthShipPhone       = 13
	widthSku             = 20
	widthBarcode         = 20
	widthDescription     = 50
	widthUnitName        = 50
	widthItemSize        = 10
)

// Quotation is the generated sales document header. The customer/shipping
// fields are copies, not references; QuotationTotal is always derived from the
// detail rows, never supplied by the caller.
type Quotation struct {
	ID              int               `gorm:"primary_key" json:"id"`
	QuotationNumber string            `gorm:"size:20;not null" json:"quotation_number"`
	QuotationDate   time.Time         `gorm:"not null" json:"quotation_date"`
	Title           string            `gorm:"size:50" json:"title"`
	CustomerId      int               `gorm:"index;not null" json:"customer_id"`
	Status          int               `json:"status"`
	PoNumber        string            `gorm:"size:20" json:"po_number"`
	ExpirationDate  time.Time         `json:"expiration_date"`
	BusinessName    string            `gorm:"size:50" json:"business_name"`
	AccountNo       string            `gorm:"size:13" json:"account_no"`
	ShipTo          string            `gorm:"size:50" json:"ship_to"`
	ShipAddress1    string            `gorm:"size:50" json:"ship_address1"`
	ShipAddress2    string            `gorm:"size:50" json:"ship_address2"`
	ShipContact     string            `gorm:"size:50" json:"ship_contact"`
	ShipCity        string            `gorm:"size:20" json:"ship_city"`
	ShipState       string            `gorm:"size:3" json:"ship_state"`
	ShipZipCode     string            `gorm:"size:10" json:"ship_zip_code"`
	ShipPhone       string            `gorm:"size:13" json:"ship_phone"`
	QuotationTotal  decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"quotation_total"`
	Details         []QuotationDetail `gorm:"foreignKey:QuotationId" json:"details"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Quotation) TableName() string {
	return "quotations"
}

// QuotationDetail is one line of a quotation. OriginalPrice keeps the
// undiscounted unit price verbatim so discounting logic elsewhere always has a
// reference value. Extended amounts are quantity x unit value snapshots.
type QuotationDetail struct {
	ID            int             `gorm:"primary_key" json:"id"`
	QuotationId   int             `gorm:"index;not null" json:"quotation_id"`
	ProductId     int             `gorm:"index" json:"product_id"`
	Sku           string          `gorm:"size:20" json:"sku"`
	Barcode       string          `gorm:"size:20" json:"barcode"`
	Description   string          `gorm:"size:50" json:"description"`
	UnitName      string          `gorm:"size:50" json:"unit_name"`
	ItemSize      string          `gorm:"size:10" json:"item_size"`
	ItemWeight    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"item_weight"`
	Qty           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"original_price"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	ExtendedPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"extended_price"`
	ExtendedCost  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"extended_cost"`
	ExpDate       time.Time       `json:"exp_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (QuotationDetail) TableName() string {
	return "quotation_details"
}

// NewQuotation is the fully matched line set for one picklist conversion.
type NewQuotation struct {
	PickListId  int
	CustomerId  int
	Status      int
	TitlePrefix string
	Lines       []NewQuotationLine
}

type NewQuotationLine struct {
	ProductId   int
	Sku         string
	Barcode     string
	Description string
	UnitName    string
	ItemSize    string
	ItemWeight  decimal.Decimal
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
}

// nextQuotationNumber computes max(numeric quotation numbers) + 1. Numbers
// that are not purely numeric (legacy prefixed documents) are ignored. The
// read-then-insert is not atomic; it relies on the pipeline's single run lock.
func nextQuotationNumber(tx *gorm.DB, ctx context.Context) (string, error) {
	var numbers []string
	if err := tx.WithContext(ctx).Model(&Quotation{}).
		Pluck("quotation_number", &numbers).Error; err != nil {
		return "", err
	}
	var max int64
	for _, n := range numbers {
		v, err := strconv.ParseInt(n, 10, 64)
		if err != nil || v < 0 {
			continue
		}
		if v > max {
			max = v
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

// CreateQuotation issues the quotation header and all detail rows under one
// transaction. Any failure at any step rolls back everything; nothing
// partially created survives.
func CreateQuotation(ctx context.Context, db *gorm.DB, input *NewQuotation) (*Quotation, error) {
	if len(input.Lines) == 0 {
		return nil, errors.New("quotation requires at least one line")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var customer Customer
	if err := tx.WithContext(ctx).Where("id = ?", input.CustomerId).Take(&customer).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer id %d", ErrCustomerNotFound, input.CustomerId)
		}
		return nil, err
	}

	number, err := nextQuotationNumber(tx, ctx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	quotationDate := time.Now().UTC()
	expirationDate := quotationDate.AddDate(1, 0, 0)

	quotation := Quotation{
		QuotationNumber: utils.TruncateString(number, widthQuotationNumber),
		QuotationDate:   quotationDate,
		Title:           utils.TruncateString(fmt.Sprintf("%s %d", input.TitlePrefix, input.PickListId), widthQuotationTitle),
		CustomerId:      input.CustomerId,
		Status:          input.Status,
		ExpirationDate:  expirationDate,
		BusinessName:    utils.TruncateString(customer.BusinessName, widthBusinessName),
		AccountNo:       utils.TruncateString(customer.AccountNo, widthAccountNo),
		ShipTo:          utils.TruncateString(customer.ShipTo, widthShipField),
		ShipAddress1:    utils.TruncateString(customer.ShipAddress1, widthShipField),
		ShipAddress2:    utils.TruncateString(customer.ShipAddress2, widthShipField),
		ShipContact:     utils.TruncateString(customer.ShipContact, widthShipField),
		ShipCity:        utils.TruncateString(customer.ShipCity, widthShipCity),
		ShipState:       utils.TruncateString(customer.ShipState, widthShipState),
		ShipZipCode:     utils.TruncateString(customer.ShipZipCode, widthShipZipCode),
		ShipPhone:       utils.TruncateString(customer.ShipPhone, widthShipPhone),
	}
	if err := tx.WithContext(ctx).Create(&quotation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, line := range input.Lines {
		detail := QuotationDetail{
			QuotationId:   quotation.ID,
			ProductId:     line.ProductId,
			Sku:           utils.TruncateString(line.Sku, widthSku),
			Barcode:       utils.TruncateString(line.Barcode, widthBarcode),
			Description:   utils.TruncateString(line.Description, widthDescription),
			UnitName:      utils.TruncateString(line.UnitName, widthUnitName),
			ItemSize:      utils.TruncateString(line.ItemSize, widthItemSize),
			ItemWeight:    line.ItemWeight,
			Qty:           line.Qty,
			UnitPrice:     line.UnitPrice,
			OriginalPrice: line.UnitPrice,
			UnitCost:      line.UnitCost,
			ExtendedPrice: line.Qty.Mul(line.UnitPrice),
			ExtendedCost:  line.Qty.Mul(line.UnitCost),
			ExpDate:       expirationDate,
		}
		if err := tx.WithContext(ctx).Create(&detail).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Recompute the total from the rows just inserted, not the input, so the
	// header always reflects what is actually persisted.
	var total decimal.NullDecimal
	if err := tx.WithContext(ctx).Model(&QuotationDetail{}).
		Where("quotation_id = ?", quotation.ID).
		Select("SUM(extended_price)").Scan(&total).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	quotation.QuotationTotal = total.Decimal
	if err := tx.WithContext(ctx).Model(&Quotation{}).
		Where("id = ?", quotation.ID).
		Update("quotation_total", quotation.QuotationTotal).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

// GetQuotation loads a quotation with its details.
func GetQuotation(ctx context.Context, db *gorm.DB, id int) (*Quotation, error) {
	var quotation Quotation
	if err := db.WithContext(ctx).Preload("Details").
		Where("id = ?", id).Take(&quotation).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}
