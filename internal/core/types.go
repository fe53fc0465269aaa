package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Scan type domain for transaction items. Any other value is a categorical
// domain violation.
const (
	ScanTypeGTIN    = "GTIN"    // barcode scan
	ScanTypePLU     = "PLU"     // price lookup code
	ScanTypeFmtErr  = "FMT_ERR" // scanned but unparseable
	ScanTypeNonScan = "NONSCAN" // fuel and non-catalog items, no GTIN expected
)

// ValidScanTypes lists the accepted scan_type values in canonical order.
var ValidScanTypes = []string{ScanTypeGTIN, ScanTypePLU, ScanTypeFmtErr, ScanTypeNonScan}

// Fixed validation thresholds.
var (
	// MaxReasonableAmount flags extreme line-item amounts (flagged, not excluded).
	MaxReasonableAmount = decimal.NewFromInt(10000)

	// MaxReasonableQuantity flags extreme unit quantities.
	MaxReasonableQuantity = decimal.NewFromInt(1000)

	// TotalTolerance is the permitted rounding difference between grand_total
	// and subtotal+tax. A difference of exactly one cent is accepted.
	TotalTolerance = decimal.RequireFromString("0.01")

	// MinOperationalDate is the earliest plausible transaction timestamp.
	// Anything strictly earlier is flagged.
	MinOperationalDate = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// POS type id domain for transaction sets.
const (
	MinPOSTypeID = 1
	MaxPOSTypeID = 4
)

// Store is one row of the store master table. StoreID is an opaque external
// key: it is kept as a string even when numeric-looking so joins against the
// transactional tables can never fail on a type mismatch.
type Store struct {
	StoreID       string              `json:"store_id"`
	Name          string              `json:"name,omitempty"`
	Chain         string              `json:"chain,omitempty"`
	StreetAddress string              `json:"street_address,omitempty"`
	City          string              `json:"city,omitempty"`
	State         string              `json:"state,omitempty"`
	Zip           string              `json:"zip,omitempty"`
	Latitude      decimal.NullDecimal `json:"lat"`
	Longitude     decimal.NullDecimal `json:"lon"`
	CreatedAt     *time.Time          `json:"created_at,omitempty"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
}

// TransactionSet is one basket-level row.
type TransactionSet struct {
	TransactionSetID string              `json:"transaction_set_id"`
	StoreID          string              `json:"store_id"`
	DateTime         *time.Time          `json:"date_time,omitempty"`
	Subtotal         decimal.NullDecimal `json:"subtotal_amount"`
	Tax              decimal.NullDecimal `json:"tax_amount"`
	GrandTotal       decimal.NullDecimal `json:"grand_total_amount"`
	PaymentType      string              `json:"payment_type,omitempty"`
	POSTypeID        *int64              `json:"pos_type_id,omitempty"`
}

// TransactionItem is one line-item row. GTIN is empty for items that were
// never scanned; ScanType says how the item was captured.
type TransactionItem struct {
	TransactionItemID string              `json:"transaction_item_id"`
	TransactionSetID  string              `json:"transaction_set_id"`
	StoreID           string              `json:"store_id"`
	GTIN              string              `json:"gtin,omitempty"`
	ScanType          string              `json:"scan_type"`
	UnitPrice         decimal.NullDecimal `json:"unit_price"`
	UnitQuantity      decimal.NullDecimal `json:"unit_quantity"`
	DiscountAmount    decimal.NullDecimal `json:"discount_amount"`
	GrandTotalAmount  decimal.NullDecimal `json:"grand_total_amount"`
	DateTime          *time.Time          `json:"date_time,omitempty"`
}

// Product is one row of the product master, keyed by GTIN. Referenced by
// transaction items, never owned by them.
type Product struct {
	GTIN        string `json:"gtin"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
}

// Payment is one row of the payments table.
type Payment struct {
	PaymentID        string              `json:"payment_id"`
	TransactionSetID string              `json:"transaction_set_id"`
	StoreID          string              `json:"store_id"`
	PaymentType      string              `json:"payment_type,omitempty"`
	Amount           decimal.NullDecimal `json:"amount"`
	DateTime         *time.Time          `json:"date_time,omitempty"`
}

// Discount is one row of the discounts table.
type Discount struct {
	DiscountID        string              `json:"discount_id"`
	TransactionItemID string              `json:"transaction_item_id"`
	StoreID           string              `json:"store_id"`
	Description       string              `json:"description,omitempty"`
	Amount            decimal.NullDecimal `json:"amount"`
	DateTime          *time.Time          `json:"date_time,omitempty"`
}

// Source supplies immutable table snapshots for one validation run.
// Implementations own all I/O and caching; the engine never mutates what a
// Source returns. A failed load is reported per table so the runner can
// degrade the affected report sections instead of aborting.
type Source interface {
	Stores(ctx context.Context) ([]Store, error)
	TransactionSets(ctx context.Context) ([]TransactionSet, error)
	TransactionItems(ctx context.Context) ([]TransactionItem, error)
	Products(ctx context.Context) ([]Product, error)
	Payments(ctx context.Context) ([]Payment, error)
	Discounts(ctx context.Context) ([]Discount, error)
}
