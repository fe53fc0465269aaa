package core

// checks.go implements the value-range, consistency, business-rule, and
// missing-data checks.
//
// Every check is independent and side-effect-free. Null cells follow the
// source system's conventions: a null amount is skipped by range checks, a
// null subtotal or tax counts as zero in the total reconciliation, and a
// null unit price or quantity defaults to 0 and 1 respectively in the
// discount bound. Zero-row inputs return zero counts, never errors.

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValueRangeFindings holds numeric and temporal range violations on
// transaction items.
type ValueRangeFindings struct {
	NegativeItemAmounts     int `json:"negative_item_amounts"`
	NegativeQuantities      int `json:"negative_quantities"`
	ExtremeAmountOutliers   int `json:"extreme_amount_outliers"`
	ExtremeQuantityOutliers int `json:"extreme_quantity_outliers"`
	FutureDates             int `json:"future_dates"`
	DatesBeforeMinimum      int `json:"dates_before_minimum"`
}

// CheckValueRanges flags negative amounts and quantities, extreme outliers
// (amount above MaxReasonableAmount, quantity above MaxReasonableQuantity),
// and timestamps outside [MinOperationalDate, now]. Outliers are flagged,
// never excluded. now is passed in so a run is internally consistent and
// tests are deterministic.
func CheckValueRanges(items []TransactionItem, now time.Time) ValueRangeFindings {
	var findings ValueRangeFindings

	for _, item := range items {
		if item.GrandTotalAmount.Valid {
			if item.GrandTotalAmount.Decimal.IsNegative() {
				findings.NegativeItemAmounts++
			}
			if item.GrandTotalAmount.Decimal.GreaterThan(MaxReasonableAmount) {
				findings.ExtremeAmountOutliers++
			}
		}
		if item.UnitQuantity.Valid {
			if item.UnitQuantity.Decimal.IsNegative() {
				findings.NegativeQuantities++
			}
			if item.UnitQuantity.Decimal.GreaterThan(MaxReasonableQuantity) {
				findings.ExtremeQuantityOutliers++
			}
		}
		if item.DateTime != nil {
			if item.DateTime.After(now) {
				findings.FutureDates++
			}
			if item.DateTime.Before(MinOperationalDate) {
				findings.DatesBeforeMinimum++
			}
		}
	}

	return findings
}

// ConsistencyFindings holds categorical-domain results across the tables.
type ConsistencyFindings struct {
	// InvalidScanTypes counts items whose scan_type is outside the accepted
	// domain; InvalidScanTypeValues lists the offending values verbatim for
	// diagnosis, deduplicated and sorted.
	InvalidScanTypes      int      `json:"invalid_scan_types"`
	InvalidScanTypeValues []string `json:"invalid_scan_type_values,omitempty"`

	// PaymentTypesFound inventories the distinct non-null payment types seen
	// on transaction sets, sorted.
	PaymentTypesFound []string `json:"payment_types_found"`

	// NonTargetStores counts stores whose city is outside the configured
	// target-city list. Zero when no target cities are configured.
	NonTargetStores int `json:"non_target_stores"`

	// InvalidPOSTypeIDs counts transaction sets whose pos_type_id falls
	// outside [MinPOSTypeID, MaxPOSTypeID]. Null ids are not counted.
	InvalidPOSTypeIDs int `json:"invalid_pos_type_ids"`
}

// CheckConsistency validates the categorical domains: scan_type on items,
// pos_type_id on transaction sets, payment type inventory, and store cities
// against the target list (case-insensitive).
func CheckConsistency(items []TransactionItem, sets []TransactionSet, stores []Store, targetCities []string) ConsistencyFindings {
	var findings ConsistencyFindings

	validScan := make(map[string]struct{}, len(ValidScanTypes))
	for _, st := range ValidScanTypes {
		validScan[st] = struct{}{}
	}

	invalidValues := make(map[string]struct{})
	for _, item := range items {
		if _, ok := validScan[item.ScanType]; !ok {
			findings.InvalidScanTypes++
			invalidValues[item.ScanType] = struct{}{}
		}
	}
	for v := range invalidValues {
		findings.InvalidScanTypeValues = append(findings.InvalidScanTypeValues, v)
	}
	sort.Strings(findings.InvalidScanTypeValues)

	paymentTypes := make(map[string]struct{})
	for _, set := range sets {
		if set.PaymentType != "" {
			paymentTypes[set.PaymentType] = struct{}{}
		}
		if set.POSTypeID != nil && (*set.POSTypeID < MinPOSTypeID || *set.POSTypeID > MaxPOSTypeID) {
			findings.InvalidPOSTypeIDs++
		}
	}
	for pt := range paymentTypes {
		findings.PaymentTypesFound = append(findings.PaymentTypesFound, pt)
	}
	sort.Strings(findings.PaymentTypesFound)

	if len(targetCities) > 0 {
		target := make(map[string]struct{}, len(targetCities))
		for _, c := range targetCities {
			target[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
		}
		for _, s := range stores {
			if _, ok := target[strings.ToLower(strings.TrimSpace(s.City))]; !ok {
				findings.NonTargetStores++
			}
		}
	}

	return findings
}

// BusinessLogicFindings holds cross-column arithmetic violations.
type BusinessLogicFindings struct {
	// TotalMismatches counts transaction sets where |grand_total -
	// (subtotal + tax)| exceeds TotalTolerance. Null subtotal or tax counts
	// as zero; a set with a null grand total is skipped.
	TotalMismatches int `json:"total_mismatches"`

	// ExcessiveDiscounts counts items whose discount exceeds unit_price x
	// unit_quantity. Null price defaults to 0, null quantity to 1; items
	// with a null discount are skipped.
	ExcessiveDiscounts int `json:"excessive_discounts"`
}

// CheckBusinessLogic reconciles basket totals and bounds item discounts.
// A difference of exactly TotalTolerance is accepted.
func CheckBusinessLogic(items []TransactionItem, sets []TransactionSet) BusinessLogicFindings {
	var findings BusinessLogicFindings

	for _, set := range sets {
		if !set.GrandTotal.Valid {
			continue
		}
		calculated := orZero(set.Subtotal).Add(orZero(set.Tax))
		diff := set.GrandTotal.Decimal.Sub(calculated).Abs()
		if diff.GreaterThan(TotalTolerance) {
			findings.TotalMismatches++
		}
	}

	one := decimal.NewFromInt(1)
	for _, item := range items {
		if !item.DiscountAmount.Valid {
			continue
		}
		quantity := one
		if item.UnitQuantity.Valid {
			quantity = item.UnitQuantity.Decimal
		}
		itemValue := orZero(item.UnitPrice).Mul(quantity)
		if item.DiscountAmount.Decimal.GreaterThan(itemValue) {
			findings.ExcessiveDiscounts++
		}
	}

	return findings
}

// orZero returns the decimal value, or zero when null.
func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Decimal{}
}

// FieldProbes maps canonical column names (lowercase) to null tests for one
// record type. The probe maps below mirror the columns declared in
// internal/schema.
type FieldProbes[T any] map[string]func(T) bool

// MissingData reports the percentage of null values per critical field.
// Field names are matched case-insensitively against the probe map; a field
// with no probe is reported as 100% missing (total absence of information,
// not an error). Zero rows yield an empty result.
func MissingData[T any](rows []T, probes FieldProbes[T], critical []string) map[string]float64 {
	percentages := make(map[string]float64, len(critical))
	if len(rows) == 0 {
		return percentages
	}

	for _, field := range critical {
		probe, ok := probes[strings.ToLower(field)]
		if !ok {
			percentages[field] = 100.0
			continue
		}
		nulls := 0
		for _, row := range rows {
			if probe(row) {
				nulls++
			}
		}
		percentages[field] = float64(nulls) / float64(len(rows)) * 100
	}

	return percentages
}

// ItemFieldProbes covers the transaction-item columns probed for missing data.
var ItemFieldProbes = FieldProbes[TransactionItem]{
	"transaction_item_id": func(i TransactionItem) bool { return i.TransactionItemID == "" },
	"transaction_set_id":  func(i TransactionItem) bool { return i.TransactionSetID == "" },
	"store_id":            func(i TransactionItem) bool { return i.StoreID == "" },
	"gtin":                func(i TransactionItem) bool { return i.GTIN == "" },
	"scan_type":           func(i TransactionItem) bool { return i.ScanType == "" },
	"unit_price":          func(i TransactionItem) bool { return !i.UnitPrice.Valid },
	"unit_quantity":       func(i TransactionItem) bool { return !i.UnitQuantity.Valid },
	"discount_amount":     func(i TransactionItem) bool { return !i.DiscountAmount.Valid },
	"grand_total_amount":  func(i TransactionItem) bool { return !i.GrandTotalAmount.Valid },
	"date_time":           func(i TransactionItem) bool { return i.DateTime == nil },
}

// SetFieldProbes covers the transaction-set columns probed for missing data.
var SetFieldProbes = FieldProbes[TransactionSet]{
	"transaction_set_id": func(s TransactionSet) bool { return s.TransactionSetID == "" },
	"store_id":           func(s TransactionSet) bool { return s.StoreID == "" },
	"date_time":          func(s TransactionSet) bool { return s.DateTime == nil },
	"subtotal_amount":    func(s TransactionSet) bool { return !s.Subtotal.Valid },
	"tax_amount":         func(s TransactionSet) bool { return !s.Tax.Valid },
	"grand_total_amount": func(s TransactionSet) bool { return !s.GrandTotal.Valid },
	"payment_type":       func(s TransactionSet) bool { return s.PaymentType == "" },
	"pos_type_id":        func(s TransactionSet) bool { return s.POSTypeID == nil },
}

// PaymentFieldProbes covers the payment columns probed for missing data.
var PaymentFieldProbes = FieldProbes[Payment]{
	"payment_id":         func(p Payment) bool { return p.PaymentID == "" },
	"transaction_set_id": func(p Payment) bool { return p.TransactionSetID == "" },
	"store_id":           func(p Payment) bool { return p.StoreID == "" },
	"payment_type":       func(p Payment) bool { return p.PaymentType == "" },
	"amount":             func(p Payment) bool { return !p.Amount.Valid },
	"date_time":          func(p Payment) bool { return p.DateTime == nil },
}

// DiscountFieldProbes covers the discount columns probed for missing data.
var DiscountFieldProbes = FieldProbes[Discount]{
	"discount_id":         func(d Discount) bool { return d.DiscountID == "" },
	"transaction_item_id": func(d Discount) bool { return d.TransactionItemID == "" },
	"store_id":            func(d Discount) bool { return d.StoreID == "" },
	"amount":              func(d Discount) bool { return !d.Amount.Valid },
	"date_time":           func(d Discount) bool { return d.DateTime == nil },
}

// DuplicateIDSummary summarizes duplicate primary keys in one table. Count is
// the number of rows that share a duplicated id (all involved rows, not just
// the extras).
type DuplicateIDSummary struct {
	HasDuplicates bool `json:"has_duplicates"`
	Count         int  `json:"count"`
}

// SummarizeDuplicateIDs counts rows whose id occurs more than once.
func SummarizeDuplicateIDs(ids []string) DuplicateIDSummary {
	occurrences := make(map[string]int, len(ids))
	for _, id := range ids {
		occurrences[id]++
	}

	var summary DuplicateIDSummary
	for _, id := range ids {
		if occurrences[id] > 1 {
			summary.Count++
		}
	}
	summary.HasDuplicates = summary.Count > 0
	return summary
}
