// Package export renders a validation report as an Excel workbook for
// the analysts who review data quality outside the API.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cstore-data/audit/internal/core"
)

const (
	summarySheet = "Summary"
	missingSheet = "Missing Data"
	volumeSheet  = "Data Volume"
)

// ReportWorkbook renders the report into a three-sheet workbook: section
// findings, missing-data percentages, and per-table volumes. The caller owns
// the returned file and is responsible for writing or closing it.
func ReportWorkbook(report *core.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)

	if err := writeSummary(f, report); err != nil {
		return nil, err
	}
	if err := writeMissingData(f, report); err != nil {
		return nil, err
	}
	if err := writeVolumes(f, report); err != nil {
		return nil, err
	}
	return f, nil
}

// sheetWriter appends rows to one sheet, keeping the first error.
type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string) (*sheetWriter, error) {
	if sheet != summarySheet {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}
	return &sheetWriter{file: f, sheet: sheet}, nil
}

func (w *sheetWriter) writeRow(values ...any) {
	w.row++
	if w.err != nil {
		return
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.file.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
}

func (w *sheetWriter) blankRow() { w.row++ }

func writeSummary(f *excelize.File, report *core.Report) error {
	w, err := newSheetWriter(f, summarySheet)
	if err != nil {
		return err
	}

	w.writeRow("Run ID", report.RunID)
	w.writeRow("Generated At", report.GeneratedAt.Format(time.RFC3339))
	w.blankRow()

	w.writeRow("Duplicates")
	writeDuplicateRow(w, "Store IDs", report.Duplicates.StoreIDs)
	writeDuplicateRow(w, "Transaction Set IDs", report.Duplicates.TransactionSetIDs)
	writeDuplicateRow(w, "Transaction Item IDs", report.Duplicates.TransactionItemIDs)
	writeSectionError(w, report.Duplicates.Error)
	w.blankRow()

	w.writeRow("Referential Integrity")
	w.writeRow("Orphaned Store IDs", report.ReferentialIntegrity.OrphanedStoreIDs)
	w.writeRow("Orphaned GTINs", report.ReferentialIntegrity.OrphanedGTINs)
	writeSectionError(w, report.ReferentialIntegrity.Error)
	w.blankRow()

	w.writeRow("Value Ranges")
	w.writeRow("Negative Item Amounts", report.ValueRanges.NegativeItemAmounts)
	w.writeRow("Negative Quantities", report.ValueRanges.NegativeQuantities)
	w.writeRow("Extreme Amount Outliers", report.ValueRanges.ExtremeAmountOutliers)
	w.writeRow("Extreme Quantity Outliers", report.ValueRanges.ExtremeQuantityOutliers)
	w.writeRow("Future Dates", report.ValueRanges.FutureDates)
	w.writeRow("Dates Before Minimum", report.ValueRanges.DatesBeforeMinimum)
	writeSectionError(w, report.ValueRanges.Error)
	w.blankRow()

	w.writeRow("Consistency")
	w.writeRow("Invalid Scan Types", report.Consistency.InvalidScanTypes)
	w.writeRow("Invalid Scan Type Values", joinValues(report.Consistency.InvalidScanTypeValues))
	w.writeRow("Payment Types Found", joinValues(report.Consistency.PaymentTypesFound))
	w.writeRow("Non-Target Stores", report.Consistency.NonTargetStores)
	w.writeRow("Invalid POS Type IDs", report.Consistency.InvalidPOSTypeIDs)
	writeSectionError(w, report.Consistency.Error)
	w.blankRow()

	w.writeRow("Business Logic")
	w.writeRow("Total Mismatches", report.BusinessLogic.TotalMismatches)
	w.writeRow("Excessive Discounts", report.BusinessLogic.ExcessiveDiscounts)
	writeSectionError(w, report.BusinessLogic.Error)

	return w.err
}

func writeDuplicateRow(w *sheetWriter, label string, summary *core.DuplicateIDSummary) {
	if summary == nil {
		w.writeRow(label, "unavailable")
		return
	}
	w.writeRow(label, summary.Count)
}

func writeSectionError(w *sheetWriter, marker string) {
	if marker != "" {
		w.writeRow("Error", marker)
	}
}

func writeMissingData(f *excelize.File, report *core.Report) error {
	w, err := newSheetWriter(f, missingSheet)
	if err != nil {
		return err
	}

	w.writeRow("Table", "Field", "Missing %")
	writeMissingTable(w, "transaction_items", report.MissingData.TransactionItems)
	writeMissingTable(w, "transaction_sets", report.MissingData.TransactionSets)
	writeMissingTable(w, "payments", report.MissingData.Payments)
	writeMissingTable(w, "discounts", report.MissingData.Discounts)
	if report.MissingData.Error != "" {
		w.writeRow("Error", report.MissingData.Error)
	}
	return w.err
}

func writeMissingTable(w *sheetWriter, table string, fields map[string]float64) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.writeRow(table, name, fields[name])
	}
}

func writeVolumes(f *excelize.File, report *core.Report) error {
	w, err := newSheetWriter(f, volumeSheet)
	if err != nil {
		return err
	}

	w.writeRow("Table", "Rows", "Error")
	keys := make([]string, 0, len(report.DataVolume))
	for key := range report.DataVolume {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := report.DataVolume[key]
		w.writeRow(key, v.Rows, v.Error)
	}
	return w.err
}

func joinValues(values []string) string {
	return strings.Join(values, ", ")
}
