package export

import (
	"testing"
	"time"

	"github.com/cstore-data/audit/internal/core"
)

func sampleReport() *core.Report {
	report := &core.Report{
		RunID:       "test-run",
		GeneratedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DataVolume: map[string]core.TableVolume{
			core.DatasetStores:           {Rows: 12},
			core.DatasetTransactionItems: {Error: "missing file"},
		},
	}
	report.Duplicates.StoreIDs = &core.DuplicateIDSummary{HasDuplicates: true, Count: 2}
	report.ReferentialIntegrity.OrphanedStoreIDs = 3
	report.Consistency.InvalidScanTypeValues = []string{"BOGUS"}
	report.MissingData.TransactionItems = map[string]float64{"gtin": 25.0}
	return report
}

// ----------------------------------------------------------------------------
// ReportWorkbook Tests
// ----------------------------------------------------------------------------

func TestReportWorkbookSheets(t *testing.T) {
	f, err := ReportWorkbook(sampleReport())
	if err != nil {
		t.Fatalf("ReportWorkbook() error: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{summarySheet, missingSheet, volumeSheet} {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil {
			t.Fatal(err)
		}
		if idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}
}

func TestReportWorkbookSummaryValues(t *testing.T) {
	f, err := ReportWorkbook(sampleReport())
	if err != nil {
		t.Fatalf("ReportWorkbook() error: %v", err)
	}
	defer f.Close()

	runID, err := f.GetCellValue(summarySheet, "B1")
	if err != nil {
		t.Fatal(err)
	}
	if runID != "test-run" {
		t.Errorf("B1 = %q, want run id", runID)
	}

	rows, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if !containsRow(rows, "Orphaned Store IDs", "3") {
		t.Error("summary missing the orphaned store count")
	}
	if !containsRow(rows, "Invalid Scan Type Values", "BOGUS") {
		t.Error("summary missing the invalid scan type values")
	}
	if !containsRow(rows, "Transaction Set IDs", "unavailable") {
		t.Error("summary should mark a missing duplicate summary as unavailable")
	}
}

func TestReportWorkbookVolumeValues(t *testing.T) {
	f, err := ReportWorkbook(sampleReport())
	if err != nil {
		t.Fatalf("ReportWorkbook() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(volumeSheet)
	if err != nil {
		t.Fatal(err)
	}
	if !containsRow(rows, core.DatasetStores, "12") {
		t.Error("volume sheet missing store row count")
	}
	if !containsRow(rows, core.DatasetTransactionItems, "0", "missing file") {
		t.Error("volume sheet missing the load error")
	}
}

func TestReportWorkbookMissingDataValues(t *testing.T) {
	f, err := ReportWorkbook(sampleReport())
	if err != nil {
		t.Fatalf("ReportWorkbook() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(missingSheet)
	if err != nil {
		t.Fatal(err)
	}
	if !containsRow(rows, "transaction_items", "gtin", "25") {
		t.Error("missing-data sheet lacks the gtin percentage")
	}
}

// containsRow reports whether any sheet row starts with the given cells.
func containsRow(rows [][]string, prefix ...string) bool {
	for _, row := range rows {
		if len(row) < len(prefix) {
			continue
		}
		match := true
		for i, want := range prefix {
			if row[i] != want {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
