package core

import "testing"

// ----------------------------------------------------------------------------
// CheckReferentialIntegrity Tests
// ----------------------------------------------------------------------------

func TestCheckReferentialIntegrity(t *testing.T) {
	canonical := []Store{{StoreID: "100"}, {StoreID: "200"}}
	products := []Product{{GTIN: "0001"}, {GTIN: "0002"}}

	tests := []struct {
		name             string
		items            []TransactionItem
		wantOrphanStores int
		wantOrphanGTINs  int
	}{
		{
			name: "all references valid",
			items: []TransactionItem{
				{StoreID: "100", GTIN: "0001", ScanType: ScanTypeGTIN},
				{StoreID: "200", GTIN: "0002", ScanType: ScanTypeGTIN},
			},
		},
		{
			name: "orphaned store id",
			items: []TransactionItem{
				{StoreID: "999", GTIN: "0001", ScanType: ScanTypeGTIN},
			},
			wantOrphanStores: 1,
		},
		{
			name: "orphaned gtin on scanned item",
			items: []TransactionItem{
				{StoreID: "100", GTIN: "9999", ScanType: ScanTypeGTIN},
			},
			wantOrphanGTINs: 1,
		},
		{
			name: "nonscan items exempt from gtin check",
			items: []TransactionItem{
				{StoreID: "100", GTIN: "", ScanType: ScanTypeNonScan},
				{StoreID: "100", GTIN: "9999", ScanType: ScanTypeNonScan},
			},
		},
		{
			name: "plu and fmt_err items are not exempt",
			items: []TransactionItem{
				{StoreID: "100", GTIN: "", ScanType: ScanTypePLU},
				{StoreID: "100", GTIN: "", ScanType: ScanTypeFmtErr},
			},
			wantOrphanGTINs: 2,
		},
		{
			name: "one item can be orphaned both ways",
			items: []TransactionItem{
				{StoreID: "999", GTIN: "9999", ScanType: ScanTypeGTIN},
			},
			wantOrphanStores: 1,
			wantOrphanGTINs:  1,
		},
		{
			name: "no items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckReferentialIntegrity(tt.items, canonical, products)
			if got.OrphanedStoreIDs != tt.wantOrphanStores {
				t.Errorf("OrphanedStoreIDs = %d, want %d", got.OrphanedStoreIDs, tt.wantOrphanStores)
			}
			if got.OrphanedGTINs != tt.wantOrphanGTINs {
				t.Errorf("OrphanedGTINs = %d, want %d", got.OrphanedGTINs, tt.wantOrphanGTINs)
			}
		})
	}
}

func TestCheckReferentialIntegrityEmptyMasters(t *testing.T) {
	// With empty canonical and product sets, every item is orphaned on
	// store_id and every scanned item on GTIN.
	items := []TransactionItem{
		{StoreID: "1", GTIN: "a", ScanType: ScanTypeGTIN},
		{StoreID: "2", GTIN: "", ScanType: ScanTypeNonScan},
	}

	got := CheckReferentialIntegrity(items, nil, nil)

	if got.OrphanedStoreIDs != 2 {
		t.Errorf("OrphanedStoreIDs = %d, want 2", got.OrphanedStoreIDs)
	}
	if got.OrphanedGTINs != 1 {
		t.Errorf("OrphanedGTINs = %d, want 1", got.OrphanedGTINs)
	}
}
