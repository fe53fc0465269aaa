package core

// integrity.go verifies foreign-key-like relationships between the
// transactional tables, the canonical store set, and the product master.
//
// Findings are counts, not errors: a run over tables with orphaned
// references still succeeds and reports what it found. Empty inputs yield
// zero counts.

// IntegrityFindings holds the referential-integrity counts for one run.
type IntegrityFindings struct {
	// OrphanedStoreIDs counts transaction items whose store_id is not in
	// the canonical store set.
	OrphanedStoreIDs int `json:"orphaned_store_ids"`

	// OrphanedGTINs counts scanned items (scan_type other than NONSCAN)
	// whose GTIN is absent from the product master. NONSCAN items are
	// exempt: fuel and non-catalog items legitimately have no master record.
	OrphanedGTINs int `json:"orphaned_gtins"`
}

// CheckReferentialIntegrity verifies that every transaction item points at a
// canonical store and, for scanned items, at a known product. Read-only;
// never fails.
func CheckReferentialIntegrity(items []TransactionItem, canonical []Store, products []Product) IntegrityFindings {
	var findings IntegrityFindings

	validStores := make(map[string]struct{}, len(canonical))
	for _, s := range canonical {
		validStores[s.StoreID] = struct{}{}
	}

	validGTINs := make(map[string]struct{}, len(products))
	for _, p := range products {
		validGTINs[p.GTIN] = struct{}{}
	}

	for _, item := range items {
		if _, ok := validStores[item.StoreID]; !ok {
			findings.OrphanedStoreIDs++
		}
		if item.ScanType != ScanTypeNonScan {
			if _, ok := validGTINs[item.GTIN]; !ok {
				findings.OrphanedGTINs++
			}
		}
	}

	return findings
}
