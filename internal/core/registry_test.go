package core

import "testing"

// ----------------------------------------------------------------------------
// Dataset Registry Tests
// ----------------------------------------------------------------------------

func TestDatasetRegistryContents(t *testing.T) {
	wantKeys := []string{
		DatasetDiscounts,
		DatasetPayments,
		DatasetProducts,
		DatasetStores,
		DatasetTransactionItems,
		DatasetTransactionSets,
	}

	all := Datasets()
	if len(all) != len(wantKeys) {
		t.Fatalf("Datasets() returned %d entries, want %d", len(all), len(wantKeys))
	}

	for _, key := range wantKeys {
		info, ok := Dataset(key)
		if !ok {
			t.Errorf("Dataset(%q) not found", key)
			continue
		}
		if info.Label == "" {
			t.Errorf("Dataset(%q) has empty label", key)
		}
		if len(info.Columns) == 0 {
			t.Errorf("Dataset(%q) has no columns", key)
		}
	}
}

func TestDatasetsSortedByKey(t *testing.T) {
	all := Datasets()
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("Datasets() not sorted: %q before %q", all[i-1].Key, all[i].Key)
		}
	}
}

func TestDatasetUnknownKey(t *testing.T) {
	if _, ok := Dataset("no_such_table"); ok {
		t.Error("Dataset() found an unregistered key")
	}
}

func TestRegisterDatasetDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	RegisterDataset(DatasetInfo{Key: DatasetStores, Label: "Stores Again"})
}
