package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cstore-data/audit/internal/schema"
)

// DatasetInfo describes one registered source table.
type DatasetInfo struct {
	Key     string          `json:"key"`     // Unique identifier: "transaction_items"
	Label   string          `json:"label"`   // Display name: "Transaction Items"
	Columns []schema.Column `json:"columns"` // Expected column layout
}

var (
	registry   = make(map[string]DatasetInfo)
	registryMu sync.RWMutex
)

// RegisterDataset adds a dataset descriptor to the registry.
// Panics if a dataset with the same key is already registered.
func RegisterDataset(info DatasetInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[info.Key]; exists {
		panic(fmt.Sprintf("dataset already registered: %s", info.Key))
	}

	registry[info.Key] = info
}

// Dataset returns a dataset descriptor by key.
// Returns false if not found.
func Dataset(key string) (DatasetInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	info, ok := registry[key]
	return info, ok
}

// Datasets returns all registered dataset descriptors, sorted by key for
// consistent ordering.
func Datasets() []DatasetInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DatasetInfo, 0, len(registry))
	for _, info := range registry {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// DatasetCount returns the number of registered datasets.
func DatasetCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Dataset keys for the six source tables.
const (
	DatasetStores           = "stores"
	DatasetTransactionSets  = "transaction_sets"
	DatasetTransactionItems = "transaction_items"
	DatasetProducts         = "product_master"
	DatasetPayments         = "payments"
	DatasetDiscounts        = "discounts"
)

func init() {
	RegisterDataset(DatasetInfo{Key: DatasetStores, Label: "Stores", Columns: schema.StoreColumns})
	RegisterDataset(DatasetInfo{Key: DatasetTransactionSets, Label: "Transaction Sets", Columns: schema.TransactionSetColumns})
	RegisterDataset(DatasetInfo{Key: DatasetTransactionItems, Label: "Transaction Items", Columns: schema.TransactionItemColumns})
	RegisterDataset(DatasetInfo{Key: DatasetProducts, Label: "Product Master", Columns: schema.ProductColumns})
	RegisterDataset(DatasetInfo{Key: DatasetPayments, Label: "Payments", Columns: schema.PaymentColumns})
	RegisterDataset(DatasetInfo{Key: DatasetDiscounts, Label: "Discounts", Columns: schema.DiscountColumns})
}
