package dataset

// filter.go narrows a source to the configured store footprint. Stores
// outside the target cities are dropped, and the transactional tables are
// trimmed to the store ids that survive. The product master is footprint
// independent and passes through untouched.
//
// Filtering happens at the source boundary so the validation engine always
// sees a coherent snapshot; the engine itself never filters.

import (
	"context"
	"strings"

	"github.com/cstore-data/audit/internal/core"
)

// FilteredSource wraps a Source and restricts it to stores in the given
// cities. City matching is case-insensitive and ignores surrounding
// whitespace. An empty city list disables filtering entirely.
//
// Wrap a CachedSource rather than a raw source: every transactional table
// load consults the store table for the surviving ids.
type FilteredSource struct {
	src    core.Source
	cities map[string]struct{}
}

// NewFilteredSource restricts src to stores in targetCities.
func NewFilteredSource(src core.Source, targetCities []string) *FilteredSource {
	cities := make(map[string]struct{}, len(targetCities))
	for _, c := range targetCities {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cities[c] = struct{}{}
		}
	}
	return &FilteredSource{src: src, cities: cities}
}

func (f *FilteredSource) active() bool { return len(f.cities) > 0 }

func (f *FilteredSource) inFootprint(city string) bool {
	_, ok := f.cities[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

// storeIDs loads the store table and returns the ids inside the footprint.
func (f *FilteredSource) storeIDs(ctx context.Context) (map[string]struct{}, error) {
	stores, err := f.Stores(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(stores))
	for _, s := range stores {
		ids[s.StoreID] = struct{}{}
	}
	return ids, nil
}

func (f *FilteredSource) Stores(ctx context.Context) ([]core.Store, error) {
	rows, err := f.src.Stores(ctx)
	if err != nil || !f.active() {
		return rows, err
	}
	kept := make([]core.Store, 0, len(rows))
	for _, s := range rows {
		if f.inFootprint(s.City) {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

func (f *FilteredSource) TransactionSets(ctx context.Context) ([]core.TransactionSet, error) {
	rows, err := f.src.TransactionSets(ctx)
	if err != nil || !f.active() {
		return rows, err
	}
	ids, err := f.storeIDs(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]core.TransactionSet, 0, len(rows))
	for _, r := range rows {
		if _, ok := ids[r.StoreID]; ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func (f *FilteredSource) TransactionItems(ctx context.Context) ([]core.TransactionItem, error) {
	rows, err := f.src.TransactionItems(ctx)
	if err != nil || !f.active() {
		return rows, err
	}
	ids, err := f.storeIDs(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]core.TransactionItem, 0, len(rows))
	for _, r := range rows {
		if _, ok := ids[r.StoreID]; ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func (f *FilteredSource) Products(ctx context.Context) ([]core.Product, error) {
	return f.src.Products(ctx)
}

func (f *FilteredSource) Payments(ctx context.Context) ([]core.Payment, error) {
	rows, err := f.src.Payments(ctx)
	if err != nil || !f.active() {
		return rows, err
	}
	ids, err := f.storeIDs(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]core.Payment, 0, len(rows))
	for _, r := range rows {
		if _, ok := ids[r.StoreID]; ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func (f *FilteredSource) Discounts(ctx context.Context) ([]core.Discount, error) {
	rows, err := f.src.Discounts(ctx)
	if err != nil || !f.active() {
		return rows, err
	}
	ids, err := f.storeIDs(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]core.Discount, 0, len(rows))
	for _, r := range rows {
		if _, ok := ids[r.StoreID]; ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

var _ core.Source = (*FilteredSource)(nil)
