package dataset

// cache.go memoizes table loads so one snapshot serves both the report run
// and the store endpoints. A failed load is never cached: the next call
// retries the underlying source, so a transient outage does not poison the
// cache until someone invalidates it.

import (
	"context"
	"sync"

	"github.com/cstore-data/audit/internal/core"
)

// memo holds one table's cached rows. Loads under the same memo are
// serialized; distinct tables load independently.
type memo[T any] struct {
	mu     sync.Mutex
	loaded bool
	rows   []T
}

func (m *memo[T]) get(ctx context.Context, load func(context.Context) ([]T, error)) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.rows, nil
	}
	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}
	m.rows = rows
	m.loaded = true
	return rows, nil
}

func (m *memo[T]) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = false
	m.rows = nil
}

// CachedSource wraps a Source and caches each table after its first
// successful load. Callers must treat returned slices as immutable; the
// cache hands out the same backing array every time.
type CachedSource struct {
	src core.Source

	stores    memo[core.Store]
	sets      memo[core.TransactionSet]
	items     memo[core.TransactionItem]
	products  memo[core.Product]
	payments  memo[core.Payment]
	discounts memo[core.Discount]
}

// NewCachedSource wraps src with per-table memoization.
func NewCachedSource(src core.Source) *CachedSource {
	return &CachedSource{src: src}
}

func (c *CachedSource) Stores(ctx context.Context) ([]core.Store, error) {
	return c.stores.get(ctx, c.src.Stores)
}

func (c *CachedSource) TransactionSets(ctx context.Context) ([]core.TransactionSet, error) {
	return c.sets.get(ctx, c.src.TransactionSets)
}

func (c *CachedSource) TransactionItems(ctx context.Context) ([]core.TransactionItem, error) {
	return c.items.get(ctx, c.src.TransactionItems)
}

func (c *CachedSource) Products(ctx context.Context) ([]core.Product, error) {
	return c.products.get(ctx, c.src.Products)
}

func (c *CachedSource) Payments(ctx context.Context) ([]core.Payment, error) {
	return c.payments.get(ctx, c.src.Payments)
}

func (c *CachedSource) Discounts(ctx context.Context) ([]core.Discount, error) {
	return c.discounts.get(ctx, c.src.Discounts)
}

// Invalidate drops the cached snapshot for one dataset key. Returns false
// for a key that is not a registered dataset.
func (c *CachedSource) Invalidate(key string) bool {
	switch key {
	case core.DatasetStores:
		c.stores.invalidate()
	case core.DatasetTransactionSets:
		c.sets.invalidate()
	case core.DatasetTransactionItems:
		c.items.invalidate()
	case core.DatasetProducts:
		c.products.invalidate()
	case core.DatasetPayments:
		c.payments.invalidate()
	case core.DatasetDiscounts:
		c.discounts.invalidate()
	default:
		return false
	}
	return true
}

// InvalidateAll drops every cached snapshot.
func (c *CachedSource) InvalidateAll() {
	c.stores.invalidate()
	c.sets.invalidate()
	c.items.invalidate()
	c.products.invalidate()
	c.payments.invalidate()
	c.discounts.invalidate()
}
