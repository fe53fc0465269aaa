package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/cstore-data/audit/internal/core"
)

// countingSource counts loads per table and can be told to fail.
type countingSource struct {
	storeLoads int
	itemLoads  int
	fail       bool
}

func (c *countingSource) Stores(context.Context) ([]core.Store, error) {
	if c.fail {
		return nil, errors.New("load failed")
	}
	c.storeLoads++
	return []core.Store{{StoreID: "100"}}, nil
}

func (c *countingSource) TransactionSets(context.Context) ([]core.TransactionSet, error) {
	return nil, nil
}

func (c *countingSource) TransactionItems(context.Context) ([]core.TransactionItem, error) {
	c.itemLoads++
	return []core.TransactionItem{{TransactionItemID: "i1"}}, nil
}

func (c *countingSource) Products(context.Context) ([]core.Product, error)   { return nil, nil }
func (c *countingSource) Payments(context.Context) ([]core.Payment, error)   { return nil, nil }
func (c *countingSource) Discounts(context.Context) ([]core.Discount, error) { return nil, nil }

// ----------------------------------------------------------------------------
// CachedSource Tests
// ----------------------------------------------------------------------------

func TestCachedSourceMemoizes(t *testing.T) {
	src := &countingSource{}
	cached := NewCachedSource(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stores, err := cached.Stores(ctx)
		if err != nil {
			t.Fatalf("Stores() error: %v", err)
		}
		if len(stores) != 1 {
			t.Fatalf("got %d stores, want 1", len(stores))
		}
	}

	if src.storeLoads != 1 {
		t.Errorf("underlying loads = %d, want 1", src.storeLoads)
	}
}

func TestCachedSourceInvalidate(t *testing.T) {
	src := &countingSource{}
	cached := NewCachedSource(src)
	ctx := context.Background()

	cached.Stores(ctx)
	cached.TransactionItems(ctx)

	if !cached.Invalidate(core.DatasetStores) {
		t.Fatal("Invalidate(stores) = false, want true")
	}

	cached.Stores(ctx)
	cached.TransactionItems(ctx)

	if src.storeLoads != 2 {
		t.Errorf("store loads = %d, want 2 after invalidation", src.storeLoads)
	}
	if src.itemLoads != 1 {
		t.Errorf("item loads = %d, want 1; invalidating one table must not touch others", src.itemLoads)
	}
}

func TestCachedSourceInvalidateUnknownKey(t *testing.T) {
	cached := NewCachedSource(&countingSource{})
	if cached.Invalidate("no_such_table") {
		t.Error("Invalidate(unknown) = true, want false")
	}
}

func TestCachedSourceInvalidateAll(t *testing.T) {
	src := &countingSource{}
	cached := NewCachedSource(src)
	ctx := context.Background()

	cached.Stores(ctx)
	cached.TransactionItems(ctx)
	cached.InvalidateAll()
	cached.Stores(ctx)
	cached.TransactionItems(ctx)

	if src.storeLoads != 2 || src.itemLoads != 2 {
		t.Errorf("loads = %d/%d, want 2/2 after InvalidateAll", src.storeLoads, src.itemLoads)
	}
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	src := &countingSource{fail: true}
	cached := NewCachedSource(src)
	ctx := context.Background()

	if _, err := cached.Stores(ctx); err == nil {
		t.Fatal("Stores() error = nil, want load failure")
	}

	// Once the source recovers, the next call succeeds without invalidation.
	src.fail = false
	stores, err := cached.Stores(ctx)
	if err != nil {
		t.Fatalf("Stores() after recovery error: %v", err)
	}
	if len(stores) != 1 {
		t.Errorf("got %d stores, want 1", len(stores))
	}
}
