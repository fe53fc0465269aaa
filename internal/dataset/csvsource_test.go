package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cstore-data/audit/internal/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testSource(t *testing.T, dir string) *CSVSource {
	t.Helper()
	return NewCSVSource(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ----------------------------------------------------------------------------
// CSVSource Tests
// ----------------------------------------------------------------------------

func TestCSVSourceStores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stores.csv"),
		"store_id,name,street_address,city,lat,lon,created_at,updated_at\n"+
			"100,Gas N Go,123 Main St,Rigby,43.67,-111.91,2023-01-01,2024-06-01\n"+
			"200,Quick Stop,456 Oak Ave,Ririe,,,2022-05-01,\n")

	stores, err := testSource(t, dir).Stores(context.Background())
	if err != nil {
		t.Fatalf("Stores() error: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("got %d stores, want 2", len(stores))
	}

	s := stores[0]
	if s.StoreID != "100" || s.Name != "Gas N Go" || s.City != "Rigby" {
		t.Errorf("first store = %+v", s)
	}
	if !s.Latitude.Valid || s.Latitude.Decimal.String() != "43.67" {
		t.Errorf("latitude = %+v, want 43.67", s.Latitude)
	}
	if s.CreatedAt == nil || s.UpdatedAt == nil {
		t.Error("timestamps not parsed")
	}

	if stores[1].Latitude.Valid {
		t.Error("empty lat cell should be null")
	}
	if stores[1].UpdatedAt != nil {
		t.Error("empty updated_at cell should be nil")
	}
}

func TestCSVSourceTransactionItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "transaction_items.csv"),
		"transaction_item_id,transaction_set_id,store_id,gtin,scan_type,unit_price,unit_quantity,discount_amount,grand_total_amount,date_time\n"+
			"i1,s1,100,0001,GTIN,$1.99,2,,3.98,2024-03-01 10:00:00\n")

	items, err := testSource(t, dir).TransactionItems(context.Background())
	if err != nil {
		t.Fatalf("TransactionItems() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.ScanType != core.ScanTypeGTIN {
		t.Errorf("scan type = %q", item.ScanType)
	}
	if !item.UnitPrice.Valid || item.UnitPrice.Decimal.String() != "1.99" {
		t.Errorf("unit price = %+v, want 1.99 with currency symbol stripped", item.UnitPrice)
	}
	if item.DiscountAmount.Valid {
		t.Error("empty discount cell should be null")
	}
	if item.DateTime == nil {
		t.Error("date_time not parsed")
	}
}

func TestCSVSourceCaseInsensitiveHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "product_master.csv"),
		"GTIN,Description,Brand,Category,Subcategory\n0001,Cola 12oz,Acme,Beverage,Soda\n")

	products, err := testSource(t, dir).Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if len(products) != 1 || products[0].GTIN != "0001" || products[0].Brand != "Acme" {
		t.Errorf("products = %+v", products)
	}
}

func TestCSVSourceMissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stores.csv"), "name,city\nGas N Go,Rigby\n")

	_, err := testSource(t, dir).Stores(context.Background())
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Stores() error = %v, want ErrMissingColumn", err)
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := testSource(t, t.TempDir()).Payments(context.Background())
	if err == nil {
		t.Fatal("Payments() error = nil, want missing file error")
	}
}

func TestCSVSourcePartitionedTable(t *testing.T) {
	dir := t.TempDir()
	header := "transaction_item_id,transaction_set_id,store_id,gtin,scan_type,grand_total_amount,date_time\n"
	writeFile(t, filepath.Join(dir, "transaction_items", "part-002.csv"), header+"i3,s2,200,0003,PLU,2.50,2024-03-02\n")
	writeFile(t, filepath.Join(dir, "transaction_items", "part-001.csv"), header+"i1,s1,100,0001,GTIN,1.00,2024-03-01\ni2,s1,100,0002,GTIN,1.50,2024-03-01\n")

	items, err := testSource(t, dir).TransactionItems(context.Background())
	if err != nil {
		t.Fatalf("TransactionItems() error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 across part files", len(items))
	}
	// Parts are read in name order regardless of creation order.
	if items[0].TransactionItemID != "i1" || items[2].TransactionItemID != "i3" {
		t.Errorf("item order = %q, %q, %q", items[0].TransactionItemID,
			items[1].TransactionItemID, items[2].TransactionItemID)
	}
}

func TestCSVSourceSkipsBlankRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "discounts.csv"),
		"discount_id,transaction_item_id,store_id,amount\nd1,i1,100,1.00\n,,,\n")

	discounts, err := testSource(t, dir).Discounts(context.Background())
	if err != nil {
		t.Fatalf("Discounts() error: %v", err)
	}
	if len(discounts) != 1 {
		t.Errorf("got %d discounts, want 1 with blank row skipped", len(discounts))
	}
}

func TestCSVSourceSkipsBOM(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "product_master.csv"),
		"\xEF\xBB\xBFgtin,description,category\n0001,Cola,Beverage\n")

	products, err := testSource(t, dir).Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if len(products) != 1 || products[0].GTIN != "0001" {
		t.Errorf("products = %+v, want BOM stripped from first header", products)
	}
}

func TestCSVSourceSanitizesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "product_master.csv"),
		"gtin,description,category\n0001,Caf\xFF Blend,Beverage\n")

	products, err := testSource(t, dir).Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if products[0].Description != "Caf? Blend" {
		t.Errorf("description = %q, want invalid byte replaced", products[0].Description)
	}
}

func TestCSVSourceEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stores.csv"), "")

	if _, err := testSource(t, dir).Stores(context.Background()); err == nil {
		t.Fatal("Stores() error = nil, want empty file error")
	}
}
