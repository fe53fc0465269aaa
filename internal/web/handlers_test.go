package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cstore-data/audit/internal/config"
	"github.com/cstore-data/audit/internal/core"
)

// fakeSource serves a small fixed dataset.
type fakeSource struct{}

func timeAt(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func (fakeSource) Stores(context.Context) ([]core.Store, error) {
	return []core.Store{
		{StoreID: "100", StreetAddress: "123 Main St", City: "Rigby", UpdatedAt: timeAt(2024, 1, 1)},
		{StoreID: "200", StreetAddress: "123 main st", City: "Rigby", UpdatedAt: timeAt(2023, 1, 1)},
	}, nil
}

func (fakeSource) TransactionSets(context.Context) ([]core.TransactionSet, error) {
	return []core.TransactionSet{{TransactionSetID: "s1", StoreID: "100", DateTime: timeAt(2024, 3, 1)}}, nil
}

func (fakeSource) TransactionItems(context.Context) ([]core.TransactionItem, error) {
	return []core.TransactionItem{
		{TransactionItemID: "i1", TransactionSetID: "s1", StoreID: "100",
			GTIN: "0001", ScanType: core.ScanTypeGTIN, DateTime: timeAt(2024, 3, 1)},
	}, nil
}

func (fakeSource) Products(context.Context) ([]core.Product, error) {
	return []core.Product{{GTIN: "0001"}}, nil
}

func (fakeSource) Payments(context.Context) ([]core.Payment, error)   { return nil, nil }
func (fakeSource) Discounts(context.Context) ([]core.Discount, error) { return nil, nil }

// fakeCache records invalidation calls.
type fakeCache struct {
	invalidated []string
	all         bool
}

func (c *fakeCache) Invalidate(key string) bool {
	if _, ok := core.Dataset(key); !ok {
		return false
	}
	c.invalidated = append(c.invalidated, key)
	return true
}

func (c *fakeCache) InvalidateAll() { c.all = true }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	return cfg
}

func testServer(t *testing.T, cache Invalidator, cfg *config.Config) *Server {
	t.Helper()
	runner := core.NewRunner(fakeSource{})
	runner.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(runner, cache, cfg)
}

func doRequest(t *testing.T, s *Server, method, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// ----------------------------------------------------------------------------
// Endpoint Tests
// ----------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListTables(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/api/tables", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var tables []core.DatasetInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &tables); err != nil {
		t.Fatal(err)
	}
	if len(tables) != core.DatasetCount() {
		t.Errorf("got %d tables, want %d", len(tables), core.DatasetCount())
	}
}

func TestReportEndpoint(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/api/report", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report core.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.RunID == "" {
		t.Error("report missing run_id")
	}
	if len(report.DataVolume) != core.DatasetCount() {
		t.Errorf("data_volume has %d tables, want %d", len(report.DataVolume), core.DatasetCount())
	}
	// The address collision between stores 100 and 200 surfaces in dedup,
	// so only one canonical store remains and no item is orphaned.
	if report.ReferentialIntegrity.OrphanedStoreIDs != 0 {
		t.Errorf("orphaned store ids = %d, want 0", report.ReferentialIntegrity.OrphanedStoreIDs)
	}
}

func TestReportExportEndpoint(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/api/report/export", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestListStores(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/api/stores", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body storesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	// Stores 100 and 200 share a normalized address; one survives.
	if body.Count != 1 || len(body.Stores) != 1 {
		t.Fatalf("body = %+v, want one canonical store", body)
	}
	if body.Stores[0].StoreID != "100" {
		t.Errorf("canonical store = %q, want the more recent 100", body.Stores[0].StoreID)
	}
}

func TestStoreDuplicates(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/api/stores/duplicates", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body duplicatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.DroppedCount != 1 || len(body.Dropped) != 1 {
		t.Fatalf("body = %+v, want one dropped store", body)
	}
	if body.Dropped[0].Reason != core.DroppedDuplicateAddress {
		t.Errorf("dropped reason = %q", body.Dropped[0].Reason)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := &fakeCache{}
	s := testServer(t, cache, testConfig())

	rec := doRequest(t, s, http.MethodPost, "/api/cache/invalidate/stores", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != core.DatasetStores {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
}

func TestCacheInvalidateUnknownTable(t *testing.T) {
	s := testServer(t, &fakeCache{}, testConfig())
	rec := doRequest(t, s, http.MethodPost, "/api/cache/invalidate/no_such_table", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	cache := &fakeCache{}
	s := testServer(t, cache, testConfig())

	rec := doRequest(t, s, http.MethodPost, "/api/cache/invalidate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !cache.all {
		t.Error("InvalidateAll not called")
	}
}

func TestCacheInvalidateWithoutCache(t *testing.T) {
	s := testServer(t, nil, testConfig())
	rec := doRequest(t, s, http.MethodPost, "/api/cache/invalidate/stores", nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestCacheInvalidateRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.APIKeys = []string{"sekrit"}
	cache := &fakeCache{}
	s := testServer(t, cache, cfg)

	rec := doRequest(t, s, http.MethodPost, "/api/cache/invalidate/stores", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without key = %d, want 401", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/cache/invalidate/stores",
		map[string]string{"X-API-Key": "wrong"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status with wrong key = %d, want 403", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/cache/invalidate/stores",
		map[string]string{"X-API-Key": "sekrit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status with valid key = %d, want 200", rec.Code)
	}

	// Read endpoints stay open regardless of configured keys.
	rec = doRequest(t, s, http.MethodGet, "/api/tables", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("tables status = %d, want 200 without key", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 2
	s := testServer(t, nil, cfg)

	for i := 0; i < 2; i++ {
		if rec := doRequest(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after limit", rec.Code)
	}
}
