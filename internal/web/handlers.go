package web

// handlers.go implements the API endpoints.
//
// Report and store endpoints are read-only and always return a body: a
// partially degraded report still serializes, with per-section error markers
// instead of a failed request. Only the cache endpoints mutate state.

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cstore-data/audit/internal/core"
	"github.com/cstore-data/audit/internal/export"
	"github.com/cstore-data/audit/internal/logging"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// handleListTables returns the registered dataset descriptors.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, core.Datasets())
}

// handleReport runs the full validation suite and returns the report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.runner.Run(r.Context())
	writeJSON(w, r, report)
}

// handleReportExport runs the validation suite and streams the report as an
// Excel workbook.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	report := s.runner.Run(r.Context())

	f, err := export.ReportWorkbook(report)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("validation-report-%s.xlsx", report.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(w); err != nil {
		logging.FromContext(r.Context()).Error("workbook write failed", "error", err)
	}
}

// storesResponse pairs the canonical store set with its dedup diagnostics.
type storesResponse struct {
	Count  int          `json:"count"`
	Stores []core.Store `json:"stores"`
}

// handleListStores returns the canonical store set after deduplication.
func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	dedup, err := s.runner.CanonicalStores(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("store load failed", "error", err)
		respondError(w, r, http.StatusBadGateway, "store table unavailable")
		return
	}
	writeJSON(w, r, storesResponse{Count: len(dedup.Canonical), Stores: dedup.Canonical})
}

// duplicatesResponse lists the records eliminated by deduplication.
type duplicatesResponse struct {
	CanonicalCount int                 `json:"canonical_count"`
	DroppedCount   int                 `json:"dropped_count"`
	Dropped        []core.DroppedStore `json:"dropped"`
}

// handleStoreDuplicates returns the dropped store records with reasons.
func (s *Server) handleStoreDuplicates(w http.ResponseWriter, r *http.Request) {
	dedup, err := s.runner.CanonicalStores(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("store load failed", "error", err)
		respondError(w, r, http.StatusBadGateway, "store table unavailable")
		return
	}
	dropped := dedup.Dropped
	if dropped == nil {
		dropped = []core.DroppedStore{}
	}
	writeJSON(w, r, duplicatesResponse{
		CanonicalCount: len(dedup.Canonical),
		DroppedCount:   len(dropped),
		Dropped:        dropped,
	})
}

// handleInvalidate drops the cached snapshot for one table.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondError(w, r, http.StatusConflict, "caching is not enabled")
		return
	}

	key := chi.URLParam(r, "tableKey")
	if !s.cache.Invalidate(key) {
		respondError(w, r, http.StatusNotFound, "unknown table: "+key)
		return
	}

	logging.FromContext(r.Context()).Info("cache invalidated", "table", key)
	writeJSON(w, r, map[string]string{"invalidated": key})
}

// handleInvalidateAll drops every cached snapshot.
func (s *Server) handleInvalidateAll(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondError(w, r, http.StatusConflict, "caching is not enabled")
		return
	}

	s.cache.InvalidateAll()
	logging.FromContext(r.Context()).Info("cache invalidated", "table", "all")
	writeJSON(w, r, map[string]string{"invalidated": "all"})
}
