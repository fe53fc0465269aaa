package web

import (
	"encoding/json"
	"net/http"

	"github.com/cstore-data/audit/internal/logging"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v and writes it with the JSON content type.
// Encoding errors are logged; headers are already sent by then.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}

// respondError writes a JSON error response and logs it with request context.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"message", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
