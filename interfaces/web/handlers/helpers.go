package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"reportprint/logging"
)

// writeJSON encodes v with status. Encoding errors are logged; the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Warn("Failed to encode JSON response", "error", err)
	}
}

// wantsHTML reports whether the client prefers an HTML fragment over JSON.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
