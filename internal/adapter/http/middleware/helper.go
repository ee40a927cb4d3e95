package middleware

import (
	"encoding/json"
	"net/http"
)

// errorResponse writes {"error": message}. Middleware never wraps successful bodies,
// so this is the only JSON it produces.
func errorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
