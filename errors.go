package relaybridge

import (
	"encoding/json"
	"net/http"
)

// lastError describes the final failed attempt when every provider in the
// cascade is exhausted.
type lastError struct {
	Provider  string `json:"provider"`
	ErrorType string `json:"error_type"`
	ErrorMsg  string `json:"error_msg"`
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

func writeAllProvidersFailed(w http.ResponseWriter, providersTried []string, last lastError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":          "all providers failed",
		"providers_tried": providersTried,
		"last_error":     last,
	})
}
