// Package middleware provides HTTP middleware for the carlot API.
package middleware

import (
	"encoding/json"
	"net/http"
)

// writeMessage writes the {"message": ...} body every error path uses.
func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
