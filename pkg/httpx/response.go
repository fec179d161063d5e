package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body of every API failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body of a successful API mutation.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON writes v as JSON with the given status code and no-cache headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorResponse{Error: msg})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
