// Package response writes the JSON bodies shared by handlers and middleware.
// Every error, whatever layer produces it, has the ErrorBody shape.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is {"error": "..."} plus "fields" on validation failures.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error sends {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// TooManyRequests sends a 429 with a one minute Retry-After.
func TooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}
