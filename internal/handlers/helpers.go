package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the standard {"message": ...} error body.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, taxii.ErrorBody{Message: message})
}

// WriteResult writes a dispatcher result.
func WriteResult(w http.ResponseWriter, result *taxii.Result) error {
	return WriteJSON(w, result.StatusCode, result.Body)
}
