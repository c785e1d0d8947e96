package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// ErrorResponseWriter extends http.ResponseWriter with structured error
// reporting. The error middleware installs the implementation.
type ErrorResponseWriter interface {
	http.ResponseWriter
	RespondWithError(err error)
}

// RespondWithJSON writes payload as a JSON response with the given status.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload) //nolint:errcheck
	}
}

// DecodeJSONBody decodes the request body into target.
func DecodeJSONBody(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// GetPathParam returns a named mux path variable.
func GetPathParam(r *http.Request, name string) (string, error) {
	value, ok := mux.Vars(r)[name]
	if !ok || value == "" {
		return "", fmt.Errorf("missing path parameter %s", name)
	}
	return value, nil
}
