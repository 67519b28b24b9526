// Package shared holds the JSON response helpers every handler package uses.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "basketwise/pkg/domain-errors"
)

// errorBody is the wire shape for all error responses.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP error response.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, dErrors.HTTPStatus(err), errorBody{
		Error:            string(dErrors.CodeOf(err)),
		ErrorDescription: dErrors.MessageOf(err),
	})
}
