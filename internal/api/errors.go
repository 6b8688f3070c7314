package api

import (
	"encoding/json"
	"net/http"
)

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes, one per status the edge API returns.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
	ErrCodeUnavailable      = "unavailable"
)

var errorStatus = map[string]int{
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // client may already be gone
		json.NewEncoder(w).Encode(v)
	}
}

// writeError sends an Error body. Unknown codes are reported as internal.
func writeError(w http.ResponseWriter, code, message string) {
	status, ok := errorStatus[code]
	if !ok {
		code, status = ErrCodeInternal, http.StatusInternalServerError
	}
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}
