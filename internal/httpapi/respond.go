package httpapi

import (
	"encoding/json"
	"net/http"
)

// Stable error codes returned to clients. Authentication codes mean "log
// in again"; FORBIDDEN means the caller is known but not permitted. The
// two classes are never collapsed.
const (
	CodeNoToken          = "NO_TOKEN"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenBlacklisted = "TOKEN_BLACKLISTED"
	CodeForbidden        = "FORBIDDEN"
	CodeRefreshFailed    = "REFRESH_FAILED"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
