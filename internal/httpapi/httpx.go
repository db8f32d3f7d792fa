package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorResp is the JSON error envelope returned by every handler.
type errorResp struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResp{
		Code:      status,
		Message:   msg,
		RequestID: requestIDFromContext(r.Context()),
	})
}
