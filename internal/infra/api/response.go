package api

import (
	"encoding/json"
	"net/http"
)

const (
	codeValidation   = "validation_error"
	codeUnauthorized = "unauthorized"
	codeTooLarge     = "body_too_large"
	codeNotFound     = "not_found"
	codeQueueFull    = "queue_full"
	codeJobFailed    = "job_failed"
	codeInternal     = "internal"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}
