package handler

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Error: msg})
}

// Unauthorized is the only 401 body; every authentication failure writes it.
func Unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
}

func TooManyRequests(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
}

func serverError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "server error")
}
