package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/nuxeo/mkto-pd-sync-app/internal/domains"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, domains.ErrorResponse{
		Error:   code,
		Message: message,
	})
}
