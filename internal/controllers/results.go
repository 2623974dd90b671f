package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nuxeo/mkto-pd-sync-app/internal/queue"
)

// ResultsHandler lets webhook callers poll for the outcome of a queued
// task by the id returned on enqueue.
type ResultsHandler struct {
	queue *queue.Queue
}

func NewResultsHandler(q *queue.Queue) *ResultsHandler {
	return &ResultsHandler{queue: q}
}

func (h *ResultsHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	raw, err := h.queue.Result(r.Context(), taskID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "result_failed", "Failed to load task result")
		return
	}
	if raw == nil {
		respondError(w, http.StatusNotFound, "not_found", "No result for task id, still pending or expired")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"task_id": taskID,
		"result":  json.RawMessage(raw),
	})
}
