package controllers

import (
	"net/http"
	"strconv"

	"github.com/nuxeo/mkto-pd-sync-app/internal/repository"
)

// JournalHandler exposes the recorded task invocations.
type JournalHandler struct {
	repo *repository.JournalRepository
}

func NewJournalHandler(repo *repository.JournalRepository) *JournalHandler {
	return &JournalHandler{repo: repo}
}

func (h *JournalHandler) HandleListJournal(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.repo.ListRecent(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "journal_failed", "Failed to load journal")
		return
	}

	type entryView struct {
		ID        string `json:"id"`
		Task      string `json:"task"`
		SourceID  string `json:"source_id"`
		Status    string `json:"status"`
		TargetID  string `json:"target_id,omitempty"`
		CreatedAt string `json:"created_at"`
	}

	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			ID:        e.ID,
			Task:      e.Task,
			SourceID:  e.SourceID,
			Status:    e.Status,
			TargetID:  e.TargetID,
			CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": views,
		"count":   len(views),
	})
}
