package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nuxeo/mkto-pd-sync-app/internal/domains"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
	"github.com/nuxeo/mkto-pd-sync-app/internal/services"
	"github.com/nuxeo/mkto-pd-sync-app/internal/sync"
)

// SyncHandler exposes the synchronization tasks over HTTP. Each route
// runs one task synchronously and answers with its result; the routes
// without a path id take the id from a Pipedrive webhook-style body
// instead.
type SyncHandler struct {
	runner *services.TaskRunner
	auth   *services.AuthService
}

func NewSyncHandler(runner *services.TaskRunner, auth *services.AuthService) *SyncHandler {
	return &SyncHandler{runner: runner, auth: auth}
}

// Register mounts the task routes on the router.
func (h *SyncHandler) Register(router *mux.Router) {
	router.HandleFunc("/marketo/lead/{id}", h.task(sync.TaskLeadToPerson)).Methods("POST")
	router.HandleFunc("/marketo/lead/{id}/delete", h.task(sync.TaskDeletePerson)).Methods("POST")
	router.HandleFunc("/marketo/lead/{id}/activity", h.task(sync.TaskLeadToActivity)).Methods("POST")
	router.HandleFunc("/marketo/company/{id}", h.task(sync.TaskCompanyToOrganization)).Methods("POST")

	router.HandleFunc("/pipedrive/person/{id}", h.task(sync.TaskPersonToLead)).Methods("POST")
	router.HandleFunc("/pipedrive/person/{id}/delete", h.task(sync.TaskFlagLeadForDeletion)).Methods("POST")
	router.HandleFunc("/pipedrive/organization/{id}", h.task(sync.TaskOrganizationToCompany)).Methods("POST")
	router.HandleFunc("/pipedrive/deal/{id}", h.task(sync.TaskDealToOpportunity)).Methods("POST")

	// Pipedrive webhooks post the record in the body instead of the path.
	router.HandleFunc("/pipedrive/person", h.taskFromBody(sync.TaskPersonToLead)).Methods("POST")
	router.HandleFunc("/pipedrive/organization", h.taskFromBody(sync.TaskOrganizationToCompany)).Methods("POST")
	router.HandleFunc("/pipedrive/deal", h.taskFromBody(sync.TaskDealToOpportunity)).Methods("POST")
	router.HandleFunc("/pipedrive/person/delete", h.flagLeadFromBody).Methods("POST")
}

func (h *SyncHandler) task(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.run(w, r, name, mux.Vars(r)["id"])
	}
}

func (h *SyncHandler) taskFromBody(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := h.decodePayload(w, r)
		if !ok {
			return
		}
		id, ok := payload.CurrentID()
		if !ok {
			respondError(w, http.StatusBadRequest, "missing_id", "No current id in payload")
			return
		}
		h.run(w, r, name, id)
	}
}

// flagLeadFromBody handles person deletion webhooks: the person is
// gone, so the lead id comes from the previous record's
// cross-reference field.
func (h *SyncHandler) flagLeadFromBody(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	marketoIDKey := pipedrive.FieldKey(pipedrive.EntityPerson, "marketoid")
	leadID, ok := payload.PreviousField(marketoIDKey)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_id", "No previous marketo id in payload")
		return
	}
	h.run(w, r, sync.TaskFlagLeadForDeletion, leadID)
}

func (h *SyncHandler) decodePayload(w http.ResponseWriter, r *http.Request) (*domains.WebhookPayload, bool) {
	var payload domains.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return nil, false
	}
	return &payload, true
}

func (h *SyncHandler) run(w http.ResponseWriter, r *http.Request, task string, entityID any) {
	apiKey := apiKeyFromContext(r.Context())
	if apiKey == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}
	if err := h.auth.ValidateTask(apiKey, task); err != nil {
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}

	if fmt.Sprintf("%v", entityID) == "" {
		respondError(w, http.StatusBadRequest, "missing_id", "Entity id is required")
		return
	}

	result, err := h.runner.Run(task, entityID)
	if err != nil {
		log.Printf("[sync] Task %s failed for entity_id=%v: %v", task, entityID, err)
		respondError(w, http.StatusInternalServerError, "task_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
