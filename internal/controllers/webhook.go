package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/nuxeo/mkto-pd-sync-app/internal/domains"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
	"github.com/nuxeo/mkto-pd-sync-app/internal/services"
	"github.com/nuxeo/mkto-pd-sync-app/internal/sync"
)

// WebhookHandler handles webhook HTTP requests
type WebhookHandler struct {
	service services.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(service services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleWebhook handles POST /hook. The event decides the task, the
// payload carries the entity, and the task goes to the queue; the
// webhook caller never waits for a remote CRM round trip.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	// Get headers
	signature := r.Header.Get("X-Webhook-Signature")
	eventType := r.Header.Get("X-Webhook-Event")

	// Validate headers
	if signature == "" {
		respondError(w, http.StatusUnauthorized, "missing_signature", "X-Webhook-Signature header is required")
		return
	}

	if eventType == "" {
		respondError(w, http.StatusBadRequest, "missing_event_type", "X-Webhook-Event header is required")
		return
	}

	// Read body
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return
	}
	defer r.Body.Close()

	// Verify signature
	if !h.service.VerifySignature(body, signature) {
		respondError(w, http.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
		return
	}

	// Parse payload
	var payload domains.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return
	}

	task, entityID, err := taskForEvent(eventType, &payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_event", err.Error())
		return
	}

	taskID, queued, err := h.service.EnqueueTask(r.Context(), task, entityID)
	if err != nil {
		log.Printf("[webhook] Failed to enqueue: %v", err)
		respondError(w, http.StatusInternalServerError, "enqueue_failed", err.Error())
		return
	}

	message := "Webhook received and queued"
	if !queued {
		message = "Webhook received, task already pending"
	}
	respondJSON(w, http.StatusAccepted, domains.WebhookResponse{
		Success: true,
		Message: message,
		TaskID:  taskID,
	})
}

// HandleHealth handles GET /health
func (h *WebhookHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// taskForEvent maps a webhook event to a task and the entity id the
// task runs on.
func taskForEvent(eventType string, payload *domains.WebhookPayload) (string, any, error) {
	switch eventType {
	case "lead.created", "lead.updated":
		if id, ok := payload.CurrentID(); ok {
			return sync.TaskLeadToPerson, id, nil
		}
	case "lead.deleted":
		// The lead is flagged in Marketo; remove its person.
		if personID, ok := payload.Current["pipedriveId"]; ok && personID != nil {
			return sync.TaskDeletePerson, personID, nil
		}
	case "company.created", "company.updated":
		if externalID, ok := payload.Current["externalCompanyId"]; ok && externalID != nil {
			return sync.TaskCompanyToOrganization, externalID, nil
		}
	case "person.added", "person.updated":
		if id, ok := payload.CurrentID(); ok {
			return sync.TaskPersonToLead, id, nil
		}
	case "person.deleted":
		marketoIDKey := pipedrive.FieldKey(pipedrive.EntityPerson, "marketoid")
		if leadID, ok := payload.PreviousField(marketoIDKey); ok {
			return sync.TaskFlagLeadForDeletion, leadID, nil
		}
	case "organization.added", "organization.updated":
		if id, ok := payload.CurrentID(); ok {
			return sync.TaskOrganizationToCompany, id, nil
		}
	case "deal.added", "deal.updated":
		if id, ok := payload.CurrentID(); ok {
			return sync.TaskDealToOpportunity, id, nil
		}
	default:
		return "", nil, fmt.Errorf("no task for event: %s", eventType)
	}
	return "", nil, fmt.Errorf("no entity id in payload for event: %s", eventType)
}
